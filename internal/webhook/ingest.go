// Package webhook implements spec.md §4.4's inbound webhook contract:
// idempotency-keyed deduplication, signature verification, and
// synchronous hand-off into the onramp engine's payment-confirmed path.
package webhook

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/support/log"

	"github.com/bitstarkbridge/aframp-backend/internal/events"
	"github.com/bitstarkbridge/aframp-backend/internal/onramp"
	"github.com/bitstarkbridge/aframp-backend/internal/store"
)

// ParsedEvent is the normalized (tx reference, amount, success) triple
// extracted from a provider-specific webhook payload, spec.md §4.4's
// "(tx_id, amount, state)" triple keyed by provider reference rather
// than our own transaction ID, since the provider has no notion of it.
type ParsedEvent struct {
	EventID   string
	Reference string
	Amount    decimal.Decimal
	Success   bool
}

// Parser extracts a ParsedEvent from a provider's raw webhook body.
type Parser func(payload []byte) (ParsedEvent, error)

// flutterwaveWebhookPayload is the subset of Flutterwave's
// transfer.completed webhook this system reads.
type flutterwaveWebhookPayload struct {
	Data struct {
		ID        int64  `json:"id"`
		Reference string `json:"reference"`
		Amount    string `json:"amount"`
		Status    string `json:"status"`
	} `json:"data"`
}

func parseFlutterwave(payload []byte) (ParsedEvent, error) {
	var p flutterwaveWebhookPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return ParsedEvent{}, fmt.Errorf("decoding flutterwave webhook: %w", err)
	}
	amount, err := decimal.NewFromString(p.Data.Amount)
	if err != nil {
		return ParsedEvent{}, fmt.Errorf("parsing flutterwave webhook amount %q: %w", p.Data.Amount, err)
	}
	return ParsedEvent{
		EventID:   fmt.Sprintf("%d", p.Data.ID),
		Reference: p.Data.Reference,
		Amount:    amount,
		Success:   p.Data.Status == "SUCCESSFUL",
	}, nil
}

// paystackWebhookPayload is the subset of Paystack's transfer.success /
// transfer.failed webhook this system reads. Amount arrives in kobo.
type paystackWebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}

func parsePaystack(payload []byte) (ParsedEvent, error) {
	var p paystackWebhookPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return ParsedEvent{}, fmt.Errorf("decoding paystack webhook: %w", err)
	}
	return ParsedEvent{
		EventID:   p.Data.Reference + ":" + p.Event,
		Reference: p.Data.Reference,
		Amount:    decimal.NewFromInt(p.Data.Amount).Div(decimal.NewFromInt(100)),
		Success:   p.Event == "transfer.success",
	}, nil
}

// mpesaWebhookPayload is the subset of Daraja's B2C result callback this
// system reads.
type mpesaWebhookPayload struct {
	Result struct {
		ConversationID           string `json:"ConversationID"`
		OriginatorConversationID string `json:"OriginatorConversationID"`
		ResultCode               int    `json:"ResultCode"`
		ResultParameters         struct {
			ResultParameter []struct {
				Key   string      `json:"Key"`
				Value interface{} `json:"Value"`
			} `json:"ResultParameter"`
		} `json:"ResultParameters"`
	} `json:"Result"`
}

func parseMpesa(payload []byte) (ParsedEvent, error) {
	var p mpesaWebhookPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return ParsedEvent{}, fmt.Errorf("decoding mpesa webhook: %w", err)
	}

	var amount decimal.Decimal
	for _, param := range p.Result.ResultParameters.ResultParameter {
		if param.Key != "TransactionAmount" {
			continue
		}
		switch v := param.Value.(type) {
		case float64:
			amount = decimal.NewFromFloat(v)
		case string:
			parsed, err := decimal.NewFromString(v)
			if err == nil {
				amount = parsed
			}
		}
	}

	return ParsedEvent{
		EventID:   p.Result.OriginatorConversationID,
		Reference: p.Result.ConversationID,
		Amount:    amount,
		Success:   p.Result.ResultCode == 0,
	}, nil
}

// Parsers maps a provider name (as used in webhook route paths and the
// transactions.payment_provider column) to its payload parser.
var Parsers = map[string]Parser{
	"flutterwave": parseFlutterwave,
	"paystack":    parsePaystack,
	"mpesa":       parseMpesa,
}

// Ingester verifies an inbound provider webhook's signature, parses it,
// short-circuits a replay of an already-processed event, persists the
// raw event, and hands off to the onramp engine.
type Ingester struct {
	WebhookEvents *store.WebhookEventRepository
	Transactions  *store.TransactionRepository
	Onramp        *onramp.Engine
	Secrets       map[string]string
	Producer      events.Producer
}

// ErrUnknownProvider is returned when no parser or signature secret is
// registered for the requested provider path segment.
var ErrUnknownProvider = fmt.Errorf("webhook: unknown provider")

// ErrInvalidSignature is returned when the inbound signature fails
// verification against the provider's configured shared secret.
var ErrInvalidSignature = fmt.Errorf("webhook: invalid signature")

// Ingest handles one inbound HTTP POST. The signature is verified before
// the payload is parsed and before the idempotency lookup, so a replay of
// an already-processed event whose signature does not verify is rejected
// with ErrInvalidSignature. A replayed, already-processed event with a
// valid signature returns success without action; the engine's own
// conditional update is the real race-free gate, this
// layer only provides deduplication against the provider's retried
// delivery.
func (i *Ingester) Ingest(ctx context.Context, providerName, signatureHex string, payload []byte) error {
	parser, ok := Parsers[providerName]
	if !ok {
		return ErrUnknownProvider
	}

	secret, ok := i.Secrets[providerName]
	if !ok || !VerifySignature(secret, payload, signatureHex) {
		return ErrInvalidSignature
	}

	parsed, err := parser(payload)
	if err != nil {
		return fmt.Errorf("parsing %s webhook: %w", providerName, err)
	}

	existing, err := i.WebhookEvents.FindByIdempotencyKey(ctx, providerName, parsed.EventID)
	if err != nil && err != store.ErrRecordNotFound {
		return fmt.Errorf("checking webhook idempotency key: %w", err)
	}
	if existing != nil && existing.IsProcessed() {
		return nil
	}

	if existing == nil {
		tx, err := i.Transactions.FindByPaymentReference(ctx, i.Transactions.DBConnectionPool, providerName, parsed.Reference)
		var txID sql.NullString
		if err == nil {
			txID = sql.NullString{Valid: true, String: tx.ID}
		} else if err != store.ErrRecordNotFound {
			return fmt.Errorf("associating webhook to transaction: %w", err)
		}

		rawPayload, marshalErr := json.Marshal(json.RawMessage(payload))
		if marshalErr != nil {
			return fmt.Errorf("re-encoding webhook payload: %w", marshalErr)
		}

		event, insertErr := i.WebhookEvents.Insert(ctx, store.WebhookEvent{
			Provider:        providerName,
			ProviderEventID: parsed.EventID,
			TransactionID:   txID,
			RawPayload:      rawPayload,
		})
		if insertErr != nil {
			return fmt.Errorf("persisting webhook event: %w", insertErr)
		}
		existing = event
	}

	if !parsed.Success {
		_, err := i.WebhookEvents.MarkProcessed(ctx, i.Transactions.DBConnectionPool, existing.ID)
		if err != nil && err != store.ErrRecordNotFound {
			return fmt.Errorf("marking failed webhook event processed: %w", err)
		}
		return nil
	}

	tx, err := i.Transactions.FindByPaymentReference(ctx, i.Transactions.DBConnectionPool, providerName, parsed.Reference)
	if err != nil {
		if err == store.ErrRecordNotFound {
			return nil
		}
		return fmt.Errorf("loading transaction for webhook: %w", err)
	}

	if err := i.Onramp.HandlePaymentConfirmed(ctx, i.Transactions.DBConnectionPool, tx.ID, parsed.Amount); err != nil {
		return fmt.Errorf("running payment-confirmed path: %w", err)
	}

	_, err = i.WebhookEvents.MarkProcessed(ctx, i.Transactions.DBConnectionPool, existing.ID)
	if err != nil && err != store.ErrRecordNotFound {
		return fmt.Errorf("marking webhook event processed: %w", err)
	}

	// Best-effort audit publish: the transaction has already advanced by
	// this point, so a publish failure is not part of the idempotency
	// contract and must not fail the request.
	if pubErr := i.Producer.WriteMessages(ctx, events.Message{
		Topic: "transactions",
		Key:   tx.ID,
		Type:  "payment_confirmed",
		Data:  parsed,
	}); pubErr != nil {
		log.Ctx(ctx).WithError(pubErr).Error("publishing payment-confirmed event")
	}

	return nil
}
