// Package paystack implements provider.PaymentProvider against the
// Paystack transfers API. Structurally identical to internal/provider/
// flutterwave, differing only in the wire shapes Paystack's API actually
// uses (a "recipient" object, kobo-denominated amounts, a top-level
// "status" boolean instead of a "success"/"error" string).
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/stellar/go/support/log"

	"github.com/bitstarkbridge/aframp-backend/internal/httpclient"
	"github.com/bitstarkbridge/aframp-backend/internal/provider"
	"github.com/bitstarkbridge/aframp-backend/internal/retryharness"
)

const (
	transferPath          = "/transfer"
	transferRecipientPath = "/transferrecipient"
)

type ClientOptions struct {
	BaseURL string
	APIKey  string
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpclient.HTTPClientInterface
}

func NewClient(opts ClientOptions) *Client {
	return &Client{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		httpClient: httpclient.DefaultClient(),
	}
}

func (c *Client) Name() provider.Name {
	return provider.Paystack
}

type recipientRequest struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
	Currency      string `json:"currency"`
}

type recipientData struct {
	RecipientCode string `json:"recipient_code"`
}

type recipientEnvelope struct {
	Status  bool          `json:"status"`
	Message string        `json:"message"`
	Data    recipientData `json:"data"`
}

type transferRequest struct {
	Source    string `json:"source"`
	Amount    int64  `json:"amount"` // kobo
	Recipient string `json:"recipient"`
	Reason    string `json:"reason"`
	Reference string `json:"reference"`
}

type transferData struct {
	TransferCode string `json:"transfer_code"`
	Status       string `json:"status"`
	Reference    string `json:"reference"`
}

type transferEnvelope struct {
	Status  bool         `json:"status"`
	Message string       `json:"message"`
	Data    transferData `json:"data"`
}

func (c *Client) ProcessWithdrawal(ctx context.Context, req provider.WithdrawalRequest) (provider.WithdrawalResponse, error) {
	recipientBody, err := json.Marshal(recipientRequest{
		Type:          "nuban",
		Name:          req.BankAccountName,
		AccountNumber: req.BankAccountNumber,
		BankCode:      req.BankCode,
		Currency:      req.Currency,
	})
	if err != nil {
		return provider.WithdrawalResponse{}, provider.NewWithdrawalError(provider.Paystack, provider.ErrorKindInvalidRequest, err)
	}

	recipientRaw, err := c.request(ctx, http.MethodPost, transferRecipientPath, recipientBody)
	if err != nil {
		return provider.WithdrawalResponse{}, classifyRequestError(err)
	}
	var recipientEnv recipientEnvelope
	if err := json.Unmarshal(recipientRaw, &recipientEnv); err != nil {
		return provider.WithdrawalResponse{}, provider.NewWithdrawalError(provider.Paystack, provider.ErrorKindProvider, fmt.Errorf("decoding recipient response: %w", err))
	}
	if !recipientEnv.Status {
		return provider.WithdrawalResponse{}, provider.NewWithdrawalError(provider.Paystack, provider.ErrorKindProvider, fmt.Errorf("recipient creation rejected: %s", recipientEnv.Message))
	}

	amountKobo, err := toKobo(req.Amount)
	if err != nil {
		return provider.WithdrawalResponse{}, provider.NewWithdrawalError(provider.Paystack, provider.ErrorKindInvalidRequest, err)
	}

	transferBody, err := json.Marshal(transferRequest{
		Source:    "balance",
		Amount:    amountKobo,
		Recipient: recipientEnv.Data.RecipientCode,
		Reason:    fmt.Sprintf("cNGN offramp %s", req.TransactionID),
		Reference: req.TransactionID,
	})
	if err != nil {
		return provider.WithdrawalResponse{}, provider.NewWithdrawalError(provider.Paystack, provider.ErrorKindInvalidRequest, err)
	}

	raw, err := c.request(ctx, http.MethodPost, transferPath, transferBody)
	if err != nil {
		return provider.WithdrawalResponse{}, classifyRequestError(err)
	}

	var envelope transferEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return provider.WithdrawalResponse{}, provider.NewWithdrawalError(provider.Paystack, provider.ErrorKindProvider, fmt.Errorf("decoding transfer response: %w", err))
	}
	if !envelope.Status {
		return provider.WithdrawalResponse{}, provider.NewWithdrawalError(provider.Paystack, provider.ErrorKindProvider, fmt.Errorf("transfer rejected: %s", envelope.Message))
	}

	return provider.WithdrawalResponse{
		ProviderReference: envelope.Data.Reference,
		RawData:           raw,
	}, nil
}

func (c *Client) GetPaymentStatus(ctx context.Context, reference string) (provider.StatusResult, error) {
	path, err := url.JoinPath(transferPath, "verify", reference)
	if err != nil {
		return provider.StatusResult{}, fmt.Errorf("building path: %w", err)
	}

	raw, err := c.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return provider.StatusResult{}, err
	}

	var envelope transferEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return provider.StatusResult{}, fmt.Errorf("decoding status response: %w", err)
	}

	return provider.StatusResult{Status: mapStatus(envelope.Data.Status)}, nil
}

func mapStatus(paystackStatus string) provider.PaymentStatus {
	switch paystackStatus {
	case "success":
		return provider.PaymentStatusSuccess
	case "failed", "reversed":
		return provider.PaymentStatusFailed
	case "pending", "otp":
		return provider.PaymentStatusPending
	default:
		return provider.PaymentStatusProcessing
	}
}

type refundRequest struct {
	Transaction string `json:"transaction"`
	Amount      int64  `json:"amount"`
}

func (c *Client) RefundPayment(ctx context.Context, reference, amount string) (provider.RefundResponse, error) {
	amountKobo, err := toKobo(amount)
	if err != nil {
		return provider.RefundResponse{}, fmt.Errorf("converting refund amount: %w", err)
	}

	body, err := json.Marshal(refundRequest{Transaction: reference, Amount: amountKobo})
	if err != nil {
		return provider.RefundResponse{}, fmt.Errorf("marshaling refund request: %w", err)
	}

	raw, err := c.request(ctx, http.MethodPost, "/refund", body)
	if err != nil {
		return provider.RefundResponse{}, err
	}

	var envelope transferEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return provider.RefundResponse{}, fmt.Errorf("decoding refund response: %w", err)
	}

	return provider.RefundResponse{ProviderReference: envelope.Data.Reference, RawData: raw}, nil
}

func toKobo(amount string) (int64, error) {
	var naira float64
	if _, err := fmt.Sscanf(amount, "%f", &naira); err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	return int64(naira * 100), nil
}

func (c *Client) request(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("building url: %w", err)
	}

	var raw []byte
	err = retryharness.WithTransientRetry(ctx, 4, func() error {
		req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retryharness.RetryableError{Err: fmt.Errorf("submitting request to %s: %w", u, err)}
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			log.Ctx(ctx).Warnf("paystack client: %s returned %d, retrying", u, resp.StatusCode)
			return retryharness.RetryableError{Err: fmt.Errorf("transient status %d", resp.StatusCode), RetryAfter: 2 * time.Second}
		}

		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(resp.Body); err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}
		raw = buf.Bytes()

		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("paystack API error %d: %s", resp.StatusCode, raw)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func classifyRequestError(err error) error {
	return provider.NewWithdrawalError(provider.Paystack, provider.ErrorKindNetwork, err)
}

var _ provider.PaymentProvider = (*Client)(nil)
