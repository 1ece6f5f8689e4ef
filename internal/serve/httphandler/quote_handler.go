package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stellar/go/support/render/httpjson"

	"github.com/bitstarkbridge/aframp-backend/internal/serve/httperror"
	"github.com/bitstarkbridge/aframp-backend/internal/store"
)

// QuoteHandler issues quotes into the short-lived cache. Per spec.md
// §1's non-goal, this handler does not compute a rate or fee itself:
// the rate, fee, and gross/net amounts arrive pre-computed in the
// request body from whatever pricing collaborator called it, and are
// only snapshotted and given a TTL here.
type QuoteHandler struct {
	Quotes *store.QuoteCache
}

type createQuoteRequest struct {
	WalletAddress string          `json:"wallet_address"`
	FromCurrency  string          `json:"from_currency"`
	ToCurrency    string          `json:"to_currency"`
	Rate          decimal.Decimal `json:"rate"`
	FeeAmount     decimal.Decimal `json:"fee_amount"`
	GrossAmount   decimal.Decimal `json:"gross_amount"`
	NetAmount     decimal.Decimal `json:"net_amount"`
}

type quoteResponse struct {
	ID            string          `json:"id"`
	WalletAddress string          `json:"wallet_address"`
	FromCurrency  string          `json:"from_currency"`
	ToCurrency    string          `json:"to_currency"`
	Rate          decimal.Decimal `json:"rate"`
	FeeAmount     decimal.Decimal `json:"fee_amount"`
	GrossAmount   decimal.Decimal `json:"gross_amount"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	ExpiresAt     time.Time       `json:"expires_at"`
}

func (h QuoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperror.BadRequest("", err, nil).Render(w)
		return
	}

	if req.WalletAddress == "" || req.FromCurrency == "" || req.ToCurrency == "" {
		httperror.BadRequest("wallet_address, from_currency and to_currency are required", nil, nil).Render(w)
		return
	}

	now := time.Now()
	quote := &store.Quote{
		ID:            uuid.NewString(),
		WalletAddress: req.WalletAddress,
		Rate:          req.Rate,
		FeeAmount:     req.FeeAmount,
		GrossAmount:   req.GrossAmount,
		NetAmount:     req.NetAmount,
		FromCurrency:  req.FromCurrency,
		ToCurrency:    req.ToCurrency,
		CreatedAt:     now,
		ExpiresAt:     now.Add(store.DefaultQuoteTTL),
	}
	h.Quotes.Put(quote)

	httpjson.RenderStatus(w, http.StatusCreated, quoteResponse{
		ID:            quote.ID,
		WalletAddress: quote.WalletAddress,
		FromCurrency:  quote.FromCurrency,
		ToCurrency:    quote.ToCurrency,
		Rate:          quote.Rate,
		FeeAmount:     quote.FeeAmount,
		GrossAmount:   quote.GrossAmount,
		NetAmount:     quote.NetAmount,
		ExpiresAt:     quote.ExpiresAt,
	}, httpjson.JSON)
}
