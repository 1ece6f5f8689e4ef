package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stellar/go/support/render/httpjson"

	"github.com/bitstarkbridge/aframp-backend/internal/serve/httperror"
	"github.com/bitstarkbridge/aframp-backend/internal/store"
)

// TransactionHandler creates onramp transactions from a previously
// issued quote and serves transaction status reads, the two read/write
// operations spec.md's HTTP surface names outside the processor core.
type TransactionHandler struct {
	Quotes       *store.QuoteCache
	Transactions *store.TransactionRepository
}

type createTransactionRequest struct {
	QuoteID string `json:"quote_id"`
}

type transactionResponse struct {
	ID               string          `json:"id"`
	Direction        string          `json:"direction"`
	Status           string          `json:"status"`
	FromAmount       decimal.Decimal `json:"from_amount"`
	FromCurrency     string          `json:"from_currency"`
	ToAmount         decimal.Decimal `json:"to_amount"`
	ToCurrency       string          `json:"to_currency"`
	WalletAddress    string          `json:"wallet_address"`
	PaymentProvider  string          `json:"payment_provider,omitempty"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	BlockchainTxHash string          `json:"blockchain_tx_hash,omitempty"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func toTransactionResponse(tx *store.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:            tx.ID,
		Direction:     string(tx.Direction),
		Status:        string(tx.Status),
		FromAmount:    tx.FromAmount,
		FromCurrency:  tx.FromCurrency,
		ToAmount:      tx.ToAmount,
		ToCurrency:    tx.ToCurrency,
		WalletAddress: tx.WalletAddress,
		PaymentProvider: tx.PaymentProvider,
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}
	if tx.PaymentReference.Valid {
		resp.PaymentReference = tx.PaymentReference.String
	}
	if tx.BlockchainTxHash.Valid {
		resp.BlockchainTxHash = tx.BlockchainTxHash.String
	}
	if tx.ErrorMessage.Valid {
		resp.ErrorMessage = tx.ErrorMessage.String
	}
	return resp
}

// PostTransaction consumes a cached quote and creates the onramp
// transaction row it describes. The quote's gross and net amounts are
// carried over unchanged as from_amount and to_amount (invariant 1:
// to_amount is fixed at quote time); the quote's rate and fee are not
// stored on the transaction.
func (h TransactionHandler) PostTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperror.BadRequest("", err, nil).Render(w)
		return
	}
	if req.QuoteID == "" {
		httperror.BadRequest("quote_id is required", nil, nil).Render(w)
		return
	}

	quote, err := h.Quotes.Consume(req.QuoteID, time.Now())
	if err != nil {
		httperror.UnprocessableEntity(err.Error(), err, nil).Render(w)
		return
	}

	tx, err := h.Transactions.Insert(r.Context(), store.Transaction{
		Direction:     store.DirectionOnramp,
		Status:        store.StatusPending,
		FromAmount:    quote.GrossAmount,
		FromCurrency:  quote.FromCurrency,
		ToAmount:      quote.NetAmount,
		ToCurrency:    quote.ToCurrency,
		WalletAddress: quote.WalletAddress,
	})
	if err != nil {
		httperror.InternalError(r.Context(), "creating transaction", err, nil).Render(w)
		return
	}

	httpjson.RenderStatus(w, http.StatusCreated, toTransactionResponse(tx), httpjson.JSON)
}

// GetTransaction reads a single transaction's current status by ID.
func (h TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tx, err := h.Transactions.FindByID(r.Context(), h.Transactions.DBConnectionPool, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			httperror.NotFound("", err, nil).Render(w)
			return
		}
		httperror.InternalError(r.Context(), "fetching transaction", err, nil).Render(w)
		return
	}

	httpjson.RenderStatus(w, http.StatusOK, toTransactionResponse(tx), httpjson.JSON)
}
