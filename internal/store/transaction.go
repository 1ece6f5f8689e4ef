// Package store is the persistence layer for transactions, webhook events,
// and the short-lived quote cache. It is the sole writer of the
// transactions and webhook_events tables; every status advance goes
// through a conditional UPDATE here so the engines never need to reason
// about races themselves.
package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrRecordNotFound = errors.New("record not found")

type Direction string

const (
	DirectionOnramp  Direction = "onramp"
	DirectionOfframp Direction = "offramp"
)

type Status string

// Onramp statuses.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

// Offramp statuses, in addition to StatusCompleted, StatusFailed and
// StatusRefunded above.
const (
	StatusPendingPayment       Status = "pending_payment"
	StatusCngnReceived         Status = "cngn_received"
	StatusVerifyingAmount      Status = "verifying_amount"
	StatusProcessingWithdrawal Status = "processing_withdrawal"
	StatusTransferPending      Status = "transfer_pending"
	StatusRefundInitiated      Status = "refund_initiated"
	StatusRefunding            Status = "refunding"
	StatusExpired              Status = "expired"
)

// Transaction is the central entity of the processor. ToAmount is fixed at
// quote time (invariant 1) and must never be recomputed. BlockchainTxHash,
// once non-nil, is never overwritten (invariant 4).
type Transaction struct {
	ID                string          `db:"id"`
	Direction         Direction       `db:"direction"`
	Status            Status          `db:"status"`
	FromAmount        decimal.Decimal `db:"from_amount"`
	FromCurrency      string          `db:"from_currency"`
	ToAmount          decimal.Decimal `db:"to_amount"`
	ToCurrency        string          `db:"to_currency"`
	WalletAddress     string          `db:"wallet_address"`
	PaymentProvider   string          `db:"payment_provider"`
	PaymentReference  sql.NullString  `db:"payment_reference"`
	BlockchainTxHash  sql.NullString  `db:"blockchain_tx_hash"`
	ErrorMessage      sql.NullString  `db:"error_message"`
	Metadata          Metadata        `db:"metadata"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// IsTerminal reports whether the transaction's current status is one from
// which no further transition is permitted (invariant 3).
func (t *Transaction) IsTerminal() bool {
	switch t.Status {
	case StatusCompleted, StatusRefunded, StatusFailed, StatusExpired:
		return true
	default:
		return false
	}
}
