package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Metadata is the semi-structured bag attached to every transaction. It
// starts with the bank details an offramp quote supplies and is grown by
// the engines as processing advances — Stellar ledger numbers, provider
// references, retry bookkeeping, refund details, lock ownership. It is
// never read to drive a state transition decision on its own; the status
// column and the repository's conditional updates are the source of truth
// for that.
type Metadata struct {
	BankAccountName   string `json:"bank_account_name,omitempty"`
	BankAccountNumber string `json:"bank_account_number,omitempty"`
	BankCode          string `json:"bank_code,omitempty"`

	StellarLedger     *int32          `json:"stellar_ledger,omitempty"`
	ProviderReference string          `json:"provider_reference,omitempty"`
	ProviderResponse  json.RawMessage `json:"provider_response,omitempty"`

	RetryCount     int        `json:"retry_count,omitempty"`
	LastRetryAt    *time.Time `json:"last_retry_at,omitempty"`
	NextRetryAfter *time.Time `json:"next_retry_after,omitempty"`

	FailureReason string           `json:"failure_reason,omitempty"`
	RefundHash    string           `json:"refund_hash,omitempty"`
	RefundAmount  *decimal.Decimal `json:"refund_amount,omitempty"`

	LockHolder string     `json:"lock_holder,omitempty"`
	LockedAt   *time.Time `json:"locked_at,omitempty"`
}

// Value implements driver.Valuer so Metadata round-trips through the
// metadata jsonb column.
func (m Metadata) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshaling metadata: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *Metadata) Scan(src interface{}) error {
	if src == nil {
		*m = Metadata{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for metadata column", src)
	}

	if len(raw) == 0 {
		*m = Metadata{}
		return nil
	}

	if err := json.Unmarshal(raw, m); err != nil {
		return fmt.Errorf("unmarshaling metadata column: %w", err)
	}
	return nil
}

// Merge returns a copy of m with every non-zero field of patch applied on
// top. It is the in-process half of the repository's atomic
// read-modify-write metadata merge: the SQL layer still does the merge
// under a row lock, this just builds the patch document.
func (m Metadata) Merge(patch Metadata) Metadata {
	merged := m

	if patch.BankAccountName != "" {
		merged.BankAccountName = patch.BankAccountName
	}
	if patch.BankAccountNumber != "" {
		merged.BankAccountNumber = patch.BankAccountNumber
	}
	if patch.BankCode != "" {
		merged.BankCode = patch.BankCode
	}
	if patch.StellarLedger != nil {
		merged.StellarLedger = patch.StellarLedger
	}
	if patch.ProviderReference != "" {
		merged.ProviderReference = patch.ProviderReference
	}
	if len(patch.ProviderResponse) > 0 {
		merged.ProviderResponse = patch.ProviderResponse
	}
	if patch.RetryCount != 0 {
		merged.RetryCount = patch.RetryCount
	}
	if patch.LastRetryAt != nil {
		merged.LastRetryAt = patch.LastRetryAt
	}
	if patch.NextRetryAfter != nil {
		merged.NextRetryAfter = patch.NextRetryAfter
	}
	if patch.FailureReason != "" {
		merged.FailureReason = patch.FailureReason
	}
	if patch.RefundHash != "" {
		merged.RefundHash = patch.RefundHash
	}
	if patch.RefundAmount != nil {
		merged.RefundAmount = patch.RefundAmount
	}
	if patch.LockHolder != "" {
		merged.LockHolder = patch.LockHolder
	}
	if patch.LockedAt != nil {
		merged.LockedAt = patch.LockedAt
	}

	return merged
}
