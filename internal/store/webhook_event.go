package store

import (
	"database/sql"
	"time"
)

// WebhookEvent records an inbound event from a payment provider, keyed by
// (Provider, ProviderEventID). Rows are inserted once and never mutated
// except to stamp ProcessedAt.
type WebhookEvent struct {
	ID              string         `db:"id"`
	Provider        string         `db:"provider"`
	ProviderEventID string         `db:"provider_event_id"`
	TransactionID   sql.NullString `db:"transaction_id"`
	RawPayload      []byte         `db:"raw_payload"`
	ProcessedAt     *time.Time     `db:"processed_at"`
	CreatedAt       time.Time      `db:"created_at"`
}

// IsProcessed reports whether the event has already been handed off to an
// engine. A webhook handler that finds an already-processed event must
// return success without acting again.
func (w *WebhookEvent) IsProcessed() bool {
	return w.ProcessedAt != nil
}
