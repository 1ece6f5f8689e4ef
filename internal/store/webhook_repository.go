package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bitstarkbridge/aframp-backend/db"
)

const webhookEventColumns = `
	id, provider, provider_event_id, transaction_id, raw_payload, processed_at, created_at`

// WebhookEventRepository enforces the (provider, provider_event_id)
// idempotency key at the database layer via a unique constraint, and
// otherwise just stores and reads rows; it never mutates a row beyond
// stamping ProcessedAt.
type WebhookEventRepository struct {
	DBConnectionPool db.DBConnectionPool
}

func NewWebhookEventRepository(dbConnectionPool db.DBConnectionPool) *WebhookEventRepository {
	return &WebhookEventRepository{DBConnectionPool: dbConnectionPool}
}

// FindByIdempotencyKey returns ErrRecordNotFound if no event has been
// stored yet for this (provider, providerEventID) pair — the signal
// callers use to decide whether this is the first sighting of an event.
func (r *WebhookEventRepository) FindByIdempotencyKey(ctx context.Context, provider, providerEventID string) (*WebhookEvent, error) {
	query := `SELECT ` + webhookEventColumns + ` FROM webhook_events WHERE provider = $1 AND provider_event_id = $2`

	var event WebhookEvent
	err := r.DBConnectionPool.GetContext(ctx, &event, query, provider, providerEventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("finding webhook event %q/%q: %w", provider, providerEventID, err)
	}

	return &event, nil
}

// Insert persists a new webhook event row. A unique-violation on
// (provider, provider_event_id) is returned wrapped with %w, so callers can
// detect the replay case by matching the driver error with errors.As; the
// intended caller pattern is to check FindByIdempotencyKey first inside
// the same handler, making this race vanishingly rare in practice.
func (r *WebhookEventRepository) Insert(ctx context.Context, event WebhookEvent) (*WebhookEvent, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	query := `
		INSERT INTO webhook_events (id, provider, provider_event_id, transaction_id, raw_payload)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		RETURNING ` + webhookEventColumns

	var inserted WebhookEvent
	err := r.DBConnectionPool.GetContext(ctx, &inserted, query,
		event.ID, event.Provider, event.ProviderEventID, event.TransactionID, string(event.RawPayload))
	if err != nil {
		return nil, fmt.Errorf("inserting webhook event: %w", err)
	}

	return &inserted, nil
}

// MarkProcessed stamps processed_at so a replayed webhook can be
// recognized and short-circuited without re-running the engine path.
func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, sqlExec db.SQLExecuter, id string) (*WebhookEvent, error) {
	query := `
		UPDATE webhook_events
		SET processed_at = NOW()
		WHERE id = $1 AND processed_at IS NULL
		RETURNING ` + webhookEventColumns

	var event WebhookEvent
	err := sqlExec.GetContext(ctx, &event, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("marking webhook event %q processed: %w", id, err)
	}

	return &event, nil
}
