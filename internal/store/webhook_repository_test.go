package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookEventRepository_InsertAndFindByIdempotencyKey(t *testing.T) {
	dbConnectionPool := openTestDBConnectionPool(t)
	repo := NewWebhookEventRepository(dbConnectionPool)
	ctx := context.Background()

	_, err := repo.FindByIdempotencyKey(ctx, "flutterwave", "evt-1")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	inserted, err := repo.Insert(ctx, WebhookEvent{
		Provider:        "flutterwave",
		ProviderEventID: "evt-1",
		RawPayload:      []byte(`{"status":"successful"}`),
	})
	require.NoError(t, err)
	assert.False(t, inserted.IsProcessed())

	found, err := repo.FindByIdempotencyKey(ctx, "flutterwave", "evt-1")
	require.NoError(t, err)
	assert.Equal(t, inserted.ID, found.ID)
	assert.JSONEq(t, `{"status":"successful"}`, string(found.RawPayload))
}

func TestWebhookEventRepository_MarkProcessed_idempotentAgainstReplay(t *testing.T) {
	dbConnectionPool := openTestDBConnectionPool(t)
	repo := NewWebhookEventRepository(dbConnectionPool)
	ctx := context.Background()

	event, err := repo.Insert(ctx, WebhookEvent{
		Provider:        "paystack",
		ProviderEventID: "evt-2",
		RawPayload:      []byte(`{}`),
	})
	require.NoError(t, err)

	processed, err := repo.MarkProcessed(ctx, dbConnectionPool, event.ID)
	require.NoError(t, err)
	assert.True(t, processed.IsProcessed())

	_, err = repo.MarkProcessed(ctx, dbConnectionPool, event.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound, "marking an already-processed event again must not succeed twice")
}
