package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitstarkbridge/aframp-backend/db"
)

func TestTransactionRepository_InsertAndFindByID(t *testing.T) {
	dbConnectionPool := openTestDBConnectionPool(t)
	repo := NewTransactionRepository(dbConnectionPool)
	ctx := context.Background()

	inserted, err := repo.Insert(ctx, testTransaction(DirectionOnramp, StatusPending))
	require.NoError(t, err)
	assert.NotEmpty(t, inserted.ID)
	assert.Equal(t, StatusPending, inserted.Status)

	found, err := repo.FindByID(ctx, dbConnectionPool, inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, inserted.ID, found.ID)
	assert.True(t, inserted.ToAmount.Equal(found.ToAmount))

	_, err = repo.FindByID(ctx, dbConnectionPool, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestTransactionRepository_UpdateStatus_conditionalOnExpectedStatus(t *testing.T) {
	dbConnectionPool := openTestDBConnectionPool(t)
	repo := NewTransactionRepository(dbConnectionPool)
	ctx := context.Background()

	tx, err := repo.Insert(ctx, testTransaction(DirectionOnramp, StatusPending))
	require.NoError(t, err)

	updated, err := repo.UpdateStatus(ctx, dbConnectionPool, tx.ID, StatusPending, StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, updated.Status)

	// A second attempt claiming from the stale expected status loses the race.
	_, err = repo.UpdateStatus(ctx, dbConnectionPool, tx.ID, StatusPending, StatusProcessing)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestTransactionRepository_UpdateStatusWithMetadata_mergesExistingKeys(t *testing.T) {
	dbConnectionPool := openTestDBConnectionPool(t)
	repo := NewTransactionRepository(dbConnectionPool)
	ctx := context.Background()

	toInsert := testTransaction(DirectionOfframp, StatusProcessingWithdrawal)
	toInsert.Metadata = Metadata{BankAccountNumber: "0123456789", BankCode: "044"}
	tx, err := repo.Insert(ctx, toInsert)
	require.NoError(t, err)

	updated, err := repo.UpdateStatusWithMetadata(ctx, dbConnectionPool, tx.ID, StatusProcessingWithdrawal, StatusTransferPending,
		Metadata{ProviderReference: "pay-ref-1", RetryCount: 1})
	require.NoError(t, err)

	assert.Equal(t, StatusTransferPending, updated.Status)
	assert.Equal(t, "pay-ref-1", updated.Metadata.ProviderReference)
	assert.Equal(t, 1, updated.Metadata.RetryCount)
	// fields not in the patch survive the merge
	assert.Equal(t, "0123456789", updated.Metadata.BankAccountNumber)
	assert.Equal(t, "044", updated.Metadata.BankCode)
}

func TestTransactionRepository_UpdateStatusWithMetadataResettingRetry_clearsRetryCount(t *testing.T) {
	dbConnectionPool := openTestDBConnectionPool(t)
	repo := NewTransactionRepository(dbConnectionPool)
	ctx := context.Background()

	toInsert := testTransaction(DirectionOfframp, StatusProcessingWithdrawal)
	toInsert.Metadata = Metadata{RetryCount: 2, BankAccountNumber: "0123456789"}
	tx, err := repo.Insert(ctx, toInsert)
	require.NoError(t, err)

	// A patch with no RetryCount field (its zero value is omitempty) must
	// still clear the stored count rather than leaving the prior attempt's
	// count in place for the next phase to inherit.
	updated, err := repo.UpdateStatusWithMetadataResettingRetry(ctx, dbConnectionPool, tx.ID, StatusProcessingWithdrawal, StatusTransferPending,
		Metadata{ProviderReference: "pay-ref-1"})
	require.NoError(t, err)

	assert.Equal(t, StatusTransferPending, updated.Status)
	assert.Equal(t, "pay-ref-1", updated.Metadata.ProviderReference)
	assert.Equal(t, 0, updated.Metadata.RetryCount)
	// fields outside the reset set still survive the merge
	assert.Equal(t, "0123456789", updated.Metadata.BankAccountNumber)
}

func TestTransactionRepository_SetBlockchainTxHash_neverOverwrites(t *testing.T) {
	dbConnectionPool := openTestDBConnectionPool(t)
	repo := NewTransactionRepository(dbConnectionPool)
	ctx := context.Background()

	tx, err := repo.Insert(ctx, testTransaction(DirectionOnramp, StatusProcessing))
	require.NoError(t, err)

	updated, err := repo.SetBlockchainTxHash(ctx, dbConnectionPool, tx.ID, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", updated.BlockchainTxHash.String)

	_, err = repo.SetBlockchainTxHash(ctx, dbConnectionPool, tx.ID, "def456")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestTransactionRepository_WithLockedBatch_selectsOnlyMatchingDirectionAndStatus(t *testing.T) {
	dbConnectionPool := openTestDBConnectionPool(t)
	repo := NewTransactionRepository(dbConnectionPool)
	ctx := context.Background()

	onrampPending, err := repo.Insert(ctx, testTransaction(DirectionOnramp, StatusPending))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, testTransaction(DirectionOnramp, StatusProcessing))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, testTransaction(DirectionOfframp, StatusPendingPayment))
	require.NoError(t, err)

	var seenIDs []string
	err = repo.WithLockedBatch(ctx, DirectionOnramp, []Status{StatusPending}, 50, func(dbTx db.DBTransaction, batch []*Transaction) error {
		for _, tx := range batch {
			seenIDs = append(seenIDs, tx.ID)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{onrampPending.ID}, seenIDs)
}

func TestTransactionRepository_WithLockedBatch_rollsBackOnError(t *testing.T) {
	dbConnectionPool := openTestDBConnectionPool(t)
	repo := NewTransactionRepository(dbConnectionPool)
	ctx := context.Background()

	tx, err := repo.Insert(ctx, testTransaction(DirectionOnramp, StatusPending))
	require.NoError(t, err)

	err = repo.WithLockedBatch(ctx, DirectionOnramp, []Status{StatusPending}, 50, func(dbTx db.DBTransaction, batch []*Transaction) error {
		_, innerErr := repo.UpdateStatus(ctx, dbTx, batch[0].ID, StatusPending, StatusFailed)
		require.NoError(t, innerErr)
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	reloaded, err := repo.FindByID(ctx, dbConnectionPool, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, reloaded.Status, "update made inside a failed WithLockedBatch call must be rolled back")
}
