package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bitstarkbridge/aframp-backend/db"
)

const transactionColumns = `
	id, direction, status, from_amount, from_currency, to_amount, to_currency,
	wallet_address, payment_provider, payment_reference, blockchain_tx_hash,
	error_message, metadata, created_at, updated_at`

// TransactionRepository is the persistence contract the onramp and offramp
// engines depend on. Every method that advances status is conditional on
// the caller's expected current status: zero rows affected means another
// actor already won the race, and is reported back as ErrRecordNotFound
// rather than treated as a hard failure, because that is the expected
// outcome of the webhook-vs-poll race the engines are built to tolerate.
type TransactionRepository struct {
	DBConnectionPool db.DBConnectionPool
}

func NewTransactionRepository(dbConnectionPool db.DBConnectionPool) *TransactionRepository {
	return &TransactionRepository{DBConnectionPool: dbConnectionPool}
}

// Insert creates a new transaction row. ID is generated if empty.
func (r *TransactionRepository) Insert(ctx context.Context, tx Transaction) (*Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	query := `
		INSERT INTO transactions (
			id, direction, status, from_amount, from_currency, to_amount, to_currency,
			wallet_address, payment_provider, payment_reference, blockchain_tx_hash,
			error_message, metadata
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::jsonb
		)
		RETURNING ` + transactionColumns

	var inserted Transaction
	err := r.DBConnectionPool.GetContext(ctx, &inserted, query,
		tx.ID, tx.Direction, tx.Status, tx.FromAmount, tx.FromCurrency, tx.ToAmount, tx.ToCurrency,
		tx.WalletAddress, tx.PaymentProvider, tx.PaymentReference, tx.BlockchainTxHash,
		tx.ErrorMessage, tx.Metadata,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting transaction: %w", err)
	}

	return &inserted, nil
}

// FindByID loads a single transaction by its primary key.
func (r *TransactionRepository) FindByID(ctx context.Context, sqlExec db.SQLExecuter, id string) (*Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	var tx Transaction
	err := sqlExec.GetContext(ctx, &tx, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("finding transaction %q: %w", id, err)
	}

	return &tx, nil
}

// FindByPaymentReference loads a single transaction by its provider
// reference, used by the poll fallback and webhook association.
func (r *TransactionRepository) FindByPaymentReference(ctx context.Context, sqlExec db.SQLExecuter, paymentProvider, paymentReference string) (*Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE payment_provider = $1 AND payment_reference = $2`

	var tx Transaction
	err := sqlExec.GetContext(ctx, &tx, query, paymentProvider, paymentReference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("finding transaction by payment reference %q/%q: %w", paymentProvider, paymentReference, err)
	}

	return &tx, nil
}

// WithLockedBatch opens its own database transaction, selects up to limit
// transactions matching direction and one of statuses — oldest
// created_at first, FOR UPDATE SKIP LOCKED so concurrent processor
// instances never choose the same rows — and invokes fn with that
// transaction and the batch. fn is expected to call UpdateStatus /
// UpdateStatusWithMetadata against the same db.SQLExecuter for every item
// it advances, so the row lock is held for the whole cycle stage. The
// repository transaction commits if fn returns nil, and rolls back
// otherwise.
func (r *TransactionRepository) WithLockedBatch(ctx context.Context, direction Direction, statuses []Status, limit int, fn func(dbTx db.DBTransaction, batch []*Transaction) error) error {
	if limit <= 0 {
		return fmt.Errorf("batch limit must be greater than 0")
	}

	return db.RunInTransaction(ctx, r.DBConnectionPool, nil, func(dbTx db.DBTransaction) error {
		query := `
			SELECT ` + transactionColumns + `
			FROM transactions
			WHERE direction = $1::transaction_direction AND status = ANY($2)
			ORDER BY created_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED`

		var batch []*Transaction
		err := dbTx.SelectContext(ctx, &batch, query, direction, pq.Array(statusesToStrings(statuses)), limit)
		if err != nil {
			return fmt.Errorf("selecting locked batch: %w", err)
		}

		return fn(dbTx, batch)
	})
}

func statusesToStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// UpdateStatus performs the conditional update at the heart of the
// processor's race-freedom: it only takes effect WHERE status =
// expectedStatus. A zero-rows-affected result is reported as
// ErrRecordNotFound, the same signal FindByID uses, because both mean
// "there is nothing here for you to act on".
func (r *TransactionRepository) UpdateStatus(ctx context.Context, sqlExec db.SQLExecuter, id string, expectedStatus, newStatus Status) (*Transaction, error) {
	query := `
		UPDATE transactions
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING ` + transactionColumns

	var tx Transaction
	err := sqlExec.GetContext(ctx, &tx, query, newStatus, id, expectedStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("updating transaction %q status to %q: %w", id, newStatus, err)
	}

	return &tx, nil
}

// UpdateStatusWithMetadata performs the same conditional status update as
// UpdateStatus, and atomically merges metadataPatch's set fields into the
// stored metadata via Postgres's jsonb `||` operator in the same
// statement, so no read-modify-write round trip is needed beyond the
// row lock already held by the caller (typically inside WithLockedBatch).
func (r *TransactionRepository) UpdateStatusWithMetadata(ctx context.Context, sqlExec db.SQLExecuter, id string, expectedStatus, newStatus Status, metadataPatch Metadata) (*Transaction, error) {
	query := `
		UPDATE transactions
		SET status = $1, metadata = metadata || $2::jsonb, updated_at = NOW()
		WHERE id = $3 AND status = $4
		RETURNING ` + transactionColumns

	var tx Transaction
	err := sqlExec.GetContext(ctx, &tx, query, newStatus, metadataPatch, id, expectedStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("updating transaction %q status/metadata to %q: %w", id, newStatus, err)
	}

	return &tx, nil
}

// UpdateStatusWithMetadataResettingRetry performs the same conditional
// status update and jsonb `||` metadata merge as UpdateStatusWithMetadata,
// but additionally strips retry_count (and the two retry timestamps) from
// the merged document with jsonb's `-` key-delete operator, rather than
// relying on the merge to clear them. RetryCount's `omitempty` tag means a
// patch carrying RetryCount: 0
// marshals to a document with no retry_count key at all, so `||` leaves
// whatever count is already stored untouched — this is the explicit reset
// a transition like processing_withdrawal -> transfer_pending needs so a
// withdrawal-phase retry doesn't also consume the next phase's retry
// budget.
func (r *TransactionRepository) UpdateStatusWithMetadataResettingRetry(ctx context.Context, sqlExec db.SQLExecuter, id string, expectedStatus, newStatus Status, metadataPatch Metadata) (*Transaction, error) {
	query := `
		UPDATE transactions
		SET status = $1,
		    metadata = (metadata || $2::jsonb)
		               - 'retry_count' - 'last_retry_at' - 'next_retry_after',
		    updated_at = NOW()
		WHERE id = $3 AND status = $4
		RETURNING ` + transactionColumns

	var tx Transaction
	err := sqlExec.GetContext(ctx, &tx, query, newStatus, metadataPatch, id, expectedStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("updating transaction %q status/metadata to %q (resetting retry): %w", id, newStatus, err)
	}

	return &tx, nil
}

// SetBlockchainTxHash records the Stellar transaction hash the moment a
// submission succeeds, before confirmation is known, so a crash leaves a
// recoverable trail (spec §4.2 step 6). It refuses to overwrite an
// existing hash, per invariant 4.
func (r *TransactionRepository) SetBlockchainTxHash(ctx context.Context, sqlExec db.SQLExecuter, id, hash string) (*Transaction, error) {
	query := `
		UPDATE transactions
		SET blockchain_tx_hash = $1, updated_at = NOW()
		WHERE id = $2 AND blockchain_tx_hash IS NULL
		RETURNING ` + transactionColumns

	var tx Transaction
	err := sqlExec.GetContext(ctx, &tx, query, hash, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("setting blockchain tx hash for transaction %q: %w", id, err)
	}

	return &tx, nil
}

// SetPaymentProvider records which provider a withdrawal was submitted
// through, conditional on the expected status so a stale retry cannot
// clobber a newer attempt's provider choice.
func (r *TransactionRepository) SetPaymentProvider(ctx context.Context, sqlExec db.SQLExecuter, id string, expectedStatus Status, paymentProvider string) (*Transaction, error) {
	query := `
		UPDATE transactions
		SET payment_provider = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING ` + transactionColumns

	var tx Transaction
	err := sqlExec.GetContext(ctx, &tx, query, paymentProvider, id, expectedStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("setting payment provider for transaction %q: %w", id, err)
	}

	return &tx, nil
}

// SetErrorMessage stamps the human-readable failure reason alongside a
// terminal status transition in one statement.
func (r *TransactionRepository) SetErrorMessage(ctx context.Context, sqlExec db.SQLExecuter, id string, expectedStatus, newStatus Status, errorMessage string) (*Transaction, error) {
	query := `
		UPDATE transactions
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
		RETURNING ` + transactionColumns

	var tx Transaction
	err := sqlExec.GetContext(ctx, &tx, query, newStatus, errorMessage, id, expectedStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("setting error message on transaction %q: %w", id, err)
	}

	return &tx, nil
}
