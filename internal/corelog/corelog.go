// Package corelog attaches transaction context to the logger every engine
// and handler pulls off ctx. It is a thin helper over
// github.com/stellar/go/support/log, the same context-carrying logrus
// wrapper the rest of this module already uses (log.Ctx(ctx),
// log.Set(ctx, logger)) — this package does not replace that logger, it
// standardizes the one set of fields every transaction-scoped log line
// in this system carries.
package corelog

import (
	"context"

	"github.com/stellar/go/support/log"

	"github.com/bitstarkbridge/aframp-backend/internal/store"
)

// WithTransaction returns a context whose logger is annotated with the
// transaction's identifying fields, grounded on
// transaction_worker.go's updateContextLogger.
func WithTransaction(ctx context.Context, tx *store.Transaction) context.Context {
	fields := map[string]interface{}{
		"transaction_id": tx.ID,
		"direction":      string(tx.Direction),
		"status":         string(tx.Status),
	}
	if tx.BlockchainTxHash.Valid {
		fields["tx_hash"] = tx.BlockchainTxHash.String
	}
	if tx.PaymentProvider != "" {
		fields["payment_provider"] = tx.PaymentProvider
	}

	return log.Set(ctx, log.Ctx(ctx).WithFields(fields))
}

// WithJob annotates the logger with the scheduler job name, for lines
// logged outside the scope of any single transaction (cycle start/end,
// batch-selection errors).
func WithJob(ctx context.Context, jobName string) context.Context {
	return log.Set(ctx, log.Ctx(ctx).WithField("job", jobName))
}
