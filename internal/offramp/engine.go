package offramp

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/support/log"

	"github.com/bitstarkbridge/aframp-backend/db"
	"github.com/bitstarkbridge/aframp-backend/internal/coreerrors"
	"github.com/bitstarkbridge/aframp-backend/internal/corelog"
	"github.com/bitstarkbridge/aframp-backend/internal/notify"
	"github.com/bitstarkbridge/aframp-backend/internal/provider"
	"github.com/bitstarkbridge/aframp-backend/internal/retryharness"
	"github.com/bitstarkbridge/aframp-backend/internal/stellarbridge"
	"github.com/bitstarkbridge/aframp-backend/internal/store"
)

// Engine drives cNGN-received offramp transactions through withdrawal,
// transfer monitoring, and refund. It implements scheduler.Job.
// Grounded nearly line-for-line on
// original_source/src/workers/offramp_processor.rs's four process_*
// stages, reimplemented in the teacher's Go idiom: explicit error
// returns, fmt.Errorf wrapping, and structured logrus fields in place of
// tracing! macros.
type Engine struct {
	Transactions *store.TransactionRepository
	Gateway      stellarbridge.Gateway
	Providers    map[provider.Name]provider.PaymentProvider

	HotWalletSecret   string
	SystemWalletAddr  string
	NetworkPassphrase string
	CNGNAssetCode     string
	CNGNAssetIssuer   string

	PollInterval        time.Duration
	BatchSize           int
	OfframpRetryTimeout time.Duration

	// Notifier and OperatorEmail are optional. When Notifier is nil,
	// notifications are skipped entirely rather than attempted and logged.
	Notifier      notify.MessengerClient
	OperatorEmail string
}

func (e *Engine) GetName() string            { return "offramp-engine" }
func (e *Engine) GetInterval() time.Duration { return e.PollInterval }

// notify best-effort sends msg to the operator mailbox. A delivery failure
// is logged, not propagated: notifications are advisory, not part of the
// transaction state machine.
func (e *Engine) notify(ctx context.Context, msg notify.Message) {
	if e.Notifier == nil {
		return
	}
	if err := e.Notifier.SendMessage(ctx, msg); err != nil {
		log.Ctx(ctx).WithError(err).Warn("offramp notification delivery failed")
	}
}

// Execute runs one cycle's four independent stages, each against its own
// locked batch, per spec.md §4.3 and §5's "stages are processed
// sequentially" rule.
func (e *Engine) Execute(ctx context.Context) error {
	ctx = corelog.WithJob(ctx, e.GetName())

	if err := e.verifyReceipts(ctx); err != nil {
		log.Ctx(ctx).WithError(err).Error("offramp receipt verification failed")
	}
	if err := e.initiateWithdrawals(ctx); err != nil {
		log.Ctx(ctx).WithError(err).Error("offramp withdrawal initiation failed")
	}
	if err := e.monitorTransfers(ctx); err != nil {
		log.Ctx(ctx).WithError(err).Error("offramp transfer monitoring failed")
	}
	if err := e.processRefunds(ctx); err != nil {
		log.Ctx(ctx).WithError(err).Error("offramp refund processing failed")
	}

	return nil
}

// verifyReceipts implements stage 1: locate the cNGN payment to the
// system wallet at the recorded incoming hash, from the trusted issuer,
// and strictly compare its amount to from_amount.
func (e *Engine) verifyReceipts(ctx context.Context) error {
	return e.Transactions.WithLockedBatch(ctx, store.DirectionOfframp, []store.Status{store.StatusCngnReceived}, e.BatchSize, func(dbTx db.DBTransaction, batch []*store.Transaction) error {
		for _, tx := range batch {
			txCtx := corelog.WithTransaction(ctx, tx)
			if !tx.BlockchainTxHash.Valid {
				log.Ctx(txCtx).Warn("cngn_received transaction has no recorded incoming hash")
				continue
			}

			ops, err := e.Gateway.GetTransactionOperations(txCtx, tx.BlockchainTxHash.String)
			if err != nil {
				log.Ctx(txCtx).WithError(err).Warn("offramp receipt verification: horizon lookup failed")
				continue
			}

			matched, ok := findIncomingPayment(ops, e.SystemWalletAddr, e.CNGNAssetCode, e.CNGNAssetIssuer)
			if !ok {
				if err := e.initiateRefund(txCtx, dbTx, tx, store.StatusCngnReceived, ReasonReceiptAmountMismatch); err != nil {
					return err
				}
				continue
			}

			amount, err := decimal.NewFromString(matched.Amount)
			if err != nil {
				log.Ctx(txCtx).WithError(err).Warn("offramp receipt verification: unparseable payment amount")
				continue
			}
			if !amount.Equal(tx.FromAmount) {
				if err := e.initiateRefund(txCtx, dbTx, tx, store.StatusCngnReceived, ReasonReceiptAmountMismatch); err != nil {
					return err
				}
				continue
			}

			if _, err := e.Transactions.UpdateStatus(txCtx, dbTx, tx.ID, store.StatusCngnReceived, store.StatusVerifyingAmount); err != nil {
				if err == store.ErrRecordNotFound {
					continue
				}
				return fmt.Errorf("advancing transaction %q to verifying_amount: %w", tx.ID, err)
			}

			if _, err := e.Transactions.UpdateStatus(txCtx, dbTx, tx.ID, store.StatusVerifyingAmount, store.StatusProcessingWithdrawal); err != nil {
				if err == store.ErrRecordNotFound {
					continue
				}
				return fmt.Errorf("advancing transaction %q to processing_withdrawal: %w", tx.ID, err)
			}
			log.Ctx(txCtx).Info("offramp receipt verified, ready for withdrawal")
		}
		return nil
	})
}

func findIncomingPayment(ops []stellarbridge.Operation, destination, assetCode, assetIssuer string) (stellarbridge.Operation, bool) {
	for _, op := range ops {
		if op.To == destination && op.AssetCode == assetCode && op.AssetIssuer == assetIssuer {
			return op, true
		}
	}
	return stellarbridge.Operation{}, false
}

// initiateWithdrawals implements stage 2: deterministic provider
// selection on attempt number, classified-error handling, and
// transition to transfer_pending on success.
func (e *Engine) initiateWithdrawals(ctx context.Context) error {
	return e.Transactions.WithLockedBatch(ctx, store.DirectionOfframp, []store.Status{store.StatusProcessingWithdrawal}, e.BatchSize, func(dbTx db.DBTransaction, batch []*store.Transaction) error {
		for _, tx := range batch {
			txCtx := corelog.WithTransaction(ctx, tx)

			attemptNumber := tx.Metadata.RetryCount + 1
			providerName := provider.SelectProvider(tx.ToCurrency, attemptNumber)
			p, ok := e.Providers[providerName]
			if !ok {
				log.Ctx(txCtx).Warnf("no provider client registered for %q", providerName)
				continue
			}

			resp, err := p.ProcessWithdrawal(txCtx, provider.WithdrawalRequest{
				TransactionID:     tx.ID,
				Amount:            tx.ToAmount.String(),
				Currency:          tx.ToCurrency,
				BankAccountName:   tx.Metadata.BankAccountName,
				BankAccountNumber: tx.Metadata.BankAccountNumber,
				BankCode:          tx.Metadata.BankCode,
			})
			if err != nil {
				if e.handleWithdrawalError(txCtx, dbTx, tx, attemptNumber, err) != nil {
					return fmt.Errorf("handling withdrawal error for %q: %w", tx.ID, err)
				}
				continue
			}

			if _, err := e.Transactions.SetPaymentProvider(txCtx, dbTx, tx.ID, store.StatusProcessingWithdrawal, string(providerName)); err != nil && err != store.ErrRecordNotFound {
				return fmt.Errorf("recording provider choice for transaction %q: %w", tx.ID, err)
			}

			if _, err := e.Transactions.UpdateStatusWithMetadataResettingRetry(txCtx, dbTx, tx.ID, store.StatusProcessingWithdrawal, store.StatusTransferPending, store.Metadata{
				ProviderReference: resp.ProviderReference,
			}); err != nil {
				if err == store.ErrRecordNotFound {
					continue
				}
				return fmt.Errorf("advancing transaction %q to transfer_pending: %w", tx.ID, err)
			}
			log.Ctx(txCtx).Infof("offramp withdrawal submitted via %s", providerName)
		}
		return nil
	})
}

// handleWithdrawalError classifies a withdrawal error: retryable errors
// keep the transaction in processing_withdrawal with an incremented
// retry counter; permanent errors, or exhausting the 3rd attempt,
// escalate straight to refund_initiated.
func (e *Engine) handleWithdrawalError(ctx context.Context, sqlExec db.SQLExecuter, tx *store.Transaction, attemptNumber int, withdrawalErr error) error {
	retryable := false
	if wErr, ok := asWithdrawalError(withdrawalErr); ok {
		retryable = wErr.Retryable()
	}

	if retryable && attemptNumber < 3 {
		log.Ctx(ctx).WithError(withdrawalErr).Warn("offramp withdrawal transiently failed, retrying next cycle")
		_, err := e.Transactions.UpdateStatusWithMetadata(ctx, sqlExec, tx.ID, store.StatusProcessingWithdrawal, store.StatusProcessingWithdrawal, store.Metadata{
			RetryCount: attemptNumber,
		})
		if err != nil && err != store.ErrRecordNotFound {
			return err
		}
		return nil
	}

	return e.initiateRefund(ctx, sqlExec, tx, store.StatusProcessingWithdrawal, ReasonWithdrawalRejected)
}

func asWithdrawalError(err error) (*provider.WithdrawalError, bool) {
	wErr, ok := err.(*provider.WithdrawalError)
	return wErr, ok
}

// classifyPollError adapts a provider.WithdrawalError into the
// coreerrors taxonomy retryharness.Attempt switches on, since the
// provider package and the retry harness were built against different
// error vocabularies (provider errors carry a per-collaborator Kind,
// the harness wants transient-vs-permanent).
func classifyPollError(err error) error {
	wErr, ok := asWithdrawalError(err)
	if !ok {
		return coreerrors.NewExternalTransientError("payment-provider", err)
	}
	if wErr.Retryable() {
		return coreerrors.NewExternalTransientError(string(wErr.Provider), wErr)
	}
	return coreerrors.NewExternalPermanentError(string(wErr.Provider), string(wErr.Kind), wErr)
}

// monitorTransfers implements stage 3: honour next_retry_after, poll the
// chosen provider, and branch on its terminal/pending verdict plus the
// per-transaction wall-clock timeout.
func (e *Engine) monitorTransfers(ctx context.Context) error {
	return e.Transactions.WithLockedBatch(ctx, store.DirectionOfframp, []store.Status{store.StatusTransferPending}, e.BatchSize, func(dbTx db.DBTransaction, batch []*store.Transaction) error {
		now := time.Now()
		for _, tx := range batch {
			if !retryharness.Eligible(tx.Metadata.NextRetryAfter, now) {
				continue
			}
			txCtx := corelog.WithTransaction(ctx, tx)

			if time.Since(tx.CreatedAt) > e.OfframpRetryTimeout {
				if err := e.initiateRefund(txCtx, dbTx, tx, store.StatusTransferPending, ReasonTransferTimeout); err != nil {
					return err
				}
				continue
			}

			p, ok := e.Providers[provider.Name(tx.PaymentProvider)]
			if !ok {
				log.Ctx(txCtx).Warnf("no provider client registered for %q", tx.PaymentProvider)
				continue
			}

			result, err := p.GetPaymentStatus(txCtx, tx.Metadata.ProviderReference)
			if err != nil {
				classified := classifyPollError(err)
				pollResult := retryharness.Attempt(retryharness.TransferPolling, tx.Metadata.RetryCount, now, func() error { return classified })
				if pollResult.Outcome == retryharness.OutcomeExhausted || pollResult.Outcome == retryharness.OutcomePermanent {
					if ierr := e.initiateRefund(txCtx, dbTx, tx, store.StatusTransferPending, ReasonTransferFailed); ierr != nil {
						return ierr
					}
					continue
				}
				if _, uerr := e.Transactions.UpdateStatusWithMetadata(txCtx, dbTx, tx.ID, store.StatusTransferPending, store.StatusTransferPending, store.Metadata{
					RetryCount:     pollResult.RetryCount,
					NextRetryAfter: pollResult.NextRetryAfter,
				}); uerr != nil && uerr != store.ErrRecordNotFound {
					return fmt.Errorf("recording transfer poll retry for %q: %w", tx.ID, uerr)
				}
				continue
			}

			switch result.Status {
			case provider.PaymentStatusSuccess:
				if _, err := e.Transactions.UpdateStatus(txCtx, dbTx, tx.ID, store.StatusTransferPending, store.StatusCompleted); err != nil {
					if err == store.ErrRecordNotFound {
						continue
					}
					return fmt.Errorf("completing transaction %q: %w", tx.ID, err)
				}
				log.Ctx(txCtx).Info("offramp transfer completed")
				e.notify(txCtx, notify.TransactionCompletedMessage(e.OperatorEmail, tx.ID))
			case provider.PaymentStatusFailed:
				if err := e.initiateRefund(txCtx, dbTx, tx, store.StatusTransferPending, ReasonTransferFailed); err != nil {
					return err
				}
			default:
				// still pending/processing; leave for the next cycle
			}
		}
		return nil
	})
}

// processRefunds implements stage 4: build, sign, and submit the
// reversing cNGN payment from the system wallet. The transition to
// refunding happens before submission so a crash resumes deterministically.
func (e *Engine) processRefunds(ctx context.Context) error {
	return e.Transactions.WithLockedBatch(ctx, store.DirectionOfframp, []store.Status{store.StatusRefundInitiated}, e.BatchSize, func(dbTx db.DBTransaction, batch []*store.Transaction) error {
		for _, tx := range batch {
			txCtx := corelog.WithTransaction(ctx, tx)

			claimed, err := e.Transactions.UpdateStatus(txCtx, dbTx, tx.ID, store.StatusRefundInitiated, store.StatusRefunding)
			if err != nil {
				if err == store.ErrRecordNotFound {
					continue
				}
				return fmt.Errorf("claiming refund for transaction %q: %w", tx.ID, err)
			}

			hotWallet, err := e.Gateway.GetAccount(txCtx, e.SystemWalletAddr)
			if err != nil {
				if ferr := e.failRefund(txCtx, dbTx, claimed, fmt.Errorf("loading hot wallet account: %w", err)); ferr != nil {
					return ferr
				}
				continue
			}

			signedTx, err := stellarbridge.BuildSignedPayment(stellarbridge.PaymentParams{
				NetworkPassphrase: e.NetworkPassphrase,
				HotWalletSecret:   e.HotWalletSecret,
				HotWalletAccount:  hotWallet,
				Destination:       claimed.WalletAddress,
				AssetCode:         e.CNGNAssetCode,
				AssetIssuer:       e.CNGNAssetIssuer,
				Amount:            claimed.FromAmount.String(),
				MemoText:          stellarbridge.BuildRefundMemo(claimed.ID),
			})
			if err != nil {
				if ferr := e.failRefund(txCtx, dbTx, claimed, err); ferr != nil {
					return ferr
				}
				continue
			}

			submitResult, err := e.Gateway.SubmitTransaction(txCtx, signedTx)
			if err != nil {
				if ferr := e.failRefund(txCtx, dbTx, claimed, err); ferr != nil {
					return ferr
				}
				continue
			}

			if _, err := e.Transactions.SetBlockchainTxHash(txCtx, dbTx, claimed.ID, submitResult.Hash); err != nil && err != store.ErrRecordNotFound {
				log.Ctx(txCtx).WithError(err).Warn("failed to record refund tx hash")
			}
			if _, err := e.Transactions.UpdateStatus(txCtx, dbTx, claimed.ID, store.StatusRefunding, store.StatusRefunded); err != nil {
				if err == store.ErrRecordNotFound {
					continue
				}
				return fmt.Errorf("marking transaction %q refunded: %w", claimed.ID, err)
			}
			log.Ctx(txCtx).Info("offramp refund submitted")
		}
		return nil
	})
}

// failRefund marks a refund attempt failed. Per spec.md §4.7, refund
// failure is the worst outcome the core admits: it lands in failed for
// manual review, with no further automatic action.
func (e *Engine) failRefund(ctx context.Context, sqlExec db.SQLExecuter, tx *store.Transaction, cause error) error {
	log.Ctx(ctx).WithError(cause).Error("offramp refund failed, manual review required")
	if _, err := e.Transactions.SetErrorMessage(ctx, sqlExec, tx.ID, store.StatusRefunding, store.StatusFailed, ReasonRefundFailed); err != nil && err != store.ErrRecordNotFound {
		return fmt.Errorf("marking transaction %q failed after refund error: %w", tx.ID, err)
	}
	e.notify(ctx, notify.TransactionFailedMessage(e.OperatorEmail, tx.ID, ReasonRefundFailed))
	return nil
}

// initiateRefund transitions tx from its current (expected) status into
// refund_initiated and stamps the failure reason in one call.
func (e *Engine) initiateRefund(ctx context.Context, sqlExec db.SQLExecuter, tx *store.Transaction, expectedStatus store.Status, reason string) error {
	if _, err := e.Transactions.SetErrorMessage(ctx, sqlExec, tx.ID, expectedStatus, store.StatusRefundInitiated, reason); err != nil {
		if err == store.ErrRecordNotFound {
			return nil
		}
		return fmt.Errorf("initiating refund for transaction %q: %w", tx.ID, err)
	}
	log.Ctx(ctx).Warnf("offramp transaction entering refund: %s", reason)
	e.notify(ctx, notify.RefundIssuedMessage(e.OperatorEmail, tx.ID, reason))
	return nil
}
