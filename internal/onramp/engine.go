package onramp

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

// pollFallbackAge is how old a pending transaction must be, with no
// associated webhook event, before the cycle polls its provider directly
// (spec.md §4.2 cycle step 2).
const pollFallbackAge = 2 * time.Minute

// Engine drives pending onramp transactions to completed or a terminal
// failure. It implements scheduler.Job so it can be registered with
// scheduler.WithJob; grounded on
// internal/transactionsubmission/transaction_worker.go's
// processTransactionSubmission / reconcileSubmittedTransaction split
// between building-and-submitting a fresh payment and polling one already
// submitted.
type Engine struct {
	Transactions *store.TransactionRepository
	Gateway      stellarbridge.Gateway
	Providers    map[provider.Name]provider.PaymentProvider

	HotWalletSecret   string
	SystemWalletAddr  string
	NetworkPassphrase string
	CNGNAssetCode     string
	CNGNAssetIssuer   string

	PollInterval   time.Duration
	BatchSize      int
	PendingTimeout time.Duration
	StellarRetries int

	// Notifier and OperatorEmail are optional. When Notifier is nil,
	// notifications are skipped entirely rather than attempted and logged.
	Notifier      notify.MessengerClient
	OperatorEmail string
}

func (e *Engine) GetName() string            { return "onramp-engine" }
func (e *Engine) GetInterval() time.Duration { return e.PollInterval }

// notify best-effort sends msg to the operator mailbox. A delivery failure
// is logged, not propagated: notifications are advisory, not part of the
// transaction state machine.
func (e *Engine) notify(ctx context.Context, msg notify.Message) {
	if e.Notifier == nil {
		return
	}
	if err := e.Notifier.SendMessage(ctx, msg); err != nil {
		log.Ctx(ctx).WithError(err).Warn("onramp notification delivery failed")
	}
}

// Execute runs one cycle: timeout sweep, polling fallback, confirmation
// monitor. Each stage sees its own independently-locked batch, per
// spec.md §5's "stages are processed sequentially" rule.
func (e *Engine) Execute(ctx context.Context) error {
	ctx = corelog.WithJob(ctx, e.GetName())

	if err := e.sweepTimeouts(ctx); err != nil {
		log.Ctx(ctx).WithError(err).Error("onramp timeout sweep failed")
	}
	if err := e.pollFallback(ctx); err != nil {
		log.Ctx(ctx).WithError(err).Error("onramp polling fallback failed")
	}
	if err := e.monitorConfirmations(ctx); err != nil {
		log.Ctx(ctx).WithError(err).Error("onramp confirmation monitor failed")
	}

	return nil
}

// sweepTimeouts implements cycle step 1: pending transactions older than
// PendingTimeout fail with no refund, because no money was ever taken.
func (e *Engine) sweepTimeouts(ctx context.Context) error {
	return e.Transactions.WithLockedBatch(ctx, store.DirectionOnramp, []store.Status{store.StatusPending}, e.BatchSize, func(dbTx db.DBTransaction, batch []*store.Transaction) error {
		for _, tx := range batch {
			if time.Since(tx.CreatedAt) < e.PendingTimeout {
				continue
			}
			txCtx := corelog.WithTransaction(ctx, tx)
			if _, err := e.Transactions.SetErrorMessage(txCtx, dbTx, tx.ID, store.StatusPending, store.StatusFailed, ReasonPaymentTimeout); err != nil {
				if err == store.ErrRecordNotFound {
					continue
				}
				return fmt.Errorf("timing out transaction %q: %w", tx.ID, err)
			}
			log.Ctx(txCtx).Info("onramp transaction timed out, no payment was ever taken")
		}
		return nil
	})
}

// pollFallback implements cycle step 2. Transactions with no associated
// webhook event are identified by payment_reference simply having
// produced no confirmed result yet; a direct provider poll substitutes
// for the missing webhook.
func (e *Engine) pollFallback(ctx context.Context) error {
	return e.Transactions.WithLockedBatch(ctx, store.DirectionOnramp, []store.Status{store.StatusPending}, e.BatchSize, func(dbTx db.DBTransaction, batch []*store.Transaction) error {
		for _, tx := range batch {
			if time.Since(tx.CreatedAt) < pollFallbackAge {
				continue
			}
			if !tx.PaymentReference.Valid || tx.PaymentProvider == "" {
				continue
			}

			txCtx := corelog.WithTransaction(ctx, tx)
			p, ok := e.Providers[provider.Name(tx.PaymentProvider)]
			if !ok {
				log.Ctx(txCtx).Warnf("no provider client registered for %q", tx.PaymentProvider)
				continue
			}

			result, err := p.GetPaymentStatus(txCtx, tx.PaymentReference.String)
			if err != nil {
				log.Ctx(txCtx).WithError(err).Warn("onramp poll fallback: provider status check failed")
				continue
			}
			if result.Status != provider.PaymentStatusSuccess {
				continue
			}

			if err := e.handlePaymentConfirmed(txCtx, dbTx, tx, tx.FromAmount); err != nil {
				log.Ctx(txCtx).WithError(err).Error("onramp poll fallback: payment-confirmed path failed")
			}
		}
		return nil
	})
}

// monitorConfirmations implements cycle step 3: processing transactions
// with a stored hash are checked against Horizon until their transaction
// closes successfully.
func (e *Engine) monitorConfirmations(ctx context.Context) error {
	return e.Transactions.WithLockedBatch(ctx, store.DirectionOnramp, []store.Status{store.StatusProcessing}, e.BatchSize, func(dbTx db.DBTransaction, batch []*store.Transaction) error {
		for _, tx := range batch {
			if !tx.BlockchainTxHash.Valid {
				continue
			}
			txCtx := corelog.WithTransaction(ctx, tx)

			result, err := e.Gateway.GetTransaction(txCtx, tx.BlockchainTxHash.String)
			if err != nil {
				if err == stellarbridge.ErrTransactionNotFound {
					continue
				}
				log.Ctx(txCtx).WithError(err).Warn("onramp confirmation monitor: horizon lookup failed")
				continue
			}
			if !result.Successful {
				continue
			}

			ledger := result.Ledger
			if _, err := e.Transactions.UpdateStatusWithMetadata(txCtx, dbTx, tx.ID, store.StatusProcessing, store.StatusCompleted, store.Metadata{StellarLedger: &ledger}); err != nil {
				if err == store.ErrRecordNotFound {
					continue
				}
				return fmt.Errorf("completing transaction %q: %w", tx.ID, err)
			}
			log.Ctx(txCtx).Info("onramp transaction completed")
			e.notify(txCtx, notify.TransactionCompletedMessage(e.OperatorEmail, tx.ID))
		}
		return nil
	})
}

// HandlePaymentConfirmed is the entry point a webhook handler or the
// polling fallback calls once a provider reports a successful fiat
// payment. It opens its own row lock via WithLockedBatch-style access
// pattern is not used here because a single row is targeted by ID rather
// than selected as a batch; FindByID plus the conditional UpdateStatus
// together provide the same race-freedom spec.md §4.2 step 3 requires.
func (e *Engine) HandlePaymentConfirmed(ctx context.Context, sqlExec db.SQLExecuter, transactionID string, reportedAmount decimal.Decimal) error {
	tx, err := e.Transactions.FindByID(ctx, sqlExec, transactionID)
	if err != nil {
		return fmt.Errorf("loading transaction %q: %w", transactionID, err)
	}
	return e.handlePaymentConfirmed(corelog.WithTransaction(ctx, tx), sqlExec, tx, reportedAmount)
}

// handlePaymentConfirmed implements spec.md §4.2's seven numbered steps.
func (e *Engine) handlePaymentConfirmed(ctx context.Context, sqlExec db.SQLExecuter, tx *store.Transaction, reportedAmount decimal.Decimal) error {
	// Step 1: reject if not pending.
	if tx.Status != store.StatusPending {
		log.Ctx(ctx).Debugf("onramp payment-confirmed: transaction already %q, ignoring", tx.Status)
		return nil
	}

	// Step 2: provider-reported amount must exactly equal from_amount.
	if !reportedAmount.Equal(tx.FromAmount) {
		if _, err := e.Transactions.SetErrorMessage(ctx, sqlExec, tx.ID, store.StatusPending, store.StatusFailed, ReasonAmountMismatch); err != nil {
			if err == store.ErrRecordNotFound {
				return nil
			}
			return fmt.Errorf("failing transaction %q on amount mismatch: %w", tx.ID, err)
		}
		log.Ctx(ctx).Warn("onramp payment amount mismatch, no refund decision made here")
		return nil
	}

	// Step 3: claim via conditional update. Zero rows means another actor
	// already won the race.
	claimed, err := e.Transactions.UpdateStatus(ctx, sqlExec, tx.ID, store.StatusPending, store.StatusProcessing)
	if err != nil {
		if err == store.ErrRecordNotFound {
			return nil
		}
		return fmt.Errorf("claiming transaction %q: %w", tx.ID, err)
	}
	tx = claimed
	e.notify(ctx, notify.PaymentConfirmedMessage(e.OperatorEmail, tx.ID, reportedAmount.String()))

	// Step 4: recipient must hold a cNGN trustline.
	recipient, err := e.Gateway.GetAccount(ctx, tx.WalletAddress)
	if err != nil {
		return e.failAndRefund(ctx, sqlExec, tx, ReasonTrustlineNotFound, fmt.Errorf("loading recipient account: %w", err))
	}
	if !recipient.HasTrustline(e.CNGNAssetCode, e.CNGNAssetIssuer) {
		return e.failAndRefund(ctx, sqlExec, tx, ReasonTrustlineNotFound, nil)
	}

	// Step 5: system account must hold at least to_amount cNGN.
	ok, err := e.verifySystemLiquidity(ctx, tx.ToAmount)
	if err != nil {
		return fmt.Errorf("checking system liquidity: %w", err)
	}
	if !ok {
		return e.failAndRefund(ctx, sqlExec, tx, ReasonInsufficientCNGN, nil)
	}

	// Step 6: build, sign, submit. Retries happen across engine cycles via
	// the retry harness, not inline here; a transient failure on this
	// first attempt simply leaves the transaction in processing with
	// retry bookkeeping recorded for the next cycle to pick up.
	hotWallet, err := e.Gateway.GetAccount(ctx, e.SystemWalletAddr)
	if err != nil {
		return fmt.Errorf("loading hot wallet account: %w", err)
	}

	signedTx, err := stellarbridge.BuildSignedPayment(stellarbridge.PaymentParams{
		NetworkPassphrase: e.NetworkPassphrase,
		HotWalletSecret:   e.HotWalletSecret,
		HotWalletAccount:  hotWallet,
		Destination:       tx.WalletAddress,
		AssetCode:         e.CNGNAssetCode,
		AssetIssuer:       e.CNGNAssetIssuer,
		Amount:            tx.ToAmount.String(),
	})
	if err != nil {
		return e.failAndRefund(ctx, sqlExec, tx, ReasonStellarPermanent, err)
	}

	policy := retryharness.StellarSubmission
	if e.StellarRetries > 0 {
		policy.MaxAttempts = e.StellarRetries
	}
	result := retryharness.Attempt(policy, tx.Metadata.RetryCount, time.Now(), func() error {
		submitResult, submitErr := e.Gateway.SubmitTransaction(ctx, signedTx)
		if submitErr != nil {
			return stellarbridge.ClassifySubmitError(submitErr)
		}
		// Hash is persisted before confirmation is awaited, so a crash
		// leaves a recoverable trail (spec.md §4.2 step 6).
		if _, hashErr := e.Transactions.SetBlockchainTxHash(ctx, sqlExec, tx.ID, submitResult.Hash); hashErr != nil {
			return coreerrors.NewInfrastructureError("postgres", hashErr)
		}
		return nil
	})

	switch result.Outcome {
	case retryharness.OutcomeSuccess:
		log.Ctx(ctx).Info("onramp payment submitted, awaiting confirmation")
		return nil
	case retryharness.OutcomeRetryable:
		if _, err := e.Transactions.UpdateStatusWithMetadata(ctx, sqlExec, tx.ID, store.StatusProcessing, store.StatusProcessing, store.Metadata{
			RetryCount:     result.RetryCount,
			NextRetryAfter: result.NextRetryAfter,
		}); err != nil && err != store.ErrRecordNotFound {
			return fmt.Errorf("recording onramp retry bookkeeping for %q: %w", tx.ID, err)
		}
		return nil
	default:
		// Step 7: OutcomeExhausted or OutcomePermanent both escalate to
		// refund after retries, per spec.md §4.2 step 7.
		return e.failAndRefund(ctx, sqlExec, tx, ReasonStellarPermanent, result.Err)
	}
}

// failAndRefund marks tx failed with reason and, per spec.md §4.2 steps
// 4/5/7, initiates a fiat refund: the onramp refund sub-protocol (§4.7)
// is the provider reversing the NGN payment asynchronously, so the core
// only records the refund intent.
//
// Transitions to refunded, not failed, for every caller including the
// missing-trustline case. Step 4's prose literally says "status failed"
// for a missing trustline, but §4.1's transition table and §7's
// definition of the refunded state both put a refund-triggering
// rejection there instead; the table and the terminal-state definitions
// were treated as authoritative over the one contradicting sentence.
func (e *Engine) failAndRefund(ctx context.Context, sqlExec db.SQLExecuter, tx *store.Transaction, reason string, cause error) error {
	if cause != nil {
		log.Ctx(ctx).WithError(cause).Warnf("onramp transaction failing: %s", reason)
	}

	if _, err := e.Transactions.SetErrorMessage(ctx, sqlExec, tx.ID, store.StatusProcessing, store.StatusRefunded, reason); err != nil {
		if err == store.ErrRecordNotFound {
			return nil
		}
		return fmt.Errorf("marking transaction %q refunded: %w", tx.ID, err)
	}
	e.notify(ctx, notify.RefundIssuedMessage(e.OperatorEmail, tx.ID, reason))

	p, ok := e.Providers[provider.Name(tx.PaymentProvider)]
	if !ok {
		log.Ctx(ctx).Warnf("no provider client registered for %q, cannot initiate fiat refund", tx.PaymentProvider)
		return nil
	}

	refundResp, err := p.RefundPayment(ctx, tx.PaymentReference.String, tx.FromAmount.String())
	if err != nil {
		// The refund call surface is out-of-scope per spec.md §4.7: the
		// core marks intent and relies on the provider's own
		// asynchronous webhook to complete it. A failure here is logged,
		// not escalated further.
		log.Ctx(ctx).WithError(err).Error("onramp fiat refund request failed, requires manual follow-up")
		return nil
	}

	if _, err := e.Transactions.UpdateStatusWithMetadata(ctx, sqlExec, tx.ID, store.StatusRefunded, store.StatusRefunded, store.Metadata{
		ProviderReference: refundResp.ProviderReference,
	}); err != nil && err != store.ErrRecordNotFound {
		log.Ctx(ctx).WithError(err).Warn("recording onramp refund reference failed")
	}

	return nil
}

// verifySystemLiquidity resolves spec.md §9 Open Question 1: it queries
// the hot wallet's own cNGN balance line and checks it against toAmount,
// grounded on the teacher's engine/distribution_account_resolver.go
// pattern of resolving and checking an account's state before
// submission.
func (e *Engine) verifySystemLiquidity(ctx context.Context, toAmount decimal.Decimal) (bool, error) {
	account, err := e.Gateway.GetAccount(ctx, e.SystemWalletAddr)
	if err != nil {
		return false, fmt.Errorf("loading system wallet account: %w", err)
	}

	balanceStr := account.BalanceOf(e.CNGNAssetCode, e.CNGNAssetIssuer)
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return false, fmt.Errorf("parsing system wallet cNGN balance %q: %w", balanceStr, err)
	}

	return balance.GreaterThanOrEqual(toAmount), nil
}
