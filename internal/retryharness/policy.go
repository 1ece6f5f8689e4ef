// Package retryharness implements the cross-cycle retry bookkeeping every
// retryable operation in the onramp and offramp engines shares: a
// per-operation backoff vector and max-attempt count, eligibility gating
// via a transaction's persisted next_retry_after, and a uniform
// success/transient/permanent outcome an engine can branch on.
//
// This operates across processor ticks, not within a single call: one
// Attempt corresponds to one engine-cycle visit to one transaction.
// Immediate intra-call retries for isolated network blips (a single HTTP
// request, a single Horizon call) are a different concern, handled by
// WithTransientRetry in this package, a wrapper over
// github.com/avast/retry-go/v4 that internal/provider's HTTP clients call.
package retryharness

import (
	"errors"
	"time"

	"github.com/bitstarkbridge/aframp-backend/internal/coreerrors"
)

// Outcome is the result of one Attempt.
type Outcome int

const (
	// OutcomeSuccess means the operation succeeded; retry bookkeeping
	// should be cleared.
	OutcomeSuccess Outcome = iota
	// OutcomeRetryable means the operation failed transiently and
	// attempts remain; NextRetryAfter tells the caller when to try
	// again.
	OutcomeRetryable
	// OutcomeExhausted means the operation failed transiently and no
	// attempts remain; the caller should escalate (typically to a
	// refund) exactly as it would for OutcomePermanent.
	OutcomeExhausted
	// OutcomePermanent means the operation failed in a way retrying
	// will not fix; the caller should escalate immediately regardless
	// of attempts remaining.
	OutcomePermanent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryable:
		return "retryable"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomePermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Policy is a named backoff vector and attempt ceiling. Index i of
// Backoff is the delay applied after the (i+1)th failed attempt, so
// Backoff[retryCount] is the delay to apply for the retry about to be
// scheduled. Once RetryCount reaches MaxAttempts, the operation is
// exhausted.
type Policy struct {
	Name        string
	MaxAttempts int
	Backoff     []time.Duration
}

// StellarSubmission matches the default 3-attempt, [2s, 4s, 8s] backoff
// used for Stellar payment submission and confirmation retries.
var StellarSubmission = Policy{
	Name:        "stellar_submission",
	MaxAttempts: 3,
	Backoff:     []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second},
}

// RefundSubmission matches the default 3-attempt, [30s, 60s, 120s]
// backoff used for offramp refund payment retries.
var RefundSubmission = Policy{
	Name:        "refund_submission",
	MaxAttempts: 3,
	Backoff:     []time.Duration{30 * time.Second, 60 * time.Second, 120 * time.Second},
}

// TransferPolling matches the 3-attempt, [30s, 2m, 10m] backoff used when
// polling a payment provider for offramp transfer status fails with a
// transient error. Distinct from RefundSubmission's vector even though
// both cap at 3 attempts: this one governs a read-only status poll, which
// can afford a longer tail before giving up than a payment submission
// can.
var TransferPolling = Policy{
	Name:        "transfer_polling",
	MaxAttempts: 3,
	Backoff:     []time.Duration{30 * time.Second, 2 * time.Minute, 10 * time.Minute},
}

// Result is the outcome of one Attempt call, carrying the bookkeeping an
// engine persists back onto the transaction's metadata.
type Result struct {
	Outcome        Outcome
	RetryCount     int
	NextRetryAfter *time.Time
	Err            error
}

// delayFor returns the backoff delay to apply after attemptNumber failed
// attempts (1-indexed), clamping to the last configured delay once
// attemptNumber exceeds the vector's length.
func (p Policy) delayFor(attemptNumber int) time.Duration {
	if len(p.Backoff) == 0 {
		return 0
	}
	idx := attemptNumber - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(p.Backoff) {
		idx = len(p.Backoff) - 1
	}
	return p.Backoff[idx]
}

// Eligible reports whether a transaction with the given next-retry
// timestamp is due for another attempt. A nil timestamp means the
// operation has never been attempted, or its bookkeeping was cleared, and
// is always eligible.
func Eligible(nextRetryAfter *time.Time, now time.Time) bool {
	if nextRetryAfter == nil {
		return true
	}
	return !now.Before(*nextRetryAfter)
}

// Attempt runs op exactly once and classifies the outcome against policy
// and the transaction's current retryCount (the number of prior failed
// attempts). op's error, if non-nil, must be produced by the
// collaborator's classifier (stellarbridge.ClassifySubmitError or a
// provider equivalent) so Attempt can distinguish transient from
// permanent failure by error type.
func Attempt(policy Policy, retryCount int, now time.Time, op func() error) Result {
	err := op()
	if err == nil {
		return Result{Outcome: OutcomeSuccess, RetryCount: 0, NextRetryAfter: nil}
	}

	var permanentErr *coreerrors.ExternalPermanentError
	if errors.As(err, &permanentErr) {
		return Result{Outcome: OutcomePermanent, RetryCount: retryCount + 1, Err: err}
	}

	var transientErr *coreerrors.ExternalTransientError
	if !errors.As(err, &transientErr) {
		// An unclassified error is treated as permanent: the engine
		// has no basis to believe retrying will help, and silently
		// retrying forever on a caller bug is worse than escalating.
		return Result{Outcome: OutcomePermanent, RetryCount: retryCount + 1, Err: err}
	}

	newCount := retryCount + 1
	if newCount >= policy.MaxAttempts {
		return Result{Outcome: OutcomeExhausted, RetryCount: newCount, Err: err}
	}

	nextAt := now.Add(policy.delayFor(newCount))
	return Result{Outcome: OutcomeRetryable, RetryCount: newCount, NextRetryAfter: &nextAt, Err: err}
}
