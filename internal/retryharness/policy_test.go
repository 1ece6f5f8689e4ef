package retryharness

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitstarkbridge/aframp-backend/internal/coreerrors"
)

func TestAttempt_success(t *testing.T) {
	result := Attempt(StellarSubmission, 1, time.Now(), func() error { return nil })

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 0, result.RetryCount)
	assert.Nil(t, result.NextRetryAfter)
}

func TestAttempt_transientRetryableSchedulesNextAttempt(t *testing.T) {
	now := time.Now()
	transientErr := coreerrors.NewExternalTransientError("horizon", errors.New("timeout"))

	result := Attempt(StellarSubmission, 0, now, func() error { return transientErr })

	assert.Equal(t, OutcomeRetryable, result.Outcome)
	assert.Equal(t, 1, result.RetryCount)
	if assert.NotNil(t, result.NextRetryAfter) {
		assert.Equal(t, now.Add(2*time.Second), *result.NextRetryAfter)
	}
}

func TestAttempt_transientExhaustsAtMaxAttempts(t *testing.T) {
	now := time.Now()
	transientErr := coreerrors.NewExternalTransientError("horizon", errors.New("timeout"))

	result := Attempt(StellarSubmission, StellarSubmission.MaxAttempts-1, now, func() error { return transientErr })

	assert.Equal(t, OutcomeExhausted, result.Outcome)
	assert.Equal(t, StellarSubmission.MaxAttempts, result.RetryCount)
	assert.Nil(t, result.NextRetryAfter)
}

func TestAttempt_permanentEscalatesImmediatelyRegardlessOfAttemptsRemaining(t *testing.T) {
	now := time.Now()
	permanentErr := coreerrors.NewExternalPermanentError("horizon", "tx_insufficient_balance", errors.New("underfunded"))

	result := Attempt(StellarSubmission, 0, now, func() error { return permanentErr })

	assert.Equal(t, OutcomePermanent, result.Outcome)
	assert.Equal(t, 1, result.RetryCount)
}

func TestAttempt_unclassifiedErrorTreatedAsPermanent(t *testing.T) {
	result := Attempt(StellarSubmission, 0, time.Now(), func() error { return errors.New("unexpected") })

	assert.Equal(t, OutcomePermanent, result.Outcome)
}

func TestEligible(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, Eligible(nil, now))
	assert.True(t, Eligible(&past, now))
	assert.False(t, Eligible(&future, now))
}

func TestPolicy_delayForClampsToLastEntry(t *testing.T) {
	assert.Equal(t, 2*time.Second, StellarSubmission.delayFor(1))
	assert.Equal(t, 4*time.Second, StellarSubmission.delayFor(2))
	assert.Equal(t, 8*time.Second, StellarSubmission.delayFor(3))
	assert.Equal(t, 8*time.Second, StellarSubmission.delayFor(99))
}
