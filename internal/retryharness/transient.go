package retryharness

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
)

// RetryableError marks a single-call failure (a network blip, a rate
// limit response) worth retrying immediately within the same call,
// before it ever reaches the persisted cross-cycle bookkeeping in
// Attempt. Grounded on the Circle client's identically-named type.
type RetryableError struct {
	Err        error
	RetryAfter time.Duration
}

func (re RetryableError) Error() string {
	return "retryable error: " + re.Err.Error()
}

func (re RetryableError) Unwrap() error {
	return re.Err
}

// WithTransientRetry retries fn up to attempts times for errors
// classified as RetryableError, honoring RetryAfter when present and
// falling back to exponential backoff otherwise. Used by the payment
// provider HTTP clients to absorb isolated connection failures and
// rate-limit responses without burning one of the transaction's
// persisted retry attempts.
func WithTransientRetry(ctx context.Context, attempts uint, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			var retryableErr RetryableError
			if errors.As(err, &retryableErr) && retryableErr.RetryAfter > 0 {
				return retryableErr.RetryAfter
			}
			return retry.BackOffDelay(n, err, config)
		}),
		retry.RetryIf(func(err error) bool {
			var retryableErr RetryableError
			return errors.As(err, &retryableErr)
		}),
		retry.LastErrorOnly(true),
	)
}
