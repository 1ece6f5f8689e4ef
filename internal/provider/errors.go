package provider

import "fmt"

// ErrorKind classifies a process_withdrawal failure per spec.md §6's
// `Network | Timeout | Provider | InvalidRequest` taxonomy, distinct from
// the broader internal/coreerrors taxonomy used elsewhere: this one exists
// purely to let a caller decide whether a withdrawal failure is safe to
// retry (Network, Timeout) or must go straight to refund (Provider,
// InvalidRequest).
type ErrorKind string

const (
	ErrorKindNetwork        ErrorKind = "network"
	ErrorKindTimeout        ErrorKind = "timeout"
	ErrorKindProvider       ErrorKind = "provider"
	ErrorKindInvalidRequest ErrorKind = "invalid_request"
)

// WithdrawalError wraps a process_withdrawal failure with its classified
// kind and the provider that produced it.
type WithdrawalError struct {
	Provider Name
	Kind     ErrorKind
	Err      error
}

func (e *WithdrawalError) Error() string {
	return fmt.Sprintf("%s withdrawal %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *WithdrawalError) Unwrap() error {
	return e.Err
}

func NewWithdrawalError(provider Name, kind ErrorKind, err error) *WithdrawalError {
	return &WithdrawalError{Provider: provider, Kind: kind, Err: err}
}

// Retryable reports whether this failure belongs to a class the offramp
// engine's retry harness should attempt again rather than escalate
// straight to refund.
func (e *WithdrawalError) Retryable() bool {
	return e.Kind == ErrorKindNetwork || e.Kind == ErrorKindTimeout
}
