// Package provider defines the payment-provider contract the offramp
// engine drives withdrawals and status polls through, plus the
// deterministic rule used to pick a provider for a given attempt.
package provider

import "context"

// PaymentStatus mirrors the four-way result spec.md §6 requires every
// provider's get_payment_status to report.
type PaymentStatus string

const (
	PaymentStatusSuccess    PaymentStatus = "success"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
)

// StatusResult is the outcome of a get_payment_status call.
type StatusResult struct {
	Status        PaymentStatus
	FailureReason string
}

// WithdrawalRequest carries the fiat payout instructions for one offramp
// transaction's withdrawal stage.
type WithdrawalRequest struct {
	TransactionID     string
	Amount            string
	Currency          string
	BankAccountName   string
	BankAccountNumber string
	BankCode          string
}

// WithdrawalResponse is returned on a successful process_withdrawal call.
type WithdrawalResponse struct {
	ProviderReference string
	RawData           []byte
}

// RefundResponse is returned on a successful RefundPayment call.
type RefundResponse struct {
	ProviderReference string
	RawData           []byte
}

// Name identifies one of the three providers spec.md §9 names by
// attempt-number rotation.
type Name string

const (
	Flutterwave Name = "flutterwave"
	Paystack    Name = "paystack"
	Mpesa       Name = "mpesa"
)

// PaymentProvider is the capability set spec.md §6 requires of every
// provider: status polling, withdrawal initiation, and the refund call
// added by spec.md §4.7's resolution of Open Question 3.
type PaymentProvider interface {
	Name() Name
	GetPaymentStatus(ctx context.Context, reference string) (StatusResult, error)
	ProcessWithdrawal(ctx context.Context, req WithdrawalRequest) (WithdrawalResponse, error)
	RefundPayment(ctx context.Context, reference, amount string) (RefundResponse, error)
}
