// Package offramp drives cNGN-in to NGN-out transactions from the moment
// cNGN lands on the system wallet through confirmed bank deposit, per
// spec.md §4.3. It is the second of the two disjoint state machines
// built on internal/statemachine.
package offramp

import (
	"github.com/bitstarkbridge/aframp-backend/internal/statemachine"
	"github.com/bitstarkbridge/aframp-backend/internal/store"
)

func state(s store.Status) statemachine.State { return statemachine.State(s) }

// Transitions is the offramp allowed-transition table, spec.md §4.1's
// offramp table verbatim, expressed over the store.Status values the
// repository already persists.
var Transitions = []statemachine.StateTransition{
	{From: state(store.StatusPendingPayment), To: state(store.StatusCngnReceived)},
	{From: state(store.StatusCngnReceived), To: state(store.StatusVerifyingAmount)},
	{From: state(store.StatusVerifyingAmount), To: state(store.StatusProcessingWithdrawal)},
	{From: state(store.StatusProcessingWithdrawal), To: state(store.StatusTransferPending)},
	{From: state(store.StatusTransferPending), To: state(store.StatusCompleted)},
	{From: state(store.StatusPendingPayment), To: state(store.StatusExpired)},

	{From: state(store.StatusPendingPayment), To: state(store.StatusRefundInitiated)},
	{From: state(store.StatusCngnReceived), To: state(store.StatusRefundInitiated)},
	{From: state(store.StatusVerifyingAmount), To: state(store.StatusRefundInitiated)},
	{From: state(store.StatusProcessingWithdrawal), To: state(store.StatusRefundInitiated)},
	{From: state(store.StatusTransferPending), To: state(store.StatusRefundInitiated)},
	{From: state(store.StatusRefundInitiated), To: state(store.StatusRefunding)},
	{From: state(store.StatusRefunding), To: state(store.StatusRefunded)},
	{From: state(store.StatusRefunding), To: state(store.StatusFailed)},
}

// NewStateMachine returns a statemachine.StateMachine seeded at initial,
// restricted to the offramp transition table.
func NewStateMachine(initial store.Status) *statemachine.StateMachine {
	return statemachine.NewStateMachine(state(initial), Transitions)
}

// CanTransition reports whether from -> to is a legal offramp move per
// spec.md §4.1.
func CanTransition(from, to store.Status) bool {
	return NewStateMachine(from).CanTransitionTo(state(to))
}

// Failure reasons stored in error_message, spec.md §4.3/§4.7 verbatim.
const (
	ReasonReceiptAmountMismatch = "RECEIPT_AMOUNT_MISMATCH"
	ReasonWithdrawalRejected    = "WITHDRAWAL_PROVIDER_REJECTED"
	ReasonTransferFailed        = "TRANSFER_FAILED"
	ReasonTransferTimeout       = "TRANSFER_TIMEOUT"
	ReasonRefundFailed          = "REFUND_FAILED"
)
