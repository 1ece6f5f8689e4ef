// Package onramp drives NGN-in to cNGN-out transactions from the moment
// a fiat payment is confirmed through Stellar delivery, per spec.md
// §4.2. It is one of the two disjoint state machines built on
// internal/statemachine.
package onramp

import (
	"github.com/bitstarkbridge/aframp-backend/internal/statemachine"
	"github.com/bitstarkbridge/aframp-backend/internal/store"
)

func state(s store.Status) statemachine.State { return statemachine.State(s) }

// Transitions is the onramp allowed-transition table, spec.md §4.1's
// onramp table verbatim, expressed over the store.Status values the
// repository already persists.
var Transitions = []statemachine.StateTransition{
	{From: state(store.StatusPending), To: state(store.StatusProcessing)},
	{From: state(store.StatusPending), To: state(store.StatusFailed)},
	{From: state(store.StatusPending), To: state(store.StatusRefunded)},
	{From: state(store.StatusProcessing), To: state(store.StatusCompleted)},
	{From: state(store.StatusProcessing), To: state(store.StatusFailed)},
	{From: state(store.StatusProcessing), To: state(store.StatusRefunded)},
}

// NewStateMachine returns a statemachine.StateMachine seeded at initial,
// restricted to the onramp transition table.
func NewStateMachine(initial store.Status) *statemachine.StateMachine {
	return statemachine.NewStateMachine(state(initial), Transitions)
}

// CanTransition reports whether from -> to is a legal onramp move per
// spec.md §4.1, independent of any one transaction's live state.
func CanTransition(from, to store.Status) bool {
	return NewStateMachine(from).CanTransitionTo(state(to))
}

// Failure reasons stored in error_message on terminal failure, spec.md
// §4.2/§4.5 verbatim.
const (
	ReasonPaymentTimeout    = "PAYMENT_TIMEOUT"
	ReasonTrustlineNotFound = "TRUSTLINE_NOT_FOUND"
	ReasonInsufficientCNGN  = "INSUFFICIENT_CNGN_BALANCE"
	ReasonStellarPermanent  = "STELLAR_PERMANENT_ERROR"
	ReasonAmountMismatch    = "PAYMENT_AMOUNT_MISMATCH"
)
