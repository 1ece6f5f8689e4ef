package coreerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_UnwrapAndMessage(t *testing.T) {
	inner := errors.New("boom")

	testCases := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "ValidationError",
			err:     NewValidationError("amount", inner),
			wantMsg: `validation failed for "amount": boom`,
		},
		{
			name:    "DomainError",
			err:     NewDomainError("insufficient liquidity", inner),
			wantMsg: "insufficient liquidity: boom",
		},
		{
			name:    "ExternalTransientError",
			err:     NewExternalTransientError("flutterwave", inner),
			wantMsg: "transient error from flutterwave: boom",
		},
		{
			name:    "ExternalPermanentError",
			err:     NewExternalPermanentError("horizon", "tx_insufficient_balance", inner),
			wantMsg: "permanent error from horizon (tx_insufficient_balance): boom",
		},
		{
			name:    "InfrastructureError",
			err:     NewInfrastructureError("postgres", inner),
			wantMsg: "infrastructure error in postgres: boom",
		},
		{
			name:    "InvariantViolationError",
			err:     NewInvariantViolationError("onramp transition", inner),
			wantMsg: "invariant violated (onramp transition): boom",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantMsg, tc.err.Error())
			assert.True(t, errors.Is(tc.err, inner))
		})
	}
}
