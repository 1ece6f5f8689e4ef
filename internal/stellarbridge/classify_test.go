package stellarbridge

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/support/render/problem"
	"github.com/stretchr/testify/assert"

	"github.com/bitstarkbridge/aframp-backend/internal/coreerrors"
)

func horizonErrorWithCodes(statusCode int, resultCodes map[string]interface{}) error {
	return horizonclient.Error{
		Problem: problem.P{
			Status: statusCode,
			Extras: map[string]interface{}{
				"result_codes": resultCodes,
			},
		},
	}
}

func TestClassifySubmitError_transient(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{
			name: "rate limited",
			err:  horizonclient.Error{Problem: problem.P{Status: http.StatusTooManyRequests}},
		},
		{
			name: "gateway timeout",
			err:  horizonclient.Error{Problem: problem.P{Status: http.StatusGatewayTimeout}},
		},
		{
			name: "bad sequence number",
			err:  horizonErrorWithCodes(http.StatusBadRequest, map[string]interface{}{"transaction": "tx_bad_seq"}),
		},
		{
			name: "internal error",
			err:  horizonErrorWithCodes(http.StatusBadRequest, map[string]interface{}{"transaction": "tx_internal_error"}),
		},
		{
			name: "unrecognized network error, no problem payload",
			err:  errors.New("connection reset by peer"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			classified := ClassifySubmitError(tc.err)
			var transientErr *coreerrors.ExternalTransientError
			assert.ErrorAs(t, classified, &transientErr)
		})
	}
}

func TestClassifySubmitError_permanent(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{
			name: "insufficient balance",
			err:  horizonErrorWithCodes(http.StatusBadRequest, map[string]interface{}{"transaction": "tx_insufficient_balance"}),
		},
		{
			name: "underfunded operation",
			err:  horizonErrorWithCodes(http.StatusBadRequest, map[string]interface{}{"transaction": "tx_failed", "operations": []interface{}{"op_underfunded"}}),
		},
		{
			name: "no source account",
			err:  horizonErrorWithCodes(http.StatusBadRequest, map[string]interface{}{"transaction": "tx_no_source_account"}),
		},
		{
			name: "bad auth",
			err:  horizonErrorWithCodes(http.StatusBadRequest, map[string]interface{}{"transaction": "tx_bad_auth"}),
		},
		{
			name: "source not authorized",
			err:  horizonErrorWithCodes(http.StatusBadRequest, map[string]interface{}{"transaction": "tx_failed", "operations": []interface{}{"op_src_not_authorized"}}),
		},
		{
			name: "destination not authorized",
			err:  horizonErrorWithCodes(http.StatusBadRequest, map[string]interface{}{"transaction": "tx_failed", "operations": []interface{}{"op_not_authorized"}}),
		},
		{
			name: "no trustline on destination",
			err:  horizonErrorWithCodes(http.StatusBadRequest, map[string]interface{}{"transaction": "tx_failed", "operations": []interface{}{"op_no_trust"}}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			classified := ClassifySubmitError(tc.err)
			var permanentErr *coreerrors.ExternalPermanentError
			assert.ErrorAs(t, classified, &permanentErr)
		})
	}
}

func TestClassifySubmitError_nilIsNil(t *testing.T) {
	assert.NoError(t, ClassifySubmitError(nil))
}
