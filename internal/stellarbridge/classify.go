package stellarbridge

import (
	"net/http"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/support/log"
	"golang.org/x/exp/slices"

	"github.com/bitstarkbridge/aframp-backend/internal/coreerrors"
)

// horizonErrorWrapper pulls the structured problem+result-codes payload out
// of a horizonclient error, the same shape the teacher's transaction
// submission package uses to decide retryability.
type horizonErrorWrapper struct {
	statusCode  int
	err         error
	resultCodes *horizon.TransactionResultCodes
	hasProblem  bool
}

func newHorizonErrorWrapper(err error) *horizonErrorWrapper {
	if err == nil {
		return nil
	}

	hError := horizonclient.GetError(err)
	if hError == nil {
		return &horizonErrorWrapper{err: err}
	}

	resultCodes, resCodeErr := hError.ResultCodes()
	if resCodeErr != nil {
		log.Debugf("parsing horizon result_codes: %v", resCodeErr)
	}

	return &horizonErrorWrapper{
		err:         err,
		statusCode:  hError.Problem.Status,
		resultCodes: resultCodes,
		hasProblem:  true,
	}
}

func (e *horizonErrorWrapper) hasResultCodes() bool {
	return e.hasProblem && e.resultCodes != nil
}

func (e *horizonErrorWrapper) isRateLimit() bool {
	return e.hasProblem && e.statusCode == http.StatusTooManyRequests
}

func (e *horizonErrorWrapper) isGatewayTimeout() bool {
	return e.hasProblem && (e.statusCode == http.StatusGatewayTimeout || e.statusCode == http.StatusServiceUnavailable)
}

func (e *horizonErrorWrapper) transactionCodeIn(codes ...string) bool {
	if !e.hasResultCodes() {
		return false
	}
	return slices.Contains(codes, e.resultCodes.TransactionCode) || slices.Contains(codes, e.resultCodes.InnerTransactionCode)
}

func (e *horizonErrorWrapper) operationCodeIn(codes ...string) bool {
	if !e.hasResultCodes() {
		return false
	}
	for _, opCode := range e.resultCodes.OperationCodes {
		if slices.Contains(codes, opCode) {
			return true
		}
	}
	return false
}

// ClassifySubmitError turns a raw error returned from SubmitTransaction
// into either an ExternalTransientError (worth retrying, per the retry
// harness's schedule) or an ExternalPermanentError (escalate straight to
// refund). Network-level failures, rate limiting, and sequence/timing
// result codes are transient; every account- or authorization-shaped
// result code is permanent because retrying the same signed envelope
// cannot change the account's state.
func ClassifySubmitError(err error) error {
	if err == nil {
		return nil
	}

	w := newHorizonErrorWrapper(err)
	if !w.hasProblem {
		return coreerrors.NewExternalTransientError("horizon", err)
	}

	if w.isRateLimit() || w.isGatewayTimeout() {
		return coreerrors.NewExternalTransientError("horizon", err)
	}

	if w.transactionCodeIn("tx_bad_seq", "tx_internal_error", "tx_too_late", "tx_insufficient_fee") {
		return coreerrors.NewExternalTransientError("horizon", err)
	}

	switch {
	case w.transactionCodeIn("tx_insufficient_balance") || w.operationCodeIn("op_underfunded"):
		return coreerrors.NewExternalPermanentError("horizon", "tx_insufficient_balance", err)
	case w.transactionCodeIn("tx_no_source_account") || w.operationCodeIn("op_no_source_account"):
		return coreerrors.NewExternalPermanentError("horizon", "tx_no_source_account", err)
	case w.transactionCodeIn("tx_bad_auth", "tx_bad_auth_extra") || w.operationCodeIn("op_bad_auth"):
		return coreerrors.NewExternalPermanentError("horizon", "tx_bad_auth", err)
	case w.operationCodeIn("op_no_issuer"):
		return coreerrors.NewExternalPermanentError("horizon", "op_no_issuer", err)
	case w.operationCodeIn("op_src_not_authorized"):
		return coreerrors.NewExternalPermanentError("horizon", "op_src_not_authorized", err)
	case w.operationCodeIn("op_src_no_trust"):
		return coreerrors.NewExternalPermanentError("horizon", "op_src_no_trust", err)
	case w.operationCodeIn("op_no_trust"):
		return coreerrors.NewExternalPermanentError("horizon", "op_no_trust", err)
	case w.operationCodeIn("op_not_authorized"):
		return coreerrors.NewExternalPermanentError("horizon", "op_not_authorized", err)
	case w.operationCodeIn("op_no_destination"):
		return coreerrors.NewExternalPermanentError("horizon", "op_no_destination", err)
	case w.operationCodeIn("op_line_full"):
		return coreerrors.NewExternalPermanentError("horizon", "op_line_full", err)
	}

	// An unrecognized result code from an otherwise well-formed problem
	// response is treated as transient: Horizon returned a structured
	// answer, just not one this classifier has a rule for yet, and the
	// safer default is to let the retry harness exhaust its budget
	// rather than jump straight to refund.
	return coreerrors.NewExternalTransientError("horizon", err)
}
