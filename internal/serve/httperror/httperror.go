// Package httperror is the uniform JSON error-response shape used by
// every internal/serve handler, adapted from the teacher's
// internal/serve/httperror package.
package httperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stellar/go/support/log"
	"github.com/stellar/go/support/render/httpjson"
)

type HTTPError struct {
	StatusCode int            `json:"-"`
	Message    string         `json:"error"`
	Extras     map[string]any `json:"extras,omitempty"`
	Err        error          `json:"-"`
}

type ReportErrorFunc func(ctx context.Context, err error, msg string)

var defaultReportErrorFunc ReportErrorFunc = func(ctx context.Context, err error, msg string) {
	if msg != "" {
		err = fmt.Errorf("%s: %w", msg, err)
	}
	log.Ctx(ctx).WithStack(err).Errorf("%+v", err)
}

// SetDefaultReportErrorFunc lets the crash tracker observe every 500
// rendered by this package, the same hook the teacher wires in
// ServeOptions.SetupDependencies.
func SetDefaultReportErrorFunc(fn ReportErrorFunc) {
	defaultReportErrorFunc = fn
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) Render(w http.ResponseWriter) {
	httpjson.RenderStatus(w, e.StatusCode, e, httpjson.JSON)
}

func NewHTTPError(statusCode int, msg string, originalErr error, extras map[string]any) *HTTPError {
	if msg == "" && originalErr != nil && len(extras) == 0 {
		var hErr *HTTPError
		if errors.As(originalErr, &hErr) && hErr.StatusCode == statusCode {
			return hErr
		}
	}
	return &HTTPError{StatusCode: statusCode, Message: msg, Extras: extras, Err: originalErr}
}

func NotFound(msg string, originalErr error, extras map[string]any) *HTTPError {
	if msg == "" {
		msg = "Resource not found."
	}
	return NewHTTPError(http.StatusNotFound, msg, originalErr, extras)
}

func Conflict(msg string, originalErr error, extras map[string]any) *HTTPError {
	if msg == "" {
		msg = "The resource already exists."
	}
	return NewHTTPError(http.StatusConflict, msg, originalErr, extras)
}

func BadRequest(msg string, originalErr error, extras map[string]any) *HTTPError {
	if msg == "" {
		msg = "The request was invalid in some way."
	}
	return NewHTTPError(http.StatusBadRequest, msg, originalErr, extras)
}

func Unauthorized(msg string, originalErr error, extras map[string]any) *HTTPError {
	if msg == "" {
		msg = "Not authorized."
	}
	return NewHTTPError(http.StatusUnauthorized, msg, originalErr, extras)
}

func UnprocessableEntity(msg string, originalErr error, extras map[string]any) *HTTPError {
	if msg == "" {
		msg = "Unprocessable entity."
	}
	return NewHTTPError(http.StatusUnprocessableEntity, msg, originalErr, extras)
}

func InternalError(ctx context.Context, msg string, originalErr error, extras map[string]any) *HTTPError {
	if msg == "" {
		msg = "An internal error occurred while processing this request."
	}
	defaultReportErrorFunc(ctx, originalErr, msg)
	return NewHTTPError(http.StatusInternalServerError, msg, originalErr, extras)
}
