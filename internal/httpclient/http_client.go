// Package httpclient provides the HTTP client interface shared by every
// outbound payment-provider client, so each one can be exercised against a
// mock in tests without standing up a server.
package httpclient

import (
	"net/http"
	"time"
)

type HTTPClientInterface interface {
	Do(*http.Request) (*http.Response, error)
}

const TimeoutSeconds = 30

// DefaultClient returns the HTTP client every provider client uses unless a
// test substitutes a mock. 30s matches spec.md §5's default per-call HTTP
// timeout.
func DefaultClient() HTTPClientInterface {
	return &http.Client{Timeout: TimeoutSeconds * time.Second}
}

var _ HTTPClientInterface = DefaultClient()
