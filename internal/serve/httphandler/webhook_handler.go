package httphandler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bitstarkbridge/aframp-backend/internal/serve/httperror"
	"github.com/bitstarkbridge/aframp-backend/internal/webhook"
)

// WebhookSignatureHeader is the inbound header every provider's webhook
// carries its HMAC-SHA256 signature in. The three real providers each
// use a differently-named header (verif-hash, x-paystack-signature,
// ...); this system normalizes them to one at the reverse proxy so
// webhook.Ingester only ever has to check one.
const WebhookSignatureHeader = "X-Webhook-Signature"

// WebhookHandler is the thin HTTP adapter over webhook.Ingester: read
// the body, read the signature header, and delegate.
type WebhookHandler struct {
	Ingester *webhook.Ingester
}

func (h WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		httperror.BadRequest("", err, nil).Render(w)
		return
	}

	signature := r.Header.Get(WebhookSignatureHeader)

	err = h.Ingester.Ingest(r.Context(), provider, signature, payload)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, webhook.ErrUnknownProvider):
		httperror.NotFound("unknown webhook provider", err, nil).Render(w)
	case errors.Is(err, webhook.ErrInvalidSignature):
		httperror.Unauthorized("invalid webhook signature", err, nil).Render(w)
	default:
		httperror.InternalError(r.Context(), "processing webhook", err, nil).Render(w)
	}
}
