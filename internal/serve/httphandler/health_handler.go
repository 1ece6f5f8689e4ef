package httphandler

import (
	"net/http"

	"github.com/stellar/go/support/render/httpjson"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	ServiceID string `json:"service_id,omitempty"`
}

type HealthHandler struct {
	Version   string
	ServiceID string
}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpjson.RenderStatus(w, http.StatusOK, HealthResponse{
		Status:    "pass",
		Version:   h.Version,
		ServiceID: h.ServiceID,
	}, httpjson.JSON)
}
