package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoSnapshot),
		errors.Is(err, domain.ErrPreviewUnavailable),
		errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrIndexConsistency):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
