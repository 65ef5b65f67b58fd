package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	perrors "github.com/mmichie/pipes/pkg/errors"
)

// errorResponse is the JSON body of every non-2xx reply
type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg, Code: status})
}

// statusFor maps pipeline errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, perrors.ErrUnknownPipeline):
		return http.StatusNotFound
	case errors.Is(err, perrors.ErrNotStarted):
		return http.StatusServiceUnavailable
	case errors.Is(err, perrors.ErrBackend):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
