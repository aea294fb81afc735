package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/rodruizronald/tw-search/internal/apperr"
	"github.com/rodruizronald/tw-search/internal/telemetry"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonOK(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = telemetry.RequestIDFrom(r.Context())
	writeJSON(w, status, e)
}

// writeDomainError renders err with the status of its type. Internal errors
// are reported with a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	t := apperr.TypeOf(err)
	writeError(w, r, statusFor(t), string(t), apperr.PublicMessage(err))
}

func statusFor(t apperr.ErrorType) int {
	switch t {
	case apperr.ErrTypeInvalidInput:
		return http.StatusBadRequest
	case apperr.ErrTypeNotFound:
		return http.StatusNotFound
	case apperr.ErrTypeRateLimit:
		return http.StatusTooManyRequests
	case apperr.ErrTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
