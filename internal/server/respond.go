package server

import (
	"encoding/json"
	"net/http"

	"github.com/chinspect/chinspect/internal/errs"
)

// apiError is the JSON error envelope.
type apiError struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	kind := errs.KindOf(err)
	writeJSON(w, statusFor(kind), apiError{Error: err.Error(), Kind: kind.String()})
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(kind errs.ErrKind) int {
	switch kind {
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindInvalidInput:
		return http.StatusBadRequest
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrKindConnectionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
