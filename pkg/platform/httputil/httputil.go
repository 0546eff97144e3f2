// Package httputil maps domain errors onto HTTP responses so handlers never
// hand-roll status codes.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "bitid/pkg/domain-errors"
)

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeBadRequest:   http.StatusBadRequest,
	dErrors.CodeInvalidInput: http.StatusBadRequest,
	dErrors.CodeUnauthorized: http.StatusUnauthorized,
	dErrors.CodeForbidden:    http.StatusForbidden,
	dErrors.CodeNotFound:     http.StatusNotFound,
	dErrors.CodeConflict:     http.StatusConflict,
	dErrors.CodeUnavailable:  http.StatusServiceUnavailable,
	dErrors.CodeInternal:     http.StatusInternalServerError,
}

// WriteError renders err as a JSON error response. Internal errors omit the
// description so store details never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := errorBody{Error: string(code)}
	if code != dErrors.CodeInternal {
		body.Description = dErrors.MessageOf(err)
	}

	WriteJSON(w, status, body)
}

// WriteJSON renders v with the given status. Encoding failures are ignored;
// by that point the status line is already on the wire.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
