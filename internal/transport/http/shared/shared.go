// Package shared holds the JSON response helpers common to all handlers.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "jassari/pkg/domain-errors"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded domain error into a JSON error envelope.
// Errors without a code read as internal.
func WriteError(w http.ResponseWriter, err error) {
	status := dErrors.ToHTTPStatus(err)
	body := errorBody{Error: string(dErrors.CodeOf(err))}

	var coded *dErrors.Error
	if errors.As(err, &coded) {
		body.Message = coded.Message
	}
	WriteJSON(w, status, body)
}
