// Package middleware provides the HTTP middleware chain: request identity,
// request-scoped time, panic recovery, access logging, latency metrics and
// JWT authentication.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"jassari/pkg/requestcontext"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns every request an identifier, honoring one supplied by the
// caller, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request identifier from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
