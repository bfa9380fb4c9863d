package middleware

import (
	"net/http"
	"time"

	"jassari/pkg/requestcontext"
)

// RequestTime captures the current time at the start of the request so all
// operations within a single request share the same "now". Audit timestamps,
// expiration checks and approval stamps stay consistent per request.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
