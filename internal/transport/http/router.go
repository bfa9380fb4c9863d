// Package httptransport assembles the top-level HTTP router: feature handlers
// register themselves, plus the operational endpoints.
package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jassari/internal/transport/http/shared"
)

// Registrar is implemented by feature handlers that mount their own routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// NewRouter wires the feature handlers and the operational endpoints.
func NewRouter(checks map[string]HealthCheck, registrars ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", handleHealth(checks))
	r.Handle("/metrics", promhttp.Handler())

	for _, reg := range registrars {
		reg.Register(r)
	}
	return r
}

func handleHealth(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := make(map[string]string, len(checks)+1)
		result["status"] = "ok"
		for name, check := range checks {
			if err := check(ctx); err != nil {
				result[name] = err.Error()
				result["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			result[name] = "ok"
		}
		shared.WriteJSON(w, status, result)
	}
}
