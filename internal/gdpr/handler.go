// Package gdpr exposes the data export and erasure endpoints required for
// GDPR compliance. The endpoints are scope guarded and can be disabled
// entirely, in which case they answer 404.
package gdpr

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"jassari/internal/membership"
	"jassari/internal/platform/middleware"
	"jassari/internal/transport/http/shared"
	dErrors "jassari/pkg/domain-errors"
	"jassari/pkg/requestcontext"
)

// Service defines the GDPR operations the HTTP layer needs.
type Service interface {
	ExportData(ctx context.Context, id uuid.UUID) (membership.Profile, error)
	DeleteData(ctx context.Context, id uuid.UUID, dryRun bool) error
}

// Config controls the GDPR API surface.
type Config struct {
	Enabled     bool
	QueryScope  string
	DeleteScope string
}

// Handler handles the GDPR endpoints.
type Handler struct {
	logger       *slog.Logger
	svc          Service
	cfg          Config
	jwtValidator middleware.JWTValidator
}

// New creates a new GDPR Handler.
func New(svc Service, cfg Config, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		svc:          svc,
		cfg:          cfg,
		jwtValidator: jwtValidator,
	}
}

// Register registers the GDPR routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	if !h.cfg.Enabled {
		return
	}

	gr := chi.NewRouter()
	gr.Use(middleware.Recovery(h.logger))
	gr.Use(middleware.RequestID)
	gr.Use(middleware.RequestTime)
	gr.Use(middleware.Logger(h.logger))
	gr.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	gr.Get("/profiles/{id}", h.handleQuery)
	gr.Delete("/profiles/{id}", h.handleDelete)

	r.Mount("/gdpr/v1", gr)
}

func (h *Handler) requireScope(ctx context.Context, scope string) error {
	if slices.Contains(requestcontext.Scopes(ctx), scope) {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "missing required scope")
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.requireScope(ctx, h.cfg.QueryScope); err != nil {
		h.logger.WarnContext(ctx, "gdpr query refused",
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid profile id"))
		return
	}

	p, err := h.svc.ExportData(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "gdpr query failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toExport(p))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.requireScope(ctx, h.cfg.DeleteScope); err != nil {
		h.logger.WarnContext(ctx, "gdpr delete refused",
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid profile id"))
		return
	}
	dryRun := r.URL.Query().Get("dry_run") == "true"

	if err := h.svc.DeleteData(ctx, id, dryRun); err != nil {
		h.logger.WarnContext(ctx, "gdpr delete failed",
			"error", err.Error(),
			"dry_run", dryRun,
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
