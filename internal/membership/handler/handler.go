// Package handler exposes the youth membership REST endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"jassari/internal/membership"
	"jassari/internal/platform/metrics"
	"jassari/internal/platform/middleware"
	"jassari/internal/profileapi"
	"jassari/internal/transport/http/shared"
	dErrors "jassari/pkg/domain-errors"
	"jassari/pkg/requestcontext"
)

// Service defines the membership operations the HTTP layer needs.
type Service interface {
	CreateOwnProfile(ctx context.Context, apiToken string, input membership.CreateProfileInput) (membership.Profile, error)
	CreateProfile(ctx context.Context, apiToken string, profileID uuid.UUID, input membership.CreateProfileInput) (membership.Profile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (membership.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update membership.ProfileUpdate, staff bool) (membership.Profile, error)
	Renew(ctx context.Context, id uuid.UUID) (membership.Profile, error)
	Cancel(ctx context.Context, id uuid.UUID, expiration *time.Time) (membership.Profile, error)
	ApproveByToken(ctx context.Context, token string, update membership.ProfileUpdate) (membership.Profile, error)
	ApprovalPreview(ctx context.Context, token string) (membership.Profile, profileapi.Identity, error)
	Season() membership.Season
}

// Handler handles the membership endpoints.
type Handler struct {
	logger       *slog.Logger
	svc          Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new membership Handler.
func New(svc Service, logger *slog.Logger, metrics *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		svc:          svc,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the membership routes with the chi router. Approval
// endpoints are anonymous: the token is the credential.
func (h *Handler) Register(r chi.Router) {
	pr := chi.NewRouter()
	pr.Use(middleware.Recovery(h.logger))
	pr.Use(middleware.RequestID)
	pr.Use(middleware.RequestTime)
	pr.Use(middleware.Logger(h.logger))
	pr.Use(middleware.Latency(h.metrics))

	pr.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		r.Post("/profiles/me", h.handleCreateOwnProfile)
		r.Get("/profiles/me", h.handleGetOwnProfile)
		r.Patch("/profiles/me", h.handleUpdateOwnProfile)
		r.Post("/profiles/me/renew", h.handleRenewOwnProfile)
		r.Post("/profiles/me/cancel", h.handleCancelOwnProfile)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff(h.logger))

			r.Post("/profiles", h.handleCreateProfile)
			r.Get("/profiles/{id}", h.handleGetProfile)
			r.Patch("/profiles/{id}", h.handleUpdateProfile)
			r.Post("/profiles/{id}/renew", h.handleRenewProfile)
			r.Post("/profiles/{id}/cancel", h.handleCancelProfile)
		})
	})

	pr.Get("/profiles/approval/{token}", h.handleApprovalPreview)
	pr.Post("/profiles/approve/{token}", h.handleApprove)

	r.Mount("/v1", pr)
}

// callerProfileID resolves the authenticated caller's profile ID.
func callerProfileID(ctx context.Context) (uuid.UUID, error) {
	raw := requestcontext.ProfileID(ctx)
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	return id, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid profile id")
	}
	return id, nil
}

func (h *Handler) writeProfile(w http.ResponseWriter, r *http.Request, status int, p membership.Profile) {
	today := requestcontext.Now(r.Context())
	shared.WriteJSON(w, status, toProfileResponse(p, h.svc.Season(), today))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	ctx := r.Context()
	if dErrors.Is(err, dErrors.CodeInternal) || dErrors.Is(err, dErrors.CodeUnavailable) {
		h.logger.ErrorContext(ctx, msg,
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
	}
	shared.WriteError(w, err)
}

func (h *Handler) handleCreateOwnProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	input, err := req.toInput()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	p, err := h.svc.CreateOwnProfile(r.Context(), middleware.BearerToken(r), input)
	if err != nil {
		h.fail(w, r, err, "failed to create youth profile")
		return
	}
	h.metrics.ProfilesCreated.Inc()
	h.writeProfile(w, r, http.StatusCreated, p)
}

func (h *Handler) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		createProfileRequest
		ProfileID string `json:"profile_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	profileID, err := uuid.Parse(req.ProfileID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid profile id"))
		return
	}
	input, err := req.toInput()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	p, err := h.svc.CreateProfile(r.Context(), middleware.BearerToken(r), profileID, input)
	if err != nil {
		h.fail(w, r, err, "failed to create youth profile")
		return
	}
	h.metrics.ProfilesCreated.Inc()
	h.writeProfile(w, r, http.StatusCreated, p)
}

func (h *Handler) handleGetOwnProfile(w http.ResponseWriter, r *http.Request) {
	id, err := callerProfileID(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.getProfile(w, r, id)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.getProfile(w, r, id)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	p, err := h.svc.GetProfile(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "failed to load youth profile")
		return
	}
	h.writeProfile(w, r, http.StatusOK, p)
}

func (h *Handler) handleUpdateOwnProfile(w http.ResponseWriter, r *http.Request) {
	id, err := callerProfileID(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.updateProfile(w, r, id, false)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.updateProfile(w, r, id, true)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request, id uuid.UUID, staff bool) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	update, err := req.toUpdate()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	p, err := h.svc.UpdateProfile(r.Context(), id, update, staff)
	if err != nil {
		h.fail(w, r, err, "failed to update youth profile")
		return
	}
	h.writeProfile(w, r, http.StatusOK, p)
}

func (h *Handler) handleRenewOwnProfile(w http.ResponseWriter, r *http.Request) {
	id, err := callerProfileID(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.renewProfile(w, r, id)
}

func (h *Handler) handleRenewProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.renewProfile(w, r, id)
}

func (h *Handler) renewProfile(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	p, err := h.svc.Renew(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "failed to renew youth profile")
		return
	}
	h.metrics.ProfilesRenewed.Inc()
	h.writeProfile(w, r, http.StatusOK, p)
}

func (h *Handler) handleCancelOwnProfile(w http.ResponseWriter, r *http.Request) {
	id, err := callerProfileID(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.cancelProfile(w, r, id)
}

func (h *Handler) handleCancelProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.cancelProfile(w, r, id)
}

func (h *Handler) cancelProfile(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req cancelProfileRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	var expiration *time.Time
	if req.Expiration != nil {
		t, err := parseDate(*req.Expiration)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		expiration = &t
	}

	p, err := h.svc.Cancel(r.Context(), id, expiration)
	if err != nil {
		h.fail(w, r, err, "failed to cancel youth membership")
		return
	}
	h.writeProfile(w, r, http.StatusOK, p)
}

func (h *Handler) handleApprovalPreview(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	p, youth, err := h.svc.ApprovalPreview(r.Context(), token)
	if err != nil {
		h.fail(w, r, err, "failed to load approval preview")
		return
	}

	today := requestcontext.Now(r.Context())
	shared.WriteJSON(w, http.StatusOK, approvalPreviewResponse{
		Profile:    toProfileResponse(p, h.svc.Season(), today),
		YouthName:  youth.DisplayName(),
		YouthEmail: youth.PrimaryEmail,
	})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req updateProfileRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}
	update, err := req.toUpdate()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	p, err := h.svc.ApproveByToken(r.Context(), token, update)
	if err != nil {
		h.fail(w, r, err, "failed to approve youth profile")
		return
	}
	h.metrics.ProfilesApproved.Inc()
	h.writeProfile(w, r, http.StatusOK, p)
}
