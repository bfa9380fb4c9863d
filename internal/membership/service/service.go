// Package service orchestrates the youth membership operations: creation,
// update, renewal, approval, cancellation and GDPR export/delete. Business
// rules live in the membership package; persistence, identity resolution and
// notification delivery are collaborators behind interfaces.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"jassari/internal/accesstoken"
	"jassari/internal/audit"
	"jassari/internal/membership"
	"jassari/internal/membership/store/profiles"
	"jassari/internal/notification"
	"jassari/internal/profileapi"
)

// IdentityResolver resolves canonical profile identity from the external
// profile service.
type IdentityResolver interface {
	FetchProfile(ctx context.Context, apiToken, profileID string) (profileapi.Identity, error)
	FetchMyProfile(ctx context.Context, apiToken string) (profileapi.Identity, error)
	ProfileWithAccessToken(ctx context.Context, accessToken string) (profileapi.Identity, error)
	CreateTemporaryAccessToken(ctx context.Context, apiToken string) (profileapi.TemporaryToken, error)
}

// TokenIssuer generates opaque unguessable tokens for the approval flow.
type TokenIssuer interface {
	NewToken() string
}

// Recorder accepts audit events. Recording must not block request handling.
type Recorder interface {
	Record(ctx context.Context, event audit.Event)
}

// Service implements the membership operations over its collaborators. All
// mutating operations run inside a single store transaction; notification
// publishes happen inside that boundary so a failed publish aborts the
// mutation.
type Service struct {
	store     profiles.Store
	identity  IdentityResolver
	notifier  notification.Sender
	grants    accesstoken.Store
	auditor   Recorder
	tokens    TokenIssuer
	season    membership.Season
	uiBaseURL string
	logger    *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTokenIssuer(issuer TokenIssuer) Option {
	return func(s *Service) {
		s.tokens = issuer
	}
}

func WithSeason(season membership.Season) Option {
	return func(s *Service) {
		s.season = season
	}
}

// WithUIBaseURL sets the base URL embedded in approval links.
func WithUIBaseURL(url string) Option {
	return func(s *Service) {
		s.uiBaseURL = url
	}
}

// New constructs the membership service.
func New(store profiles.Store, identity IdentityResolver, notifier notification.Sender, grants accesstoken.Store, auditor Recorder, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("profile store is required")
	}
	if identity == nil {
		return nil, fmt.Errorf("identity resolver is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notification sender is required")
	}
	if grants == nil {
		return nil, fmt.Errorf("access token store is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}

	svc := &Service{
		store:    store,
		identity: identity,
		notifier: notifier,
		grants:   grants,
		auditor:  auditor,
		tokens:   uuidIssuer{},
		season:   membership.DefaultSeason(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Season exposes the configured season so handlers compute status with the
// same constants the service uses.
func (s *Service) Season() membership.Season {
	return s.season
}

// uuidIssuer matches the original service's random UUID tokens.
type uuidIssuer struct{}

func (uuidIssuer) NewToken() string {
	return uuid.NewString()
}

// setApproved marks the profile approved and invalidates both the approval
// token and the temporary profile-access token so neither can be reused.
// Idempotent: re-approving only refreshes the approval timestamp.
func (s *Service) setApproved(ctx context.Context, p *membership.Profile, now time.Time) {
	if p.ProfileAccessToken != "" {
		if err := s.grants.Delete(ctx, p.ProfileAccessToken); err != nil {
			// Grant eviction is backed by TTL; a failed delete only delays it.
			s.logger.WarnContext(ctx, "failed to delete access token grant", "error", err.Error())
		}
	}
	t := now
	p.ApprovedAt = &t
	p.ApprovalToken = ""
	p.ProfileAccessToken = ""
	p.ProfileAccessTokenExpiresAt = nil
}

// makeApprovable starts a new approval cycle: a fresh single-use approval
// token, an approval-request notification to the guardian, and a notification
// timestamp. The notification carries the approval token and, when one exists,
// the temporary profile-access token for the approver's profile preview.
func (s *Service) makeApprovable(ctx context.Context, p *membership.Profile, youthName string, now time.Time) error {
	p.ApprovalToken = s.tokens.NewToken()

	// Renewals and resends start without the youth's name in hand. Resolve it
	// through the live access-token grant when one exists; after the grant has
	// lapsed (a renewal long after approval) the template renders without it.
	if youthName == "" && p.ProfileAccessToken != "" {
		youth, err := s.identity.ProfileWithAccessToken(ctx, p.ProfileAccessToken)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to resolve youth name for approval request", "error", err.Error())
		} else {
			youthName = youth.DisplayName()
		}
	}

	err := s.notifier.Send(ctx, notification.Message{
		Recipient: p.ApproverEmail,
		Template:  notification.TemplateConfirmationNeeded,
		Language:  p.LanguageAtHome,
		Context: map[string]string{
			"youth_name":           youthName,
			"approver_first_name":  p.ApproverFirstName,
			"approval_token":       p.ApprovalToken,
			"profile_access_token": p.ProfileAccessToken,
			"ui_base_url":          s.uiBaseURL,
		},
	})
	if err != nil {
		return err
	}

	t := now
	p.ApprovalNotificationAt = &t
	return nil
}
