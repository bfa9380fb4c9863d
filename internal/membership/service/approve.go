package service

import (
	"context"

	"jassari/internal/audit"
	"jassari/internal/membership"
	"jassari/internal/membership/store/profiles"
	"jassari/internal/notification"
	"jassari/internal/profileapi"
	dErrors "jassari/pkg/domain-errors"
	"jassari/pkg/requestcontext"
)

// ApproveByToken completes an approval. The approval token is the sole lookup
// key; an unknown token reads as not-found so existence is not leaked. When
// the profile still carries a temporary access-token grant that has lapsed,
// the approval is refused with a token-expired error, distinct from
// not-found and from membership expiry.
//
// The approver may correct profile data at approval time; those edits bypass
// the photo-usage age gate because the approver is the guardian. Approval
// invalidates both tokens (single use) and confirms to the youth when their
// email can still be resolved through the access token.
func (s *Service) ApproveByToken(ctx context.Context, token string, update membership.ProfileUpdate) (membership.Profile, error) {
	now := requestcontext.Now(ctx)

	var approved membership.Profile
	err := s.store.RunInTx(ctx, func(tx profiles.Store) error {
		p, err := tx.GetByApprovalToken(ctx, token)
		if err != nil {
			return translateStoreErr(err)
		}

		if p.ProfileAccessTokenExpiresAt != nil && p.ProfileAccessTokenExpiresAt.Before(now) {
			return dErrors.New(dErrors.CodeTokenExpired, "profile access token has expired")
		}

		// Resolve the youth's identity before approval clears the access
		// token. Without a token (e.g. a minor's renewal approval after the
		// original grant lapsed and was cleared) the confirmation is skipped.
		var youth profileapi.Identity
		haveYouth := false
		if p.ProfileAccessToken != "" {
			youth, err = s.identity.ProfileWithAccessToken(ctx, p.ProfileAccessToken)
			if err != nil {
				return err
			}
			haveYouth = true
		}

		update.Apply(&p)
		s.setApproved(ctx, &p, now)

		if _, err := tx.Update(ctx, p); err != nil {
			return translateStoreErr(err)
		}
		if err := s.applyContactChanges(ctx, tx, p.ID, update); err != nil {
			return err
		}

		if haveYouth && youth.PrimaryEmail != "" {
			err := s.notifier.Send(ctx, notificationConfirmed(youth, p))
			if err != nil {
				return err
			}
		}

		approved, err = tx.GetByID(ctx, p.ID)
		return translateStoreErr(err)
	})
	if err != nil {
		return membership.Profile{}, err
	}

	s.auditor.Record(ctx, audit.Event{ProfileID: approved.ID.String(), Action: audit.ActionApproved})
	return approved, nil
}

// ApprovalPreview loads the profile behind an approval token together with the
// youth's identity data, for the approver's review screen. Requires a live
// profile-access-token grant.
func (s *Service) ApprovalPreview(ctx context.Context, token string) (membership.Profile, profileapi.Identity, error) {
	now := requestcontext.Now(ctx)

	p, err := s.store.GetByApprovalToken(ctx, token)
	if err != nil {
		return membership.Profile{}, profileapi.Identity{}, translateStoreErr(err)
	}
	if p.ProfileAccessTokenExpiresAt != nil && p.ProfileAccessTokenExpiresAt.Before(now) {
		return membership.Profile{}, profileapi.Identity{}, dErrors.New(dErrors.CodeTokenExpired, "profile access token has expired")
	}

	var youth profileapi.Identity
	if p.ProfileAccessToken != "" {
		youth, err = s.identity.ProfileWithAccessToken(ctx, p.ProfileAccessToken)
		if err != nil {
			return membership.Profile{}, profileapi.Identity{}, err
		}
	}

	s.auditor.Record(ctx, audit.Event{ProfileID: p.ID.String(), Action: audit.ActionViewed})
	return p, youth, nil
}

func notificationConfirmed(youth profileapi.Identity, p membership.Profile) notification.Message {
	return notification.Message{
		Recipient: youth.PrimaryEmail,
		Template:  notification.TemplateConfirmed,
		Language:  p.LanguageAtHome,
		Context: map[string]string{
			"youth_name":          youth.DisplayName(),
			"approver_first_name": p.ApproverFirstName,
		},
	}
}
