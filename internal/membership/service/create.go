package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"jassari/internal/accesstoken"
	"jassari/internal/audit"
	"jassari/internal/membership"
	"jassari/internal/membership/store/profiles"
	dErrors "jassari/pkg/domain-errors"
	"jassari/pkg/requestcontext"
)

// CreateOwnProfile creates a membership for the authenticated youth. The
// profile ID comes from the identity service, never from the caller. Adults
// are approved immediately; minors get a temporary profile-access token and a
// pending approval cycle with a notification to their guardian.
func (s *Service) CreateOwnProfile(ctx context.Context, apiToken string, input membership.CreateProfileInput) (membership.Profile, error) {
	now := requestcontext.Now(ctx)
	today := membership.DateOf(now)

	if err := membership.ValidateCreation(input, today, false); err != nil {
		return membership.Profile{}, err
	}

	identity, err := s.identity.FetchMyProfile(ctx, apiToken)
	if err != nil {
		return membership.Profile{}, err
	}
	id, err := uuid.Parse(identity.ID)
	if err != nil {
		return membership.Profile{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "profile API returned a malformed profile id")
	}

	p := s.newProfile(id, input, today)
	age := membership.Age(p.BirthDate, today)

	var created membership.Profile
	err = s.store.RunInTx(ctx, func(tx profiles.Store) error {
		if age >= membership.AgeOfMajority {
			s.setApproved(ctx, &p, now)
		} else {
			token, err := s.identity.CreateTemporaryAccessToken(ctx, apiToken)
			if err != nil {
				return err
			}
			p.ProfileAccessToken = token.Token
			expiry := token.ExpiresAt
			p.ProfileAccessTokenExpiresAt = &expiry
			if err := s.grants.Put(ctx, accesstoken.Grant{Token: token.Token, ProfileID: id, ExpiresAt: token.ExpiresAt}); err != nil {
				return err
			}
			if err := s.makeApprovable(ctx, &p, identity.DisplayName(), now); err != nil {
				return err
			}
		}

		var err error
		created, err = tx.Create(ctx, p)
		return translateStoreErr(err)
	})
	if err != nil {
		return membership.Profile{}, err
	}

	s.auditor.Record(ctx, audit.Event{ActorID: id.String(), ProfileID: id.String(), Action: audit.ActionCreated})
	return created, nil
}

// CreateProfile creates a membership on behalf of a youth (staff operation).
// The target profile must exist in the identity service; the created
// membership is approved immediately.
func (s *Service) CreateProfile(ctx context.Context, apiToken string, profileID uuid.UUID, input membership.CreateProfileInput) (membership.Profile, error) {
	now := requestcontext.Now(ctx)
	today := membership.DateOf(now)

	if err := membership.ValidateCreation(input, today, true); err != nil {
		return membership.Profile{}, err
	}

	if _, err := s.identity.FetchProfile(ctx, apiToken, profileID.String()); err != nil {
		return membership.Profile{}, err
	}

	p := s.newProfile(profileID, input, today)
	s.setApproved(ctx, &p, now)

	var created membership.Profile
	err := s.store.RunInTx(ctx, func(tx profiles.Store) error {
		var err error
		created, err = tx.Create(ctx, p)
		return translateStoreErr(err)
	})
	if err != nil {
		return membership.Profile{}, err
	}

	s.auditor.Record(ctx, audit.Event{
		ActorID:   requestcontext.ProfileID(ctx),
		ProfileID: profileID.String(),
		Action:    audit.ActionCreated,
	})
	return created, nil
}

// GetProfile loads a profile and records the read.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (membership.Profile, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return membership.Profile{}, translateStoreErr(err)
	}
	s.auditor.Record(ctx, audit.Event{
		ActorID:   requestcontext.ProfileID(ctx),
		ProfileID: id.String(),
		Action:    audit.ActionViewed,
	})
	return p, nil
}

func (s *Service) newProfile(id uuid.UUID, input membership.CreateProfileInput, today time.Time) membership.Profile {
	p := membership.Profile{
		ID:                id,
		BirthDate:         membership.DateOf(input.BirthDate),
		SchoolName:        input.SchoolName,
		SchoolClass:       input.SchoolClass,
		LanguageAtHome:    input.LanguageAtHome,
		Expiration:        s.season.CalculateExpiration(today),
		ApproverFirstName: input.ApproverFirstName,
		ApproverLastName:  input.ApproverLastName,
		ApproverPhone:     input.ApproverPhone,
		ApproverEmail:     input.ApproverEmail,
	}
	if input.PhotoUsageApproved != nil {
		v := *input.PhotoUsageApproved
		p.PhotoUsageApproved = &v
	}
	if p.LanguageAtHome == "" {
		p.LanguageAtHome = membership.LanguageFinnish
	}
	for _, cp := range input.ContactPersons {
		p.ContactPersons = append(p.ContactPersons, membership.ContactPerson{
			ProfileID: id,
			FirstName: cp.FirstName,
			LastName:  cp.LastName,
			Phone:     cp.Phone,
			Email:     cp.Email,
		})
	}
	return p
}
