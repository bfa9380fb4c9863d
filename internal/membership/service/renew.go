package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"jassari/internal/audit"
	"jassari/internal/membership"
	"jassari/internal/membership/store/profiles"
	dErrors "jassari/pkg/domain-errors"
	"jassari/pkg/requestcontext"
)

// Renew advances the profile's expiration to what a signup today would get.
// Fails when the expiration already matches, which covers both "already
// renewed this window" and "renewal window not yet open". Adults are approved
// in the same operation; minors enter a new approval cycle. The expiration
// change and the approval branch land atomically or not at all.
func (s *Service) Renew(ctx context.Context, id uuid.UUID) (membership.Profile, error) {
	now := requestcontext.Now(ctx)
	today := membership.DateOf(now)

	var renewed membership.Profile
	err := s.store.RunInTx(ctx, func(tx profiles.Store) error {
		p, err := tx.GetByID(ctx, id)
		if err != nil {
			return translateStoreErr(err)
		}

		next := s.season.CalculateExpiration(today)
		if p.Expiration.Equal(next) {
			return dErrors.New(dErrors.CodeCannotRenew,
				"cannot renew youth profile: already renewed or not yet in the next renew window")
		}
		p.Expiration = next

		if membership.Age(p.BirthDate, today) >= membership.AgeOfMajority {
			s.setApproved(ctx, &p, now)
		} else {
			if err := s.makeApprovable(ctx, &p, "", now); err != nil {
				return err
			}
		}

		renewed, err = tx.Update(ctx, p)
		return translateStoreErr(err)
	})
	if err != nil {
		return membership.Profile{}, err
	}

	s.auditor.Record(ctx, audit.Event{
		ActorID:   requestcontext.ProfileID(ctx),
		ProfileID: id.String(),
		Action:    audit.ActionRenewed,
	})
	return renewed, nil
}

// Cancel ends the membership at the given date, or today when none is given.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, expiration *time.Time) (membership.Profile, error) {
	now := requestcontext.Now(ctx)

	end := membership.DateOf(now)
	if expiration != nil {
		end = membership.DateOf(*expiration)
	}

	var cancelled membership.Profile
	err := s.store.RunInTx(ctx, func(tx profiles.Store) error {
		p, err := tx.GetByID(ctx, id)
		if err != nil {
			return translateStoreErr(err)
		}
		p.Expiration = end
		cancelled, err = tx.Update(ctx, p)
		return translateStoreErr(err)
	})
	if err != nil {
		return membership.Profile{}, err
	}

	s.auditor.Record(ctx, audit.Event{
		ActorID:   requestcontext.ProfileID(ctx),
		ProfileID: id.String(),
		Action:    audit.ActionCancelled,
	})
	return cancelled, nil
}
