package service

import (
	"context"

	"github.com/google/uuid"

	"jassari/internal/audit"
	"jassari/internal/membership"
	"jassari/internal/membership/store/profiles"
	"jassari/pkg/requestcontext"
)

// UpdateProfile applies an explicit field update to a profile. Non-staff
// callers are subject to the photo-usage age gate, checked against the
// authoritative birth date (the update's value when present, the stored one
// otherwise). ResendRequestNotification starts a fresh approval cycle.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, update membership.ProfileUpdate, staff bool) (membership.Profile, error) {
	now := requestcontext.Now(ctx)
	today := membership.DateOf(now)

	var updated membership.Profile
	err := s.store.RunInTx(ctx, func(tx profiles.Store) error {
		p, err := tx.GetByID(ctx, id)
		if err != nil {
			return translateStoreErr(err)
		}

		if !staff {
			if err := membership.ValidatePhotoUsageUpdate(update, p.BirthDate, today); err != nil {
				return err
			}
		}

		update.Apply(&p)
		if update.ResendRequestNotification {
			if err := s.makeApprovable(ctx, &p, "", now); err != nil {
				return err
			}
		}

		if _, err := tx.Update(ctx, p); err != nil {
			return translateStoreErr(err)
		}
		if err := s.applyContactChanges(ctx, tx, id, update); err != nil {
			return err
		}

		updated, err = tx.GetByID(ctx, id)
		return translateStoreErr(err)
	})
	if err != nil {
		return membership.Profile{}, err
	}

	s.auditor.Record(ctx, audit.Event{
		ActorID:   requestcontext.ProfileID(ctx),
		ProfileID: id.String(),
		Action:    audit.ActionUpdated,
	})
	return updated, nil
}

func (s *Service) applyContactChanges(ctx context.Context, tx profiles.Store, profileID uuid.UUID, update membership.ProfileUpdate) error {
	for _, cp := range update.AddContactPersons {
		_, err := tx.AddContactPerson(ctx, membership.ContactPerson{
			ProfileID: profileID,
			FirstName: cp.FirstName,
			LastName:  cp.LastName,
			Phone:     cp.Phone,
			Email:     cp.Email,
		})
		if err != nil {
			return translateStoreErr(err)
		}
	}
	for _, upd := range update.UpdateContactPersons {
		if _, err := tx.UpdateContactPerson(ctx, profileID, upd); err != nil {
			return translateStoreErr(err)
		}
	}
	for _, contactID := range update.RemoveContactPersons {
		if err := tx.RemoveContactPerson(ctx, profileID, contactID); err != nil {
			return translateStoreErr(err)
		}
	}
	return nil
}
