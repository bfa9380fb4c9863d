package service

import (
	"context"

	"github.com/google/uuid"

	"jassari/internal/audit"
	"jassari/internal/membership"
	"jassari/internal/membership/store/profiles"
	"jassari/pkg/requestcontext"
)

// ExportData returns everything stored about a profile for a GDPR data
// request and records the export.
func (s *Service) ExportData(ctx context.Context, id uuid.UUID) (membership.Profile, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return membership.Profile{}, translateStoreErr(err)
	}
	s.auditor.Record(ctx, audit.Event{
		ActorID:   requestcontext.ProfileID(ctx),
		ProfileID: id.String(),
		Action:    audit.ActionExported,
	})
	return p, nil
}

// DeleteData removes a profile and its contact persons for a GDPR erasure
// request. With dryRun the permission and existence checks run but nothing is
// deleted.
func (s *Service) DeleteData(ctx context.Context, id uuid.UUID, dryRun bool) error {
	err := s.store.RunInTx(ctx, func(tx profiles.Store) error {
		p, err := tx.GetByID(ctx, id)
		if err != nil {
			return translateStoreErr(err)
		}
		if dryRun {
			return nil
		}
		if p.ProfileAccessToken != "" {
			if err := s.grants.Delete(ctx, p.ProfileAccessToken); err != nil {
				s.logger.WarnContext(ctx, "failed to delete access token grant", "error", err.Error())
			}
		}
		return translateStoreErr(tx.Delete(ctx, id))
	})
	if err != nil {
		return err
	}

	if !dryRun {
		s.auditor.Record(ctx, audit.Event{
			ActorID:   requestcontext.ProfileID(ctx),
			ProfileID: id.String(),
			Action:    audit.ActionDeleted,
		})
	}
	return nil
}
