package profiles

import (
	"context"
	"time"

	"github.com/google/uuid"

	"jassari/internal/membership"
)

// Store persists youth profiles and their contact persons. Implementations are
// pure I/O; business rules (age gates, renewal windows, token lifecycles) live
// in the service layer.
//
// Create assigns the membership number from an atomic sequence in the same
// operation as the first insert, so no two profiles can receive the same
// number.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (membership.Profile, error)
	// GetByApprovalToken is the sole lookup path during anonymous approval.
	// Tokens are unique; a missing token yields sentinel.ErrNotFound.
	GetByApprovalToken(ctx context.Context, token string) (membership.Profile, error)
	Create(ctx context.Context, p membership.Profile) (membership.Profile, error)
	Update(ctx context.Context, p membership.Profile) (membership.Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddContactPerson(ctx context.Context, cp membership.ContactPerson) (membership.ContactPerson, error)
	UpdateContactPerson(ctx context.Context, profileID uuid.UUID, upd membership.ContactPersonUpdate) (membership.ContactPerson, error)
	RemoveContactPerson(ctx context.Context, profileID, contactID uuid.UUID) error

	// ClearLapsedAccessTokens empties profile-access-token pairs whose
	// expiration is before cutoff and reports how many profiles were touched.
	ClearLapsedAccessTokens(ctx context.Context, cutoff time.Time) (int, error)

	// RunInTx runs fn against a store view whose mutations commit or roll
	// back as one unit. Mutating service operations always go through this.
	RunInTx(ctx context.Context, fn func(Store) error) error
}
