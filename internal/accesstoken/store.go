// Package accesstoken tracks temporary profile-access-token grants. A grant
// lets an anonymous approver read the minor's identity-service profile while
// the approval is outstanding; once it lapses the approval itself is refused
// with a token-expired error.
package accesstoken

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Grant maps an access token to the profile it opens, until ExpiresAt.
type Grant struct {
	Token     string
	ProfileID uuid.UUID
	ExpiresAt time.Time
}

// Expired reports whether the grant has lapsed as of now.
func (g Grant) Expired(now time.Time) bool {
	return g.ExpiresAt.Before(now)
}

// Store persists grants. Lookups after expiry return sentinel.ErrNotFound or
// sentinel.ErrExpired depending on whether the backend evicts eagerly.
type Store interface {
	Put(ctx context.Context, grant Grant) error
	Get(ctx context.Context, token string) (Grant, error)
	Delete(ctx context.Context, token string) error
	// PurgeExpired removes lapsed grants and reports how many were removed.
	// Backends with native TTL eviction may report zero.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
