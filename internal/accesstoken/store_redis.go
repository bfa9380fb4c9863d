package accesstoken

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"jassari/pkg/platform/sentinel"
)

const keyPrefix = "profile-access-token:"

// RedisStore keeps grants in Redis with a TTL matching the grant expiration,
// so lapsed grants disappear without a sweeper.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

type redisGrant struct {
	ProfileID string    `json:"profile_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *RedisStore) Put(ctx context.Context, grant Grant) error {
	ttl := time.Until(grant.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrExpired
	}
	payload, err := json.Marshal(redisGrant{ProfileID: grant.ProfileID.String(), ExpiresAt: grant.ExpiresAt})
	if err != nil {
		return fmt.Errorf("marshal grant: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+grant.Token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store grant: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (Grant, error) {
	raw, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Grant{}, sentinel.ErrNotFound
		}
		return Grant{}, fmt.Errorf("get grant: %w", err)
	}
	var stored redisGrant
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Grant{}, fmt.Errorf("unmarshal grant: %w", err)
	}
	grant := Grant{Token: token, ExpiresAt: stored.ExpiresAt}
	if grant.ProfileID, err = parseProfileID(stored.ProfileID); err != nil {
		return Grant{}, err
	}
	return grant, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	return nil
}

// PurgeExpired is a no-op: Redis evicts grants via TTL.
func (s *RedisStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func parseProfileID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid profile id in grant: %w", err)
	}
	return id, nil
}
