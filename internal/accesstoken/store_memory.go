package accesstoken

import (
	"context"
	"sync"
	"time"

	"jassari/pkg/platform/sentinel"
)

// MemoryStore keeps grants in a map for tests and development. Expired grants
// stay until PurgeExpired runs; Get reports them as expired.
type MemoryStore struct {
	mu     sync.Mutex
	grants map[string]Grant
}

func NewMemory() *MemoryStore {
	return &MemoryStore{grants: make(map[string]Grant)}
}

func (s *MemoryStore) Put(ctx context.Context, grant Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grant.Token] = grant
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.grants[token]
	if !ok {
		return Grant{}, sentinel.ErrNotFound
	}
	if grant.Expired(time.Now()) {
		return Grant{}, sentinel.ErrExpired
	}
	return grant, nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, token)
	return nil
}

func (s *MemoryStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for token, grant := range s.grants {
		if grant.Expired(now) {
			delete(s.grants, token)
			purged++
		}
	}
	return purged, nil
}
