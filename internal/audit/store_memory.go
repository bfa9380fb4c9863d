package audit

import (
	"context"
	"sync"
)

// MemoryStore is an append-only in-memory event log for tests.
type MemoryStore struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryStore) ListByProfile(ctx context.Context, profileID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Event
	for _, e := range s.events {
		if e.ProfileID == profileID {
			out = append(out, e)
		}
	}
	return out, nil
}
