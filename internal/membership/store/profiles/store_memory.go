package profiles

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"jassari/internal/membership"
	"jassari/pkg/platform/sentinel"
)

// InMemoryStore keeps profiles in maps for tests and development runs without
// a database. The membership-number sequence is a plain counter guarded by the
// store mutex, which preserves the uniqueness contract within one process.
type InMemoryStore struct {
	mu           sync.Mutex
	txMu         sync.Mutex
	profiles     map[uuid.UUID]membership.Profile
	byToken      map[string]uuid.UUID
	sequence     int64
	numberLength int
}

// NewInMemory constructs an empty in-memory store. numberLength controls the
// zero padding of generated membership numbers.
func NewInMemory(numberLength int) *InMemoryStore {
	return &InMemoryStore{
		profiles:     make(map[uuid.UUID]membership.Profile),
		byToken:      make(map[string]uuid.UUID),
		numberLength: numberLength,
	}
}

func (s *InMemoryStore) GetByID(ctx context.Context, id uuid.UUID) (membership.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return membership.Profile{}, sentinel.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (s *InMemoryStore) GetByApprovalToken(ctx context.Context, token string) (membership.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		return membership.Profile{}, sentinel.ErrNotFound
	}
	id, ok := s.byToken[token]
	if !ok {
		return membership.Profile{}, sentinel.ErrNotFound
	}
	return cloneProfile(s.profiles[id]), nil
}

func (s *InMemoryStore) Create(ctx context.Context, p membership.Profile) (membership.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[p.ID]; exists {
		return membership.Profile{}, sentinel.ErrConflict
	}

	s.sequence++
	p.MembershipNumber = fmt.Sprintf("%0*d", s.numberLength, s.sequence)
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	for i := range p.ContactPersons {
		if p.ContactPersons[i].ID == uuid.Nil {
			p.ContactPersons[i].ID = uuid.New()
		}
		p.ContactPersons[i].ProfileID = p.ID
	}

	s.put(p)
	return cloneProfile(p), nil
}

func (s *InMemoryStore) Update(ctx context.Context, p membership.Profile) (membership.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.profiles[p.ID]
	if !ok {
		return membership.Profile{}, sentinel.ErrNotFound
	}

	// Contact persons have their own mutation methods; carry them over.
	p.ContactPersons = existing.ContactPersons
	p.MembershipNumber = existing.MembershipNumber
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()

	delete(s.byToken, existing.ApprovalToken)
	s.put(p)
	return cloneProfile(p), nil
}

func (s *InMemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byToken, p.ApprovalToken)
	delete(s.profiles, id)
	return nil
}

func (s *InMemoryStore) AddContactPerson(ctx context.Context, cp membership.ContactPerson) (membership.ContactPerson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[cp.ProfileID]
	if !ok {
		return membership.ContactPerson{}, sentinel.ErrNotFound
	}
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	p.ContactPersons = append(p.ContactPersons, cp)
	s.profiles[cp.ProfileID] = p
	return cp, nil
}

func (s *InMemoryStore) UpdateContactPerson(ctx context.Context, profileID uuid.UUID, upd membership.ContactPersonUpdate) (membership.ContactPerson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[profileID]
	if !ok {
		return membership.ContactPerson{}, sentinel.ErrNotFound
	}
	for i, cp := range p.ContactPersons {
		if cp.ID != upd.ID {
			continue
		}
		if upd.FirstName != nil {
			cp.FirstName = *upd.FirstName
		}
		if upd.LastName != nil {
			cp.LastName = *upd.LastName
		}
		if upd.Phone != nil {
			cp.Phone = *upd.Phone
		}
		if upd.Email != nil {
			cp.Email = *upd.Email
		}
		p.ContactPersons[i] = cp
		s.profiles[profileID] = p
		return cp, nil
	}
	return membership.ContactPerson{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) RemoveContactPerson(ctx context.Context, profileID, contactID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[profileID]
	if !ok {
		return sentinel.ErrNotFound
	}
	for i, cp := range p.ContactPersons {
		if cp.ID == contactID {
			p.ContactPersons = append(p.ContactPersons[:i], p.ContactPersons[i+1:]...)
			s.profiles[profileID] = p
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemoryStore) ClearLapsedAccessTokens(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cleared := 0
	for id, p := range s.profiles {
		if p.ProfileAccessToken == "" || p.ProfileAccessTokenExpiresAt == nil {
			continue
		}
		if p.ProfileAccessTokenExpiresAt.Before(cutoff) {
			p.ProfileAccessToken = ""
			p.ProfileAccessTokenExpiresAt = nil
			s.profiles[id] = p
			cleared++
		}
	}
	return cleared, nil
}

// RunInTx serializes transactions with a coarse lock. A snapshot taken before
// fn runs is restored when fn fails, so a mid-transaction error leaves no
// partial writes behind.
func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type storeSnapshot struct {
	profiles map[uuid.UUID]membership.Profile
	byToken  map[string]uuid.UUID
	sequence int64
}

func (s *InMemoryStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := storeSnapshot{
		profiles: make(map[uuid.UUID]membership.Profile, len(s.profiles)),
		byToken:  make(map[string]uuid.UUID, len(s.byToken)),
		sequence: s.sequence,
	}
	for id, p := range s.profiles {
		snap.profiles[id] = cloneProfile(p)
	}
	for token, id := range s.byToken {
		snap.byToken[token] = id
	}
	return snap
}

func (s *InMemoryStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles = snap.profiles
	s.byToken = snap.byToken
	s.sequence = snap.sequence
}

// put indexes the profile under its current approval token. Callers hold s.mu.
func (s *InMemoryStore) put(p membership.Profile) {
	s.profiles[p.ID] = cloneProfile(p)
	if p.ApprovalToken != "" {
		s.byToken[p.ApprovalToken] = p.ID
	}
}

func cloneProfile(p membership.Profile) membership.Profile {
	out := p
	if p.ApprovalNotificationAt != nil {
		t := *p.ApprovalNotificationAt
		out.ApprovalNotificationAt = &t
	}
	if p.ApprovedAt != nil {
		t := *p.ApprovedAt
		out.ApprovedAt = &t
	}
	if p.PhotoUsageApproved != nil {
		v := *p.PhotoUsageApproved
		out.PhotoUsageApproved = &v
	}
	if p.ProfileAccessTokenExpiresAt != nil {
		t := *p.ProfileAccessTokenExpiresAt
		out.ProfileAccessTokenExpiresAt = &t
	}
	out.ContactPersons = append([]membership.ContactPerson(nil), p.ContactPersons...)
	return out
}
