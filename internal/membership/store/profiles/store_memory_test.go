package profiles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"jassari/internal/membership"
	"jassari/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory(6)
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) newProfile() membership.Profile {
	return membership.Profile{
		ID:             uuid.New(),
		BirthDate:      membership.Date(2005, time.January, 1),
		LanguageAtHome: membership.LanguageFinnish,
		Expiration:     membership.Date(2021, time.August, 31),
		ApprovalToken:  uuid.NewString(),
	}
}

func (s *InMemoryStoreSuite) TestCreateAssignsSequentialNumbers() {
	first, err := s.store.Create(s.ctx, s.newProfile())
	s.Require().NoError(err)
	second, err := s.store.Create(s.ctx, s.newProfile())
	s.Require().NoError(err)

	s.Equal("000001", first.MembershipNumber)
	s.Equal("000002", second.MembershipNumber)
	s.False(first.CreatedAt.IsZero())
}

func (s *InMemoryStoreSuite) TestCreateConflict() {
	p := s.newProfile()
	_, err := s.store.Create(s.ctx, p)
	s.Require().NoError(err)

	_, err = s.store.Create(s.ctx, p)
	s.True(errors.Is(err, sentinel.ErrConflict))
}

func (s *InMemoryStoreSuite) TestGetByApprovalToken() {
	p, err := s.store.Create(s.ctx, s.newProfile())
	s.Require().NoError(err)

	got, err := s.store.GetByApprovalToken(s.ctx, p.ApprovalToken)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)

	_, err = s.store.GetByApprovalToken(s.ctx, "missing")
	s.True(errors.Is(err, sentinel.ErrNotFound))

	_, err = s.store.GetByApprovalToken(s.ctx, "")
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *InMemoryStoreSuite) TestUpdateReindexesToken() {
	p, err := s.store.Create(s.ctx, s.newProfile())
	s.Require().NoError(err)
	oldToken := p.ApprovalToken

	p.ApprovalToken = uuid.NewString()
	updated, err := s.store.Update(s.ctx, p)
	s.Require().NoError(err)

	_, err = s.store.GetByApprovalToken(s.ctx, oldToken)
	s.True(errors.Is(err, sentinel.ErrNotFound))

	got, err := s.store.GetByApprovalToken(s.ctx, updated.ApprovalToken)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)
}

func (s *InMemoryStoreSuite) TestUpdatePreservesMembershipNumber() {
	p, err := s.store.Create(s.ctx, s.newProfile())
	s.Require().NoError(err)

	p.MembershipNumber = "999999"
	p.SchoolName = "Uusi koulu"
	updated, err := s.store.Update(s.ctx, p)
	s.Require().NoError(err)

	s.Equal("000001", updated.MembershipNumber)
	s.Equal("Uusi koulu", updated.SchoolName)
}

func (s *InMemoryStoreSuite) TestDelete() {
	p, err := s.store.Create(s.ctx, s.newProfile())
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(s.ctx, p.ID))
	_, err = s.store.GetByID(s.ctx, p.ID)
	s.True(errors.Is(err, sentinel.ErrNotFound))
	_, err = s.store.GetByApprovalToken(s.ctx, p.ApprovalToken)
	s.True(errors.Is(err, sentinel.ErrNotFound))

	s.True(errors.Is(s.store.Delete(s.ctx, p.ID), sentinel.ErrNotFound))
}

func (s *InMemoryStoreSuite) TestContactPersons() {
	p, err := s.store.Create(s.ctx, s.newProfile())
	s.Require().NoError(err)

	cp, err := s.store.AddContactPerson(s.ctx, membership.ContactPerson{
		ProfileID: p.ID,
		FirstName: "Eka",
	})
	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, cp.ID)

	name := "Toka"
	updated, err := s.store.UpdateContactPerson(s.ctx, p.ID, membership.ContactPersonUpdate{
		ID:        cp.ID,
		FirstName: &name,
	})
	s.Require().NoError(err)
	s.Equal("Toka", updated.FirstName)

	s.Require().NoError(s.store.RemoveContactPerson(s.ctx, p.ID, cp.ID))
	s.True(errors.Is(s.store.RemoveContactPerson(s.ctx, p.ID, cp.ID), sentinel.ErrNotFound))
}

func (s *InMemoryStoreSuite) TestClearLapsedAccessTokens() {
	lapsedAt := membership.Date(2020, time.June, 1)
	liveUntil := membership.Date(2020, time.August, 1)

	lapsed := s.newProfile()
	lapsed.ProfileAccessToken = "lapsed-token"
	lapsed.ProfileAccessTokenExpiresAt = &lapsedAt
	_, err := s.store.Create(s.ctx, lapsed)
	s.Require().NoError(err)

	live := s.newProfile()
	live.ProfileAccessToken = "live-token"
	live.ProfileAccessTokenExpiresAt = &liveUntil
	_, err = s.store.Create(s.ctx, live)
	s.Require().NoError(err)

	cleared, err := s.store.ClearLapsedAccessTokens(s.ctx, membership.Date(2020, time.July, 1))
	s.Require().NoError(err)
	s.Equal(1, cleared)

	got, err := s.store.GetByID(s.ctx, lapsed.ID)
	s.Require().NoError(err)
	s.Empty(got.ProfileAccessToken)
	s.Nil(got.ProfileAccessTokenExpiresAt)

	got, err = s.store.GetByID(s.ctx, live.ID)
	s.Require().NoError(err)
	s.Equal("live-token", got.ProfileAccessToken)
}

func (s *InMemoryStoreSuite) TestRunInTx() {
	err := s.store.RunInTx(s.ctx, func(tx Store) error {
		_, err := tx.Create(s.ctx, s.newProfile())
		return err
	})
	s.Require().NoError(err)

	cancelled, cancel := context.WithCancel(s.ctx)
	cancel()
	err = s.store.RunInTx(cancelled, func(tx Store) error { return nil })
	s.Error(err)
}

func (s *InMemoryStoreSuite) TestRunInTxRollsBackOnError() {
	existing, err := s.store.Create(s.ctx, s.newProfile())
	s.Require().NoError(err)

	boom := errors.New("boom")
	late := s.newProfile()
	err = s.store.RunInTx(s.ctx, func(tx Store) error {
		if _, err := tx.Create(s.ctx, late); err != nil {
			return err
		}
		existing.SchoolName = "Uusi koulu"
		existing.ApprovalToken = uuid.NewString()
		if _, err := tx.Update(s.ctx, existing); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	_, err = s.store.GetByID(s.ctx, late.ID)
	s.True(errors.Is(err, sentinel.ErrNotFound))

	got, err := s.store.GetByID(s.ctx, existing.ID)
	s.Require().NoError(err)
	s.Empty(got.SchoolName)

	// The token index and the number sequence are rolled back with the rows.
	_, err = s.store.GetByApprovalToken(s.ctx, existing.ApprovalToken)
	s.True(errors.Is(err, sentinel.ErrNotFound))
	next, err := s.store.Create(s.ctx, s.newProfile())
	s.Require().NoError(err)
	s.Equal("000002", next.MembershipNumber)
}
