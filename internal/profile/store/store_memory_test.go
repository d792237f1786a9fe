package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hydration/internal/profile/models"
	id "hydration/pkg/domain"
	"hydration/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func newProfile(subject string) *models.Profile {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.Profile{
		UserID:      id.NewUserID(),
		Subject:     subject,
		DailyGoalMl: models.DefaultDailyGoalMl,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *InMemoryStoreSuite) TestCreateAndLookup() {
	ctx := context.Background()
	p := newProfile("idp|1")
	s.Require().NoError(s.store.Create(ctx, p))

	byID, err := s.store.FindByID(ctx, p.UserID)
	s.Require().NoError(err)
	s.Equal(p, byID)

	bySubject, err := s.store.FindBySubject(ctx, "idp|1")
	s.Require().NoError(err)
	s.Equal(p.UserID, bySubject.UserID)

	s.ErrorIs(s.store.Create(ctx, newProfile("idp|1")), sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestReturnedProfilesAreCopies() {
	ctx := context.Background()
	p := newProfile("idp|2")
	s.Require().NoError(s.store.Create(ctx, p))

	found, err := s.store.FindByID(ctx, p.UserID)
	s.Require().NoError(err)
	found.DisplayName = "changed"

	again, err := s.store.FindByID(ctx, p.UserID)
	s.Require().NoError(err)
	s.Empty(again.DisplayName)
}

func (s *InMemoryStoreSuite) TestDelete() {
	ctx := context.Background()
	p := newProfile("idp|3")
	s.Require().NoError(s.store.Create(ctx, p))
	s.Require().NoError(s.store.Delete(ctx, p.UserID))

	_, err := s.store.FindBySubject(ctx, "idp|3")
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(ctx, p.UserID), sentinel.ErrNotFound)
	s.ErrorIs(s.store.Update(ctx, p), sentinel.ErrNotFound)
}
