package store

import (
	"context"
	"sync"

	"hydration/internal/profile/models"
	id "hydration/pkg/domain"
	"hydration/pkg/platform/sentinel"
)

// InMemoryStore keeps profiles keyed by user ID with a subject index.
type InMemoryStore struct {
	mu        sync.RWMutex
	profiles  map[id.UserID]*models.Profile
	bySubject map[string]id.UserID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		profiles:  make(map[id.UserID]*models.Profile),
		bySubject: make(map[string]id.UserID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bySubject[p.Subject]; ok {
		return sentinel.ErrConflict
	}
	cp := *p
	s.profiles[p.UserID] = &cp
	s.bySubject[p.Subject] = p.UserID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryStore) FindBySubject(_ context.Context, subject string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.bySubject[subject]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.profiles[userID]
	return &cp, nil
}

func (s *InMemoryStore) Update(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.UserID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *p
	s.profiles[p.UserID] = &cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.bySubject, p.Subject)
	delete(s.profiles, userID)
	return nil
}
