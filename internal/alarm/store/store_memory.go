package store

import (
	"context"
	"slices"
	"sync"

	"hydration/internal/alarm/models"
	id "hydration/pkg/domain"
	"hydration/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	alarms map[id.UserID]*models.Alarm
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{alarms: make(map[id.UserID]*models.Alarm)}
}

func (s *InMemoryStore) Get(_ context.Context, userID id.UserID) (*models.Alarm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alarms[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(a), nil
}

func (s *InMemoryStore) Save(_ context.Context, alarm *models.Alarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alarms[alarm.UserID] = clone(alarm)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alarms[userID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.alarms, userID)
	return nil
}

func clone(a *models.Alarm) *models.Alarm {
	cp := *a
	cp.ActiveDays = slices.Clone(a.ActiveDays)
	return &cp
}
