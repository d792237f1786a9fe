package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"hydration/internal/intake/models"
	id "hydration/pkg/domain"
	"hydration/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	intakes map[id.UserID]map[id.IntakeID]*models.Intake
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{intakes: make(map[id.UserID]map[id.IntakeID]*models.Intake)}
}

func (s *InMemoryStore) Save(_ context.Context, intake *models.Intake) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser, ok := s.intakes[intake.UserID]
	if !ok {
		byUser = make(map[id.IntakeID]*models.Intake)
		s.intakes[intake.UserID] = byUser
	}
	if _, exists := byUser[intake.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *intake
	byUser[intake.ID] = &cp
	return nil
}

// Delete removes an intake owned by userID and returns it.
func (s *InMemoryStore) Delete(_ context.Context, userID id.UserID, intakeID id.IntakeID) (*models.Intake, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	intake, ok := s.intakes[userID][intakeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	delete(s.intakes[userID], intakeID)
	return intake, nil
}

func (s *InMemoryStore) DeleteByUser(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.intakes, userID)
	return nil
}

func (s *InMemoryStore) Search(_ context.Context, userID id.UserID, f models.Filter) ([]*models.Intake, int, error) {
	s.mu.RLock()
	var matched []*models.Intake
	for _, intake := range s.intakes[userID] {
		if matches(intake, f) {
			cp := *intake
			matched = append(matched, &cp)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *models.Intake) int {
		c := compareBy(f.SortField, a, b)
		if c == 0 {
			c = cmp.Compare(a.ID.String(), b.ID.String())
		}
		if f.SortDirection == models.SortDesc {
			return -c
		}
		return c
	})

	total := len(matched)
	if f.Page < 0 || f.Size <= 0 || f.Page >= total/f.Size+1 {
		return matched[total:], total, nil
	}
	start := f.Page * f.Size
	end := min(start+f.Size, total)
	return matched[start:end], total, nil
}

func (s *InMemoryStore) SumBetween(_ context.Context, userID id.UserID, from, to time.Time) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total, count := 0, 0
	for _, intake := range s.intakes[userID] {
		if !intake.ConsumedAt.Before(from) && intake.ConsumedAt.Before(to) {
			total += intake.VolumeMl
			count++
		}
	}
	return total, count, nil
}

func matches(i *models.Intake, f models.Filter) bool {
	if f.From != nil && i.ConsumedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && i.ConsumedAt.After(*f.To) {
		return false
	}
	if f.MinVolume != nil && i.VolumeMl < *f.MinVolume {
		return false
	}
	if f.MaxVolume != nil && i.VolumeMl > *f.MaxVolume {
		return false
	}
	return true
}

func compareBy(field string, a, b *models.Intake) int {
	switch field {
	case "volumeMl":
		return cmp.Compare(a.VolumeMl, b.VolumeMl)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return a.ConsumedAt.Compare(b.ConsumedAt)
	}
}
