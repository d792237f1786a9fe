package events

import (
	"context"
	"sync"
)

// Published pairs a delivered event with its subject.
type Published struct {
	Subject string
	Event   Event
}

// InMemorySink records events. Used when NATS is not configured and in tests.
type InMemorySink struct {
	mu        sync.RWMutex
	published []Published
}

func NewInMemorySink() *InMemorySink {
	return &InMemorySink{}
}

func (s *InMemorySink) Publish(_ context.Context, subject string, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, Published{Subject: subject, Event: e})
	return nil
}

func (s *InMemorySink) Published() []Published {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Published{}, s.published...)
}
