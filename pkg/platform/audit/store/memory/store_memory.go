// Package memory provides an in-memory audit store for tests and local runs.
package memory

import (
	"context"
	"sync"

	id "olhopix/pkg/domain"
	"olhopix/pkg/platform/audit"
)

// InMemoryStore keeps events in insertion order, guarded by a mutex so the
// async publisher goroutine and test readers can share it.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}
