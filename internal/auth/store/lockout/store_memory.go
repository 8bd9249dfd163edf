package lockout

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count     int
	expiresAt time.Time
}

// InMemoryStore is the fallback when Redis is not configured. Counters
// live in process memory and expire lazily on access.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func New() *InMemoryStore {
	return &InMemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *InMemoryStore) RecordFailure(_ context.Context, identifier string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[identifier]
	if !ok || now.After(entry.expiresAt) {
		entry = memoryEntry{expiresAt: now.Add(window)}
	}
	entry.count++
	s.entries[identifier] = entry
	return entry.count, nil
}

func (s *InMemoryStore) Failures(_ context.Context, identifier string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[identifier]
	if !ok {
		return 0, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, identifier)
		return 0, nil
	}
	return entry.count, nil
}

func (s *InMemoryStore) Clear(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, identifier)
	return nil
}
