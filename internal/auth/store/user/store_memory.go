package user

import (
	"context"
	"strings"
	"sync"

	"olhopix/internal/auth/models"
	id "olhopix/pkg/domain"
	"olhopix/pkg/platform/sentinel"
)

// InMemoryStore keeps users in maps guarded by a RWMutex. It backs local
// development and unit tests; postgres is the production store.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.UserID]*models.User
	byEmail map[string]*models.User
}

func New() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.UserID]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (s *InMemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(user.Email)
	if _, exists := s.byEmail[email]; exists {
		return sentinel.ErrConflict
	}

	u := *user
	s.byID[u.ID] = &u
	s.byEmail[email] = &u
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if user, ok := s.byID[userID]; ok {
		u := *user
		return &u, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if user, ok := s.byEmail[normalizeEmail(email)]; ok {
		u := *user
		return &u, nil
	}
	return nil, sentinel.ErrNotFound
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
