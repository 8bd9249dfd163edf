package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"olhopix/internal/auth/models"
	id "olhopix/pkg/domain"
	"olhopix/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = New()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func newTestUser(email string) *models.User {
	return &models.User{
		ID:           id.NewUserID(),
		Email:        email,
		Name:         "Jane Doe",
		TaxID:        "11122233344",
		PasswordHash: "$2a$10$fakehash",
		CreatedAt:    time.Now(),
	}
}

func (s *InMemoryStoreSuite) TestLookupBehavior() {
	s.Run("returns user by ID when exists", func() {
		user := newTestUser("jane.doe@example.com")
		s.Require().NoError(s.store.Create(context.Background(), user))

		found, err := s.store.FindByID(context.Background(), user.ID)
		s.Require().NoError(err)
		s.Equal(user, found)
	})

	s.Run("returns user by email when exists", func() {
		user := newTestUser("email.lookup@example.com")
		s.Require().NoError(s.store.Create(context.Background(), user))

		found, err := s.store.FindByEmail(context.Background(), user.Email)
		s.Require().NoError(err)
		s.Equal(user, found)
	})

	s.Run("email lookup is case-insensitive", func() {
		user := newTestUser("Mixed.Case@Example.com")
		s.Require().NoError(s.store.Create(context.Background(), user))

		found, err := s.store.FindByEmail(context.Background(), "mixed.case@example.com")
		s.Require().NoError(err)
		s.Equal(user.ID, found.ID)
	})

	s.Run("returns ErrNotFound when user ID does not exist", func() {
		_, err := s.store.FindByID(context.Background(), id.NewUserID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound when email does not exist", func() {
		_, err := s.store.FindByEmail(context.Background(), "missing@example.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestDuplicateEmail() {
	user := newTestUser("dup@example.com")
	s.Require().NoError(s.store.Create(context.Background(), user))

	other := newTestUser("DUP@example.com")
	err := s.store.Create(context.Background(), other)
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestCreateCopiesInput() {
	user := newTestUser("copy@example.com")
	s.Require().NoError(s.store.Create(context.Background(), user))

	// Mutating the caller's struct must not change the stored row.
	user.Name = "Changed"

	found, err := s.store.FindByID(context.Background(), user.ID)
	s.Require().NoError(err)
	s.Equal("Jane Doe", found.Name)
}
