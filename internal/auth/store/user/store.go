// Package user persists registered accounts.
//
// The store returns sentinel errors (pkg/platform/sentinel); the auth
// service translates them into coded domain errors.
package user

import (
	"context"

	"olhopix/internal/auth/models"
	id "olhopix/pkg/domain"
)

// Store is interface-driven to keep the auth service testable and to allow
// swapping the in-memory and postgres implementations without rewiring
// business code.
type Store interface {
	// Create inserts a new user. Returns sentinel.ErrConflict when the
	// email is already registered.
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	// FindByEmail returns sentinel.ErrNotFound for unknown emails.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
