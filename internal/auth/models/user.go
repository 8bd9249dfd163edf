package models

import (
	"time"

	id "olhopix/pkg/domain"
)

// User is a registered account that may submit and search fraud reports.
// PasswordHash is the bcrypt hash; the clear-text password never leaves the
// transport layer.
type User struct {
	ID           id.UserID
	Email        string
	Name         string
	TaxID        string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}
