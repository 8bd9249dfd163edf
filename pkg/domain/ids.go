// Package domain defines typed identifiers shared across modules.
//
// Wrapping uuid.UUID in distinct named types makes cross-assignment a
// compile error: a ReportID can never be passed where a UserID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "olhopix/pkg/domain-errors"
)

// UserID identifies a registered user.
type UserID uuid.UUID

// ReportID identifies a submitted fraud report.
type ReportID uuid.UUID

// NewUserID returns a fresh random user ID.
func NewUserID() UserID {
	return UserID(uuid.New())
}

// NewReportID returns a fresh random report ID.
func NewReportID() ReportID {
	return ReportID(uuid.New())
}

// ParseUserID validates and parses a user ID from its string form.
// Empty, malformed, and nil UUIDs are rejected.
func ParseUserID(s string) (UserID, error) {
	u, err := parse(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseReportID validates and parses a report ID from its string form.
func ParseReportID(s string) (ReportID, error) {
	u, err := parse(s)
	if err != nil {
		return ReportID{}, err
	}
	return ReportID(u), nil
}

func parse(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero value.
func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id ReportID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero value.
func (id ReportID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
