package models

import "strings"

// RegisterInput carries the fields needed to create an account. Transport
// DTO validation happens at the handler; the service re-checks only what it
// depends on.
type RegisterInput struct {
	Email    string
	Name     string
	TaxID    string
	Phone    string
	Password string
}

// Normalize trims whitespace and lowercases the email so lookups and the
// unique index behave consistently.
func (in *RegisterInput) Normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.TaxID = strings.TrimSpace(in.TaxID)
	in.Phone = strings.TrimSpace(in.Phone)
}

// LoginResult is the outcome of a successful authentication.
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
}
