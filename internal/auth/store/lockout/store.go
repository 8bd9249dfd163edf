// Package lockout tracks failed login attempts per account within a
// sliding window. Stores are pure counters; the auth service decides
// when a count means the account is locked.
package lockout

import (
	"context"
	"time"
)

type Store interface {
	// RecordFailure increments the failure counter for the identifier and
	// returns the new count. The counter expires window after the first
	// failure in the current streak.
	RecordFailure(ctx context.Context, identifier string, window time.Duration) (int, error)
	// Failures returns the current failure count, zero when none recorded.
	Failures(ctx context.Context, identifier string) (int, error)
	// Clear removes the counter, typically after a successful login.
	Clear(ctx context.Context, identifier string) error
}
