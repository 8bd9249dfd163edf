package audit

import (
	"context"

	id "olhopix/pkg/domain"
)

// Store persists audit events. Implementations: in-memory (tests, dev) and
// the postgres transactional outbox (production, relayed to Kafka).
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
