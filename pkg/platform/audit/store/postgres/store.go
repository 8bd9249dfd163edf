// Package postgres implements audit.Store using the transactional outbox
// pattern. Events land in the outbox table inside the caller's transaction
// and are relayed to Kafka by the relay worker; Kafka is the downstream
// source of truth for audit consumers.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "olhopix/pkg/domain"
	"olhopix/pkg/platform/audit"
	txcontext "olhopix/pkg/platform/tx"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// outboxPayload is the JSON structure published to Kafka. Field names match
// audit.Event so consumers can deserialize without a schema registry.
type outboxPayload struct {
	ID        string `json:"ID"`
	Category  string `json:"Category"`
	Timestamp string `json:"Timestamp"`
	UserID    string `json:"UserID,omitempty"`
	Action    string `json:"Action"`
	Subject   string `json:"Subject,omitempty"`
	Reason    string `json:"Reason,omitempty"`
	Email     string `json:"Email,omitempty"`
	RequestID string `json:"RequestID,omitempty"`
	ClientIP  string `json:"ClientIP,omitempty"`
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	// Category is always derived from the action; the eventCategories map
	// is the source of truth even when the caller set one.
	category := audit.AuditEvent(event.Action).Category()

	payload := outboxPayload{
		ID:        eventID.String(),
		Category:  string(category),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Action:    event.Action,
		Subject:   event.Subject,
		Reason:    event.Reason,
		Email:     event.Email,
		RequestID: event.RequestID,
		ClientIP:  event.ClientIP,
	}
	if !event.UserID.IsNil() {
		payload.UserID = event.UserID.String()
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	aggregateType := "audit"
	aggregateID := eventID.String()
	if !event.UserID.IsNil() {
		aggregateType = "user"
		aggregateID = event.UserID.String()
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		eventID, aggregateType, aggregateID, event.Action, payloadBytes, event.Timestamp)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// ListByUser returns the events recorded for one user, oldest first. Reads
// the outbox directly; relayed rows are kept until the retention sweep.
func (s *Store) ListByUser(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	query := `
		SELECT payload, created_at
		FROM outbox
		WHERE aggregate_type = 'user' AND aggregate_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			payloadBytes []byte
			createdAt    time.Time
		)
		if err := rows.Scan(&payloadBytes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}

		var payload outboxPayload
		if err := json.Unmarshal(payloadBytes, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal outbox payload: %w", err)
		}

		event := audit.Event{
			Category:  audit.EventCategory(payload.Category),
			Timestamp: createdAt,
			UserID:    userID,
			Action:    payload.Action,
			Subject:   payload.Subject,
			Reason:    payload.Reason,
			Email:     payload.Email,
			RequestID: payload.RequestID,
			ClientIP:  payload.ClientIP,
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
