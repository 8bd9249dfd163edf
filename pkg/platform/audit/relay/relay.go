// Package relay moves audit events from the postgres outbox to Kafka.
//
// The outbox insert happens inside the request transaction; this worker
// publishes committed rows in the background, so a Kafka outage never fails
// a user request and no committed event is lost.
package relay

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/twmb/franz-go/pkg/kgo"
)

type Relay struct {
	db       *sql.DB
	client   *kgo.Client
	topic    string
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

type Option func(*Relay)

// WithInterval overrides the poll interval (default 1s).
func WithInterval(d time.Duration) Option {
	return func(r *Relay) { r.interval = d }
}

// WithBatchSize overrides how many rows are claimed per poll (default 100).
func WithBatchSize(n int) Option {
	return func(r *Relay) { r.batch = n }
}

// New builds a relay producing to topic via the given brokers.
func New(db *sql.DB, brokers []string, topic string, logger *slog.Logger, opts ...Option) (*Relay, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Relay{
		db:       db,
		client:   client,
		topic:    topic,
		logger:   logger,
		interval: time.Second,
		batch:    100,
	}, nil
}

// Run polls the outbox until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.RelayOnce(ctx); err != nil {
				r.logger.ErrorContext(ctx, "outbox relay pass failed", "error", err)
			}
		}
	}
}

type outboxRow struct {
	id          string
	aggregateID string
	payload     []byte
}

// RelayOnce publishes one batch of unpublished outbox rows. Exported so
// tests and one-shot maintenance commands can drive the relay directly.
func (r *Relay) RelayOnce(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outbox tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// SKIP LOCKED lets multiple relay replicas share the outbox without
	// publishing the same row twice.
	rows, err := tx.QueryContext(ctx, `
		SELECT id, aggregate_id, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, r.batch)
	if err != nil {
		return fmt.Errorf("select outbox batch: %w", err)
	}

	var batch []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.aggregateID, &row.payload); err != nil {
			rows.Close()
			return fmt.Errorf("scan outbox row: %w", err)
		}
		batch = append(batch, row)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	if len(batch) == 0 {
		return tx.Commit()
	}

	records := make([]*kgo.Record, 0, len(batch))
	for _, row := range batch {
		records = append(records, &kgo.Record{
			Topic: r.topic,
			Key:   []byte(row.aggregateID),
			Value: row.payload,
		})
	}
	if err := r.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce outbox batch: %w", err)
	}

	ids := make([]string, 0, len(batch))
	for _, row := range batch {
		ids = append(ids, row.id)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE outbox SET published_at = NOW() WHERE id = ANY($1)
	`, pq.Array(ids)); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}

	r.logger.DebugContext(ctx, "relayed outbox batch", "count", len(batch))
	return tx.Commit()
}

// Close flushes and closes the Kafka producer.
func (r *Relay) Close() {
	r.client.Close()
}
