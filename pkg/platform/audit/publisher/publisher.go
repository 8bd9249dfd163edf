// Package publisher decouples event emission from event persistence.
//
// In sync mode Emit appends straight to the store; with an async buffer a
// background goroutine drains the inbox so request paths never block on the
// audit sink.
package publisher

import (
	"context"
	"log/slog"
	"sync"

	id "olhopix/pkg/domain"
	"olhopix/pkg/platform/audit"
	"olhopix/pkg/requestcontext"
)

type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	inbox chan audit.Event
	done  chan struct{}
	once  sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given inbox size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithLogger sets the logger used to report sink failures in async mode.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit records one audit event. Category and timestamp are filled in from
// the action and request context when the caller leaves them zero.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	case <-p.done:
		// Publisher closed; fall back to a direct append so the event
		// is not lost during shutdown.
		return p.store.Append(ctx, event)
	}
}

// List exposes the underlying store's per-user view, mainly for tests and
// the data-export surface.
func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close stops the async drainer and flushes buffered events.
func (p *Publisher) Close() {
	p.once.Do(func() {
		close(p.done)
	})
}

func (p *Publisher) drain() {
	for {
		select {
		case event := <-p.inbox:
			p.append(event)
		case <-p.done:
			for {
				select {
				case event := <-p.inbox:
					p.append(event)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) append(event audit.Event) {
	if err := p.store.Append(context.Background(), event); err != nil {
		p.logger.Error("audit append failed",
			"action", event.Action,
			"error", err,
		)
	}
}
