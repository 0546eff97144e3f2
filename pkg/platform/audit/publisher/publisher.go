// Package publisher delivers audit events to a store and any number of
// additional sinks, either synchronously or through a bounded buffer.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	audit "bitid/pkg/platform/audit"
)

// ErrBufferFull is returned when the async buffer cannot accept an event.
// Audit delivery is best-effort; domain operations never fail on it.
var ErrBufferFull = errors.New("audit buffer full")

// Store is the primary destination and the one List reads from.
type Store interface {
	Append(ctx context.Context, event audit.Event) error
	ListByUser(ctx context.Context, userID string) ([]audit.Event, error)
}

// Sink is an additional fan-out destination, e.g. the Kafka sink.
type Sink interface {
	Append(ctx context.Context, event audit.Event) error
}

type Publisher struct {
	store  Store
	sinks  []Sink
	logger *slog.Logger

	buffer chan audit.Event
	wg     sync.WaitGroup
	once   sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher into async mode with the given
// buffer size. Events that do not fit are dropped, not blocked on.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.buffer = make(chan audit.Event, size)
	}
}

// WithSink adds a fan-out destination.
func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, sink)
		}
	}
}

// WithLogger sets the logger used for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}

	return p
}

// Emit records an event. In sync mode delivery errors propagate; in async
// mode Emit only fails when the buffer is full or the context is done.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if p.buffer == nil {
		return p.deliver(ctx, event)
	}

	select {
	case p.buffer <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// List reads a user's events back from the primary store.
func (p *Publisher) List(ctx context.Context, userID string) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close drains any buffered events and stops the background worker.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		if err := p.deliver(context.Background(), event); err != nil {
			p.logger.Warn("audit delivery failed", "action", event.Action, "error", err)
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		if err := sink.Append(ctx, event); err != nil {
			// Sinks are secondary; log and keep the event in the store.
			p.logger.Warn("audit sink append failed", "action", event.Action, "error", err)
		}
	}
	return nil
}
