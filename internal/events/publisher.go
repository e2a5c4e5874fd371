package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Publisher delivers domain events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Handler consumes events delivered by the in-process fan-out publisher.
type Handler func(ctx context.Context, event Event)

// NopPublisher drops all events.
type NopPublisher struct{}

// Publish discards the event.
func (NopPublisher) Publish(_ context.Context, _ Event) error {
	return nil
}

// FanoutPublisher delivers events synchronously to in-process handlers.
// Used for the notification listener and the websocket hub.
type FanoutPublisher struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   zerolog.Logger
}

// NewFanoutPublisher creates an in-process publisher.
func NewFanoutPublisher(logger zerolog.Logger) *FanoutPublisher {
	return &FanoutPublisher{logger: logger}
}

// Subscribe registers a handler for all future events.
func (p *FanoutPublisher) Subscribe(h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, h)
}

// Publish delivers the event to every subscribed handler in order.
func (p *FanoutPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.RLock()
	handlers := make([]Handler, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, event)
	}
	return nil
}

// MultiPublisher fans an event out to several publishers. Failures are
// logged but do not stop delivery to the remaining publishers; the first
// error is returned.
type MultiPublisher struct {
	publishers []Publisher
	logger     zerolog.Logger
}

// NewMultiPublisher combines publishers into one.
func NewMultiPublisher(logger zerolog.Logger, publishers ...Publisher) *MultiPublisher {
	return &MultiPublisher{publishers: publishers, logger: logger}
}

// Publish delivers the event to every wrapped publisher.
func (p *MultiPublisher) Publish(ctx context.Context, event Event) error {
	var firstErr error
	for _, pub := range p.publishers {
		if err := pub.Publish(ctx, event); err != nil {
			p.logger.Error().Err(err).
				Str("event_id", event.ID).
				Str("event_type", string(event.Type)).
				Msg("event publish failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
