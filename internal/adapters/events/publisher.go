// Package events delivers booking events to the message broker.
package events

import (
	"context"
	"log/slog"
)

// Message is one event ready for the broker.
type Message struct {
	ID   string // outbox entry ID, used as the AMQP message ID for consumer dedupe
	Type string // e.g. booking.confirmed
	Body []byte // JSON
}

// Publisher sends messages to subscribers.
type Publisher interface {
	// Publish delivers msg or returns an error the caller may retry.
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// NoopPublisher logs messages and drops them. Used when no broker is configured.
type NoopPublisher struct{}

// NewNoopPublisher creates a publisher that drops messages.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// Publish logs msg.
func (NoopPublisher) Publish(_ context.Context, msg Message) error {
	slog.Debug("noop_event_publish", "id", msg.ID, "type", msg.Type, "bytes", len(msg.Body))
	return nil
}

// Close does nothing.
func (NoopPublisher) Close() error { return nil }
