package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueue receives every booking event.
const DefaultQueue = "club.bookings"

// AMQPPublisher publishes persistent JSON messages to a durable queue on the
// default exchange. The channel runs in confirm mode and Publish returns only
// once the broker acks. The connection is opened lazily and reopened after a
// failure, so a broker restart costs one failed publish that the outbox retries.
type AMQPPublisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher creates a publisher for url. No connection is made until
// the first Publish.
// PRE: url is an amqp:// URL
func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &AMQPPublisher{url: url, queue: queue}
}

// ErrNotConfirmed is returned when the broker nacks a publish.
var ErrNotConfirmed = errors.New("broker did not confirm publish")

// confirmation is the part of *amqp.DeferredConfirmation Publish waits on.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// awaitConfirm blocks until the broker acks or nacks the publish.
func awaitConfirm(ctx context.Context, conf confirmation) error {
	acked, err := conf.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await confirm: %w", err)
	}
	if !acked {
		return ErrNotConfirmed
	}
	return nil
}

// Publish sends msg with the event type as the AMQP type header.
// POST: nil only after a broker ack; on error the channel is dropped and the
// next call reconnects
func (p *AMQPPublisher) Publish(ctx context.Context, msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Type:         msg.Type,
		Timestamp:    time.Now().UTC(),
		Body:         msg.Body,
	}
	conf, err := ch.PublishWithDeferredConfirmWithContext(ctx, "", p.queue, false, false, pub)
	if err == nil {
		err = awaitConfirm(ctx, conf)
	}
	if err != nil {
		slog.Warn("amqp_publish_failed", "queue", p.queue, "type", msg.Type, "error", err)
		p.reset()
		return fmt.Errorf("publish %s: %w", msg.Type, err)
	}
	slog.Debug("amqp_published", "queue", p.queue, "type", msg.Type, "id", msg.ID)
	return nil
}

// channel returns the open channel, dialling and declaring the queue if needed.
// PRE: p.mu is held
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp confirm mode: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp queue declare %s: %w", p.queue, err)
	}
	slog.Info("amqp_connected", "queue", p.queue)
	p.conn, p.ch = conn, ch
	return ch, nil
}

// reset closes whatever is open.
// PRE: p.mu is held
func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close closes the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.ch != nil {
		err = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
		p.conn = nil
	}
	return err
}
