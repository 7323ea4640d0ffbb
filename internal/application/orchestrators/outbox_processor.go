package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"clubdash/internal/adapters/email"
	"clubdash/internal/adapters/events"
	"clubdash/internal/domain/booking"
	"clubdash/internal/domain/outbox"
)

// OutboxStore loads due entries and saves their outcome.
type OutboxStore interface {
	Save(ctx context.Context, e outbox.Entry) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]outbox.Entry, error)
}

// Executor delivers one kind of outbox entry.
type Executor interface {
	Execute(ctx context.Context, e outbox.Entry) error
}

// OutboxProcessor delivers committed side effects at least once, retrying
// failures with exponential backoff until an entry runs out of attempts.
type OutboxProcessor struct {
	store     OutboxStore
	executors map[string]Executor
	now       func() time.Time
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
}

// NewOutboxProcessor creates a processor with one executor per entry kind.
func NewOutboxProcessor(store OutboxStore, executors map[string]Executor, now func() time.Time, batchSize int) *OutboxProcessor {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		now:       now,
		baseDelay: 30 * time.Second,
		maxDelay:  time.Hour,
		batchSize: batchSize,
	}
}

// OutboxRunStats summarises one processing pass.
type OutboxRunStats struct {
	Sent   int
	Failed int
	Dead   int
}

// ProcessDue attempts every due entry once.
// POST: each attempted entry is saved as sent, retry or dead
func (p *OutboxProcessor) ProcessDue(ctx context.Context) (OutboxRunStats, error) {
	var stats OutboxRunStats
	entries, err := p.store.ListDue(ctx, p.now(), p.batchSize)
	if err != nil {
		return stats, fmt.Errorf("list due outbox entries: %w", err)
	}

	for _, e := range entries {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		err := p.deliver(ctx, e)
		if err == nil {
			e.MarkSent()
			stats.Sent++
			slog.Debug("outbox_delivered", "entry_id", e.ID, "kind", e.Kind, "attempt", e.Attempts)
		} else {
			e.MarkFailed(err, p.now(), p.baseDelay, p.maxDelay)
			if e.Status == outbox.StatusDead {
				stats.Dead++
				slog.Error("outbox_entry_dead", "entry_id", e.ID, "kind", e.Kind, "attempts", e.Attempts, "error", err)
			} else {
				stats.Failed++
				slog.Warn("outbox_delivery_failed", "entry_id", e.ID, "kind", e.Kind, "attempt", e.Attempts, "next_attempt", e.NextAttempt, "error", err)
			}
		}
		if err := p.store.Save(ctx, e); err != nil {
			slog.Error("outbox_save_failed", "entry_id", e.ID, "error", err)
		}
	}

	if len(entries) > 0 {
		slog.Info("outbox_pass_complete", "due", len(entries), "sent", stats.Sent, "failed", stats.Failed, "dead", stats.Dead)
	}
	return stats, nil
}

func (p *OutboxProcessor) deliver(ctx context.Context, e outbox.Entry) error {
	exec, ok := p.executors[e.Kind]
	if !ok {
		return fmt.Errorf("no executor for outbox kind %q", e.Kind)
	}
	return exec.Execute(ctx, e)
}

// EmailExecutor sends waitlist promotion emails.
type EmailExecutor struct {
	Sender email.Sender
}

// Execute renders and sends the promotion notice in e.
func (x EmailExecutor) Execute(ctx context.Context, e outbox.Entry) error {
	var p email.Promotion
	if err := json.Unmarshal([]byte(e.Payload), &p); err != nil {
		return fmt.Errorf("decode promotion payload: %w", err)
	}
	req, err := email.PromotionEmail(p)
	if err != nil {
		return err
	}
	_, err = x.Sender.Send(ctx, req)
	return err
}

// EventExecutor publishes booking events to the broker.
type EventExecutor struct {
	Publisher events.Publisher
}

// Execute publishes the booking event in e, using the entry ID as message ID.
func (x EventExecutor) Execute(ctx context.Context, e outbox.Entry) error {
	var ev booking.Event
	if err := json.Unmarshal([]byte(e.Payload), &ev); err != nil {
		return fmt.Errorf("decode booking event: %w", err)
	}
	return x.Publisher.Publish(ctx, events.Message{ID: e.ID, Type: ev.Type, Body: []byte(e.Payload)})
}

// StartBackgroundWorker runs ProcessDue every interval until stopCh is closed.
// The returned channel is closed once the worker has exited.
func StartBackgroundWorker(processor *OutboxProcessor, interval time.Duration, stopCh <-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				if _, err := processor.ProcessDue(ctx); err != nil {
					slog.Error("outbox_background_process_failed", "error", err)
				}
				cancel()
			case <-stopCh:
				slog.Info("outbox_background_worker_stopped")
				return
			}
		}
	}()
	return done
}
