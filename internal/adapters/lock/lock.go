// Package lock serialises writers per key. The booking orchestrators take one
// lock per class occurrence around the capacity check and waitlist promotion.
package lock

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"clubdash/internal/adapters/http/perf"
)

// ErrLockTimeout is returned when the lock could not be acquired before the
// context ended.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// Unlock releases a held lock. It is safe to call once.
type Unlock func()

// Locker acquires exclusive locks by key.
type Locker interface {
	// Lock blocks until key is held or ctx is done.
	// POST: on success the caller must call the returned Unlock exactly once
	Lock(ctx context.Context, key string) (Unlock, error)
}

// DefaultSlowWaitMs is the wait above which lock acquisition is logged at WARN.
const DefaultSlowWaitMs = 100

// DefaultMaxWait bounds how long a caller queues for a held key.
const DefaultMaxWait = 5 * time.Second

// Timed wraps a Locker, bounds each wait and records how long callers waited.
type Timed struct {
	inner     Locker
	collector *perf.Collector
	slowMs    float64
	maxWait   time.Duration
}

// NewTimed wraps inner with wait-time instrumentation. collector may be nil.
// A non-positive maxWait means DefaultMaxWait.
func NewTimed(inner Locker, collector *perf.Collector, maxWait time.Duration) *Timed {
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	return &Timed{inner: inner, collector: collector, slowMs: DefaultSlowWaitMs, maxWait: maxWait}
}

// Lock acquires key through the wrapped Locker and records the wait.
// POST: returns ErrLockTimeout once maxWait passes, even if ctx has no deadline
func (t *Timed) Lock(ctx context.Context, key string) (Unlock, error) {
	waitCtx, cancel := context.WithTimeout(ctx, t.maxWait)
	defer cancel()

	start := time.Now()
	unlock, err := t.inner.Lock(waitCtx, key)
	waitMs := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		slog.Warn("lock_failed", "key", key, "wait_ms", waitMs, "error", err)
	} else if waitMs >= t.slowMs {
		slog.Warn("slow_lock_wait", "key", key, "wait_ms", waitMs)
	}
	if t.collector != nil {
		t.collector.Record(perf.Entry{Kind: perf.KindLock, Path: "lock", DurationMs: waitMs, Timestamp: start})
	}
	return unlock, err
}
