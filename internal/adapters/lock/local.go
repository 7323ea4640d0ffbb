package lock

import (
	"context"
	"sync"
)

// Local is an in-process Locker. Each key owns a one-slot channel that is
// dropped once no goroutine holds or waits for it.
type Local struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocal creates an in-process locker.
func NewLocal() *Local {
	return &Local{slots: make(map[string]*slot)}
}

// Lock acquires key, giving up with ErrLockTimeout when ctx ends first.
// PRE: key is non-empty
// POST: at most one holder per key at any time
func (l *Local) Lock(ctx context.Context, key string) (Unlock, error) {
	s := l.acquireSlot(key)
	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.releaseSlot(key, s)
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.releaseSlot(key, s)
		})
	}, nil
}

// Keys returns the number of keys currently held or awaited.
func (l *Local) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

func (l *Local) acquireSlot(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *Local) releaseSlot(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
