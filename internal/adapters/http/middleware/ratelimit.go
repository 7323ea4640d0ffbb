package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Limiter decides whether the client identified by key may make a request.
type Limiter interface {
	// Allow consumes one token. retryAfter is how long until the next token
	// when the request is refused.
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// LocalLimiter is an in-process token bucket per key.
type LocalLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   float64
	now     func() time.Time
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewLocalLimiter allows rate requests per second per key with bursts of up
// to burst. A goroutine drops idle buckets until stop is closed.
// PRE: rate > 0; burst >= 1
func NewLocalLimiter(rate, burst int, stop <-chan struct{}) *LocalLimiter {
	l := &LocalLimiter{
		buckets: make(map[string]*bucket),
		rate:    float64(rate),
		burst:   float64(burst),
		now:     time.Now,
	}
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				l.evictIdle(5 * time.Minute)
			}
		}
	}()
	return l
}

// Allow consumes a token for key.
// PRE: key is non-empty
// POST: at most burst requests pass in any instant; the bucket refills continuously
func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, lastSeen: now}
		l.buckets[key] = b
	}
	b.tokens = math.Min(l.burst, b.tokens+now.Sub(b.lastSeen).Seconds()*l.rate)
	b.lastSeen = now

	if b.tokens < 1 {
		wait := time.Duration((1 - b.tokens) / l.rate * float64(time.Second))
		return false, wait, nil
	}
	b.tokens--
	return true, 0, nil
}

func (l *LocalLimiter) evictIdle(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > idle {
			delete(l.buckets, key)
		}
	}
}

// RateLimit returns middleware that limits requests per client. Clients are
// keyed by member ID when known, otherwise by remote IP. Limiter errors let
// the request through.
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			allowed, retryAfter, err := limiter.Allow(r.Context(), key)
			if err != nil {
				slog.Warn("rate_limit_unavailable", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				slog.Warn("rate_limit_exceeded", "key", key)
				secs := int(math.Ceil(retryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if id, ok := MemberFromContext(r.Context()); ok {
		return "member:" + id.MemberID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
