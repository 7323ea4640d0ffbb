package web

import (
	"context"
	"net/http"

	"clubdash/internal/adapters/http/middleware"
	"clubdash/internal/adapters/http/perf"
	"clubdash/internal/adapters/lock"
	attendanceStore "clubdash/internal/adapters/storage/attendance"
	bookingStore "clubdash/internal/adapters/storage/booking"
	leaderboardStore "clubdash/internal/adapters/storage/leaderboard"
	memberStore "clubdash/internal/adapters/storage/member"
	outboxStore "clubdash/internal/adapters/storage/outbox"
	scheduleStore "clubdash/internal/adapters/storage/schedule"
)

// Stores holds all storage dependencies.
type Stores struct {
	ScheduleStore    scheduleStore.Store
	BookingStore     bookingStore.Store
	AttendanceStore  attendanceStore.Store
	MemberStore      memberStore.Store
	LeaderboardStore leaderboardStore.Store
	OutboxStore      outboxStore.Store
}

// Options configures NewMux.
type Options struct {
	Stores    *Stores
	Locker    lock.Locker
	Limiter   middleware.Limiter // nil disables rate limiting
	Collector *perf.Collector

	// CSRFKey is the 32-byte gorilla/csrf secret.
	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string

	// Ping reports database health for /healthz; nil always reports ok.
	Ping func(ctx context.Context) error
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global per-occurrence locker (set by NewMux)
var locker lock.Locker

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

var healthPing func(ctx context.Context) error

// NewMux wires HTTP handlers for the app.
func NewMux(opts Options) http.Handler {
	stores = opts.Stores
	locker = opts.Locker
	perfCollector = opts.Collector
	healthPing = opts.Ping

	mux := http.NewServeMux()
	registerRoutes(mux)

	// Applied inner to outer: Timing -> Identify -> RateLimit -> CSRF -> SecurityHeaders -> Mux
	chain := []func(http.Handler) http.Handler{
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.SecureCookies, opts.TrustedOrigins),
	}
	if opts.Limiter != nil {
		chain = append(chain, middleware.RateLimit(opts.Limiter))
	}
	chain = append(chain, middleware.Identify, middleware.Timing(opts.Collector))
	return middleware.Chain(mux, chain...)
}
