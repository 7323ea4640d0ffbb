package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "clubdash/internal/adapters/email"
	"clubdash/internal/adapters/events"
	web "clubdash/internal/adapters/http"
	"clubdash/internal/adapters/http/middleware"
	"clubdash/internal/adapters/http/perf"
	"clubdash/internal/adapters/lock"
	"clubdash/internal/adapters/storage"
	attendanceStore "clubdash/internal/adapters/storage/attendance"
	bookingStore "clubdash/internal/adapters/storage/booking"
	leaderboardStore "clubdash/internal/adapters/storage/leaderboard"
	memberStore "clubdash/internal/adapters/storage/member"
	outboxStorePkg "clubdash/internal/adapters/storage/outbox"
	scheduleStore "clubdash/internal/adapters/storage/schedule"
	"clubdash/internal/application/orchestrators"
	"clubdash/internal/config"
	"clubdash/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.IsProduction() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	slog.Info("database_ready", "path", cfg.DBPath, "schema", storage.LatestSchemaVersion())

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	stores := &web.Stores{
		ScheduleStore:    scheduleStore.NewSQLiteStore(timedDB),
		BookingStore:     bookingStore.NewSQLiteStore(timedDB),
		AttendanceStore:  attendanceStore.NewSQLiteStore(timedDB),
		MemberStore:      memberStore.NewSQLiteStore(timedDB),
		LeaderboardStore: leaderboardStore.NewSQLiteStore(timedDB),
		OutboxStore:      outboxStorePkg.NewSQLiteStore(timedDB),
	}

	ctx := context.Background()
	seedDeps := orchestrators.SeedDeps{Catalog: stores.ScheduleStore}
	if cfg.SeedDemoData {
		seedDeps.Members = stores.MemberStore
	}
	if err := orchestrators.ExecuteSeedCatalog(ctx, seedDeps); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}
	if err := orchestrators.ExecuteSeedMembers(ctx, seedDeps); err != nil {
		log.Fatalf("failed to seed members: %v", err)
	}

	stop := make(chan struct{})

	// Shared lock and rate limiter when Redis answers, in-process otherwise
	var (
		locker  lock.Locker
		limiter middleware.Limiter
	)
	if rdb := config.NewRedisClient(cfg); rdb != nil {
		defer rdb.Close()
		locker = lock.NewRedis(rdb, cfg.LockTTL)
		limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimit, cfg.RateBurst)
	} else {
		if cfg.IsProduction() {
			slog.Warn("redis_not_configured", "effect", "booking locks are local to this process")
		}
		locker = lock.NewLocal()
		limiter = middleware.NewLocalLimiter(cfg.RateLimit, cfg.RateBurst, stop)
	}
	locker = lock.NewTimed(locker, collector, cfg.LockWait)

	var publisher events.Publisher = events.NewNoopPublisher()
	if cfg.RabbitMQURL != "" {
		publisher = events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsQueue)
		slog.Info("event_publisher_configured", "queue", cfg.EventsQueue)
	}
	defer publisher.Close()

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.ResendFrom, cfg.ReplyTo)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_delivery_disabled", "reason", "CLUB_RESEND_KEY is not set")
		}
	}

	// Outbox worker delivers promotion emails and booking events
	processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.Executor{
		outbox.KindPromotionEmail: orchestrators.EmailExecutor{Sender: sender},
		outbox.KindBookingEvent:   orchestrators.EventExecutor{Publisher: publisher},
	}, time.Now, cfg.OutboxBatch)
	workerDone := orchestrators.StartBackgroundWorker(processor, cfg.OutboxInterval, stop)

	handler := web.NewMux(web.Options{
		Stores:        stores,
		Locker:        locker,
		Limiter:       limiter,
		Collector:     collector,
		CSRFKey:       cfg.CSRFKey,
		SecureCookies: cfg.IsProduction(),
		Ping:          timedDB.PingContext,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env)
		serveErr <- srv.ListenAndServe()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server_failed", "error", err)
		}
	case s := <-sig:
		slog.Info("shutdown_requested", "signal", s.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server_shutdown_failed", "error", err)
	}
	close(stop)
	<-workerDone
	slog.Info("server_stopped")
}
