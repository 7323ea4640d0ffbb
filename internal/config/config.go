// Package config reads process configuration from the environment, after
// loading a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvProduction is the CLUB_ENV value for production deployments.
const EnvProduction = "production"

// ErrMissingCSRFKey is returned in production when CLUB_CSRF_KEY is unset.
var ErrMissingCSRFKey = errors.New("CLUB_CSRF_KEY must be set in production")

// Config holds every runtime setting.
type Config struct {
	Env    string
	Addr   string
	DBPath string

	// CSRFKey signs form tokens; 32 bytes.
	CSRFKey []byte

	ResendKey  string
	ResendFrom string
	ReplyTo    string

	// Redis backs the shared booking lock and the rate limiter. Empty RedisAddr
	// means in-process locks.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockTTL       time.Duration
	LockWait      time.Duration // longest a request queues for a class lock

	// RabbitMQURL empty means booking events are logged and dropped.
	RabbitMQURL string
	EventsQueue string

	OutboxInterval time.Duration
	OutboxBatch    int

	// RateLimit is requests per second per client.
	RateLimit int
	RateBurst int

	SeedDemoData bool
}

// IsProduction reports whether CLUB_ENV is production.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads .env (if present) and the environment.
// POST: returns a config with defaults filled in, or an error for settings
// that cannot be defaulted
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("dotenv_not_loaded", "error", err)
	}
	return FromEnv()
}

// FromEnv reads the environment without touching .env.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:            envStr("CLUB_ENV", "development"),
		Addr:           envStr("CLUB_ADDR", ":8080"),
		DBPath:         envStr("CLUB_DB_PATH", "clubdash.db"),
		ResendKey:      os.Getenv("CLUB_RESEND_KEY"),
		ResendFrom:     envStr("CLUB_RESEND_FROM", "Club Dashboard <noreply@clubdash.local>"),
		ReplyTo:        envStr("CLUB_REPLY_TO", ""),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        envInt("REDIS_DB", 0),
		LockTTL:        envDur("CLUB_LOCK_TTL", 10*time.Second),
		LockWait:       envDur("CLUB_LOCK_WAIT", 5*time.Second),
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		EventsQueue:    envStr("CLUB_EVENTS_QUEUE", "club.bookings"),
		OutboxInterval: envDur("CLUB_OUTBOX_INTERVAL", 30*time.Second),
		OutboxBatch:    envInt("CLUB_OUTBOX_BATCH", 50),
		RateLimit:      envInt("CLUB_RATE_LIMIT", 20),
		RateBurst:      envInt("CLUB_RATE_BURST", 40),
	}
	cfg.SeedDemoData = envBool("CLUB_SEED_DEMO", !cfg.IsProduction())

	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); cfg.RedisAddr == "" && host != "" && port != "" {
		cfg.RedisAddr = host + ":" + port
	}

	key := os.Getenv("CLUB_CSRF_KEY")
	switch {
	case key != "" && len(key) != 32:
		return Config{}, fmt.Errorf("CLUB_CSRF_KEY must be 32 bytes, got %d", len(key))
	case key != "":
		cfg.CSRFKey = []byte(key)
	case cfg.IsProduction():
		return Config{}, ErrMissingCSRFKey
	default:
		cfg.CSRFKey = []byte("clubdash-dev-csrf-key-32-bytes!!")
	}

	if cfg.RateLimit < 1 {
		cfg.RateLimit = 1
	}
	if cfg.RateBurst < cfg.RateLimit {
		cfg.RateBurst = cfg.RateLimit
	}
	if cfg.OutboxBatch < 1 {
		cfg.OutboxBatch = 1
	}
	return cfg, nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config_invalid_int", "key", key, "value", v)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config_invalid_bool", "key", key, "value", v)
		return def
	}
	return b
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("config_invalid_duration", "key", key, "value", v)
		return def
	}
	return d
}
