package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to cfg.RedisAddr. It returns nil when Redis is not
// configured or does not answer a ping; callers fall back to in-process locks
// and rate limiting.
func NewRedisClient(cfg Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	slog.Info("redis_connected", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return client
}
