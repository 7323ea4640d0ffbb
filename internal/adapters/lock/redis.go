package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis defaults
const (
	DefaultTTL        = 10 * time.Second
	DefaultRetryDelay = 25 * time.Millisecond
	keyPrefix         = "clubdash:lock:"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another process is never released by us.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Redis is a Locker shared by every process using the same Redis database.
// Locks expire after TTL so a crashed holder cannot block an occurrence forever.
type Redis struct {
	client     *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
}

// NewRedis creates a Redis-backed locker.
// PRE: client is connected; ttl exceeds the longest critical section
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl, retryDelay: DefaultRetryDelay}
}

// Lock polls SET NX PX until it wins or ctx ends.
// PRE: key is non-empty
// POST: the returned Unlock releases only our own token
func (r *Redis) Lock(ctx context.Context, key string) (Unlock, error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.retryDelay)
	defer ticker.Stop()
	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			return r.unlocker(redisKey, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-ticker.C:
		}
	}
}

func (r *Redis) unlocker(redisKey, token string) Unlock {
	return func() {
		// Release on a fresh context so a cancelled request still frees the key.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.client, []string{redisKey}, token).Err(); err != nil {
			slog.Error("lock_release_failed", "key", redisKey, "error", err)
		}
	}
}
