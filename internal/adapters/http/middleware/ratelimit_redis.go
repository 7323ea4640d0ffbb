package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills and takes one token atomically.
// Returns {allowed, tokens_left, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local ttl_seconds = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])
if tokens == nil or last_refill == nil then
  tokens = capacity
  last_refill = now_ms
end

local elapsed = math.max(0, now_ms - last_refill)
local refilled = math.floor(elapsed / interval_ms)
if refilled > 0 then
  tokens = math.min(capacity, tokens + refilled)
  last_refill = last_refill + refilled * interval_ms
end

local allowed = 0
local retry_ms = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  retry_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return {allowed, tokens, retry_ms}
`)

const rateKeyPrefix = "clubdash:rl:"

// RedisLimiter is a token bucket shared by every server instance.
type RedisLimiter struct {
	client   *redis.Client
	burst    int
	interval time.Duration // time to earn one token
	ttl      time.Duration
	now      func() time.Time
}

// NewRedisLimiter allows rate requests per second per key with bursts of up
// to burst.
// PRE: client is non-nil; rate > 0; burst >= 1
func NewRedisLimiter(client *redis.Client, rate, burst int) *RedisLimiter {
	interval := time.Second / time.Duration(rate)
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	ttl := time.Duration(burst) * interval * 5
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return &RedisLimiter{client: client, burst: burst, interval: interval, ttl: ttl, now: time.Now}
}

// Allow consumes a token for key in Redis.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	res, err := tokenBucketScript.Run(ctx, l.client, []string{rateKeyPrefix + key},
		l.now().UnixMilli(), l.burst, l.interval.Milliseconds(), int64(l.ttl/time.Second),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return false, 0, fmt.Errorf("rate limit script returned %d values", len(res))
	}
	return res[0] == 1, time.Duration(res[2]) * time.Millisecond, nil
}
