package middleware

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TestRedisLimiter_Burst runs against a live Redis when CLUB_TEST_REDIS_ADDR is set.
func TestRedisLimiter_Burst(t *testing.T) {
	addr := os.Getenv("CLUB_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CLUB_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	l := NewRedisLimiter(client, 1, 2)
	key := "test:" + uuid.NewString()
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if ok, _, err := l.Allow(ctx, key); err != nil || !ok {
			t.Fatalf("request %d: allowed=%v err=%v", i, ok, err)
		}
	}
	ok, retry, err := l.Allow(ctx, key)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok || retry <= 0 {
		t.Errorf("third request allowed=%v retry=%v, want refused with retry", ok, retry)
	}
}
