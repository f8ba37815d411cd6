package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Limiter = (*RedisRateLimiter)(nil)
	_ Limiter = (*MemoryRateLimiter)(nil)
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	opts, err := redis.ParseURL("redis://localhost:6379/15")
	require.NoError(t, err)

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skip("Redis not available for testing")
	}

	client.FlushDB(context.Background())
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisRateLimiter(t *testing.T) {
	limiter := NewRedisRateLimiter(setupTestRedis(t))
	ctx := context.Background()

	t.Run("allows requests within limit", func(t *testing.T) {
		key := "login:203.0.113.5"
		for i := 0; i < 3; i++ {
			allowed, _ := limiter.CheckLimit(ctx, key, 3, 10*time.Second)
			assert.True(t, allowed, "Request %d should be allowed", i+1)
		}

		allowed, resetAt := limiter.CheckLimit(ctx, key, 3, 10*time.Second)
		assert.False(t, allowed)
		assert.True(t, resetAt.After(time.Now()))
	})

	t.Run("different keys are independent", func(t *testing.T) {
		allowed, _ := limiter.CheckLimit(ctx, "contact:a", 1, 10*time.Second)
		assert.True(t, allowed)
		allowed, _ = limiter.CheckLimit(ctx, "contact:a", 1, 10*time.Second)
		assert.False(t, allowed)

		allowed, _ = limiter.CheckLimit(ctx, "contact:b", 1, 10*time.Second)
		assert.True(t, allowed)
	})
}

func TestRedisRateLimiter_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "localhost:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	limiter := NewRedisRateLimiter(client)

	allowed, resetAt := limiter.CheckLimit(context.Background(), "login:x", 5, time.Minute)
	assert.False(t, allowed, "requests are denied while Redis is down")
	assert.True(t, resetAt.After(time.Now()))
}

func TestMemoryRateLimiter(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	limiter := NewMemoryRateLimiter()
	limiter.now = func() time.Time { return now }
	limiter.lastCleanup = now
	ctx := context.Background()

	t.Run("denies after limit within window", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			allowed, _ := limiter.CheckLimit(ctx, "login:10.0.0.1", 5, time.Minute)
			assert.True(t, allowed, "Request %d should be allowed", i+1)
		}

		allowed, resetAt := limiter.CheckLimit(ctx, "login:10.0.0.1", 5, time.Minute)
		assert.False(t, allowed)
		assert.Equal(t, now.Add(time.Minute), resetAt)
	})

	t.Run("other keys unaffected", func(t *testing.T) {
		allowed, _ := limiter.CheckLimit(ctx, "login:10.0.0.2", 5, time.Minute)
		assert.True(t, allowed)
	})

	t.Run("window resets", func(t *testing.T) {
		now = now.Add(time.Minute)
		allowed, _ := limiter.CheckLimit(ctx, "login:10.0.0.1", 5, time.Minute)
		assert.True(t, allowed)
	})

	t.Run("cleanup drops stale windows", func(t *testing.T) {
		now = now.Add(memoryCleanupPeriod)
		limiter.CheckLimit(ctx, "login:10.0.0.3", 5, time.Minute)

		limiter.mu.Lock()
		defer limiter.mu.Unlock()
		assert.NotContains(t, limiter.windows, "login:10.0.0.1")
		assert.Contains(t, limiter.windows, "login:10.0.0.3")
	})
}
