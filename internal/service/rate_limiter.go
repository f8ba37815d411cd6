package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// rateLimitScript is a Lua script for sliding window rate limiting
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

local windowStart = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)

if count >= limit then
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local resetAt = 0
    if #oldest >= 2 then
        resetAt = tonumber(oldest[2]) + window
    else
        resetAt = now + window
    end
    return {0, resetAt}
end

redis.call('ZADD', key, now, now .. '-' .. math.random())
redis.call('EXPIRE', key, window + 10)

local resetAt = now + window
return {1, resetAt}
`)

// Limiter decides whether one more request under key fits in the window.
type Limiter interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, resetAt time.Time)
}

// RedisRateLimiter is a sliding window limiter shared by every server
// instance pointing at the same Redis.
type RedisRateLimiter struct {
	client *redis.Client
}

func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{client: client}
}

// CheckLimit denies the request when Redis cannot be reached.
func (rl *RedisRateLimiter) CheckLimit(
	ctx context.Context,
	key string,
	limit int,
	window time.Duration,
) (allowed bool, resetAt time.Time) {
	now := time.Now().Unix()
	fullKey := fmt.Sprintf("ratelimit:%s", key)

	result, err := rateLimitScript.Run(
		ctx,
		rl.client,
		[]string{fullKey},
		now,
		int64(window.Seconds()),
		limit,
	).Int64Slice()

	if err != nil {
		log.Warn().
			Err(err).
			Str("key", key).
			Msg("rate limit check failed, denying request")
		return false, time.Now().Add(window)
	}

	if len(result) != 2 {
		log.Warn().Str("key", key).Msg("unexpected rate limit result, denying request")
		return false, time.Now().Add(window)
	}

	return result[0] == 1, time.Unix(result[1], 0)
}

const memoryCleanupPeriod = 5 * time.Minute

type windowCount struct {
	count       int
	windowStart time.Time
}

// MemoryRateLimiter is a fixed window limiter kept in process memory. It is
// used when no Redis is configured.
type MemoryRateLimiter struct {
	mu          sync.Mutex
	windows     map[string]*windowCount
	lastCleanup time.Time
	now         func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		windows:     make(map[string]*windowCount),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (l *MemoryRateLimiter) CheckLimit(_ context.Context, key string, limit int, window time.Duration) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.cleanup(now, window)

	w, ok := l.windows[key]
	if !ok || now.Sub(w.windowStart) >= window {
		l.windows[key] = &windowCount{count: 1, windowStart: now}
		return true, now.Add(window)
	}

	resetAt := w.windowStart.Add(window)
	if w.count >= limit {
		return false, resetAt
	}

	w.count++
	return true, resetAt
}

func (l *MemoryRateLimiter) cleanup(now time.Time, window time.Duration) {
	if now.Sub(l.lastCleanup) < memoryCleanupPeriod {
		return
	}
	l.lastCleanup = now

	for key, w := range l.windows {
		if now.Sub(w.windowStart) >= window {
			delete(l.windows, key)
		}
	}
}
