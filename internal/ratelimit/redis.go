package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisLimiter counts usage in fixed windows shared across instances. Each
// (identifier, endpoint) pair gets one counter key per window; INCR keeps
// counting atomic under concurrent requests.
type RedisLimiter struct {
	client *goredis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisLimiter creates a limiter allowing limit calls per window.
func NewRedisLimiter(client *goredis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit",
	}
}

// IsWithinLimit reports whether the current window's count is below the
// limit. Redis errors fail open with a log line.
func (l *RedisLimiter) IsWithinLimit(ctx context.Context, identifier, endpoint string) bool {
	count, err := l.client.Get(ctx, l.key(identifier, endpoint, time.Now())).Int64()
	if err == goredis.Nil {
		return true
	}
	if err != nil {
		log.Printf("rate limit check failed for %s %s: %v", identifier, endpoint, err)
		return true
	}
	return count < int64(l.limit)
}

// Record increments the current window's counter and refreshes its expiry.
func (l *RedisLimiter) Record(ctx context.Context, identifier, endpoint string) error {
	key := l.key(identifier, endpoint, time.Now())

	pipe := l.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record rate limit usage: %w", err)
	}
	return nil
}

// Remaining returns limit minus the current window's count, floored at zero.
func (l *RedisLimiter) Remaining(ctx context.Context, identifier, endpoint string) int {
	count, err := l.client.Get(ctx, l.key(identifier, endpoint, time.Now())).Int64()
	if err != nil && err != goredis.Nil {
		log.Printf("rate limit remaining lookup failed for %s %s: %v", identifier, endpoint, err)
		return l.limit
	}
	remaining := l.limit - int(count)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (l *RedisLimiter) key(identifier, endpoint string, at time.Time) string {
	window := at.UTC().Truncate(l.window).Unix()
	return fmt.Sprintf("%s:%s:%s:%d", l.prefix, identifier, endpoint, window)
}
