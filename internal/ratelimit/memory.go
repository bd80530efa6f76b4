package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryLimiter is a single-node token-bucket limiter with one bucket per
// (identifier, endpoint) pair and periodic cleanup of idle buckets. Suitable
// for development and single-instance deployments; multi-instance
// deployments should use RedisLimiter so counts are shared.
type MemoryLimiter struct {
	mu           sync.Mutex
	entries      map[string]*memoryEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type memoryEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// MemoryOption configures a MemoryLimiter.
type MemoryOption func(*MemoryLimiter)

// WithIdleTTL sets how long an unused bucket survives before cleanup.
func WithIdleTTL(d time.Duration) MemoryOption {
	return func(l *MemoryLimiter) { l.idleTTL = d }
}

// WithCleanupEvery sets the janitor interval.
func WithCleanupEvery(d time.Duration) MemoryOption {
	return func(l *MemoryLimiter) { l.cleanupEvery = d }
}

// NewMemoryLimiter creates a limiter refilling at rps with the given burst.
func NewMemoryLimiter(rps float64, burst int, opts ...MemoryOption) *MemoryLimiter {
	l := &MemoryLimiter{
		entries:      make(map[string]*memoryEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsWithinLimit reports whether the bucket holds at least one token. It does
// not consume; Record does.
func (l *MemoryLimiter) IsWithinLimit(_ context.Context, identifier, endpoint string) bool {
	return l.get(identifier+":"+endpoint).Tokens() >= 1
}

// Record consumes one token.
func (l *MemoryLimiter) Record(_ context.Context, identifier, endpoint string) error {
	l.get(identifier + ":" + endpoint).Allow()
	return nil
}

// Remaining returns the whole tokens left in the bucket.
func (l *MemoryLimiter) Remaining(_ context.Context, identifier, endpoint string) int {
	tokens := l.get(identifier + ":" + endpoint).Tokens()
	if tokens < 0 {
		return 0
	}
	return int(tokens)
}

func (l *MemoryLimiter) get(key string) *rate.Limiter {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if ent, ok := l.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(l.rps, l.burst)
	l.entries[key] = &memoryEntry{lim: lim, lastSeen: now}
	return lim
}

// Cleanup drops buckets idle for longer than the TTL.
func (l *MemoryLimiter) Cleanup() {
	cutoff := time.Now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, ent := range l.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}

// StartJanitor cleans idle buckets until the context is cancelled.
func (l *MemoryLimiter) StartJanitor(ctx context.Context) {
	if l.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(l.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}
