package page

import (
	"context"
	"fmt"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/openfin/accounts-api/internal/token"
)

// KeyService validates and mints the opaque pagination keys carried in
// navigation links. An expired or unknown key is not an error anywhere in
// the pipeline: callers fall back to first-page link semantics.
type KeyService interface {
	IsValid(ctx context.Context, key string) bool
	Generate(ctx context.Context) (string, error)
}

// RedisKeyService stores pagination keys in Redis with a TTL, so a key
// expires on its own once the operational window for walking a query closes.
type RedisKeyService struct {
	client *goredis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisKeyService creates a key service with the given key lifetime.
func NewRedisKeyService(client *goredis.Client, ttl time.Duration) *RedisKeyService {
	return &RedisKeyService{client: client, ttl: ttl, prefix: "pagination:key:"}
}

// IsValid reports whether the key exists and has not expired. Redis errors
// are treated as a miss; the caller degrades to first-page semantics.
func (s *RedisKeyService) IsValid(ctx context.Context, key string) bool {
	if key == "" {
		return false
	}
	n, err := s.client.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		log.Printf("pagination key lookup failed for %s: %v", key, err)
		return false
	}
	return n > 0
}

// Generate mints a fresh opaque key and registers it with the configured TTL.
func (s *RedisKeyService) Generate(ctx context.Context) (string, error) {
	key := token.New("pk")
	if err := s.client.Set(ctx, s.prefix+key, 1, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to register pagination key: %w", err)
	}
	return key, nil
}
