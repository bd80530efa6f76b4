package consent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "consent:"

// RedisStore reads consent records from Redis, where the consent system
// publishes them as JSON snapshots. It implements Validator.
//
// Lookup failures are treated as "not valid": a consent we cannot see is a
// consent we must not honour.
type RedisStore struct {
	client *goredis.Client
}

// NewRedisStore creates a store backed by the given client.
func NewRedisStore(client *goredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// IsValid reports whether the consent exists, is authorised and unexpired.
func (s *RedisStore) IsValid(ctx context.Context, consentID string) bool {
	rec, ok := s.get(ctx, consentID)
	if !ok {
		return false
	}
	return rec.Valid(time.Now())
}

// HasPermission reports whether the consent carries the permission.
func (s *RedisStore) HasPermission(ctx context.Context, consentID string, p Permission) bool {
	rec, ok := s.get(ctx, consentID)
	if !ok {
		return false
	}
	return rec.Grants(p)
}

// Put stores a consent record until its expiry. Used by seeding tools and
// integration tests; production records arrive from the consent system.
func (s *RedisStore) Put(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal consent record: %w", err)
	}
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("consent %s is already expired", rec.ConsentID)
	}
	if err := s.client.Set(ctx, keyPrefix+rec.ConsentID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store consent record: %w", err)
	}
	return nil
}

func (s *RedisStore) get(ctx context.Context, consentID string) (Record, bool) {
	data, err := s.client.Get(ctx, keyPrefix+consentID).Result()
	if err == goredis.Nil {
		return Record{}, false
	}
	if err != nil {
		log.Printf("consent lookup failed for %s: %v", consentID, err)
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		log.Printf("consent record for %s is malformed: %v", consentID, err)
		return Record{}, false
	}
	return rec, true
}
