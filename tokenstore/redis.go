package tokenstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key under which the token record is stored.
const tokenKey = "mabot:token"

// redisStore implements Store on Redis, for deployments where several
// web instances share one MABOT account and must not race each other
// into separate login sessions.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed token store.
func NewRedis(client *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &redisStore{client: client, ttl: ttl}
}

// Save implements Store.
func (s *redisStore) Save(ctx context.Context, rec *Record) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, tokenKey, val, s.ttl).Err()
}

// Load implements Store. A corrupt record loads as nil rather than as
// an error, matching the other drivers.
func (s *redisStore) Load(ctx context.Context) (*Record, error) {
	val, err := s.client.Get(ctx, tokenKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, nil
	}
	return &rec, nil
}

// Clear implements Store.
func (s *redisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, tokenKey).Err()
}

// Close implements Store.
func (s *redisStore) Close() error {
	return s.client.Close()
}
