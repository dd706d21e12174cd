package tokenstore

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// Option is a functional option for configuring a token store.
type Option func(*config)

// config holds configuration for token stores.
type config struct {
	redisClient *redis.Client
	redisTTL    time.Duration
	filePath    string
}

// WithRedisClient sets the Redis client for the Redis store.
func WithRedisClient(client *redis.Client) Option {
	return func(c *config) {
		c.redisClient = client
	}
}

// WithRedisTTL sets the TTL for the Redis token key.
func WithRedisTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.redisTTL = ttl
	}
}

// WithFilePath sets the path used by the file store.
func WithFilePath(path string) Option {
	return func(c *config) {
		c.filePath = path
	}
}
