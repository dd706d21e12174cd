package tokenstore

import (
	"os"
	"path/filepath"
	"time"
)

// StoreType represents the type of token store.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeFile   StoreType = "file"
	StoreTypeRedis  StoreType = "redis"
)

// defaultRedisTTL outlives the access token by a wide margin so the
// refresh token stays available between runs.
const defaultRedisTTL = 7 * 24 * time.Hour

// New creates a Store of the given type.
// The file store defaults to DefaultFilePath when WithFilePath is not
// given; the Redis store requires WithRedisClient.
func New(storeType StoreType, opts ...Option) (Store, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case StoreTypeMemory:
		return NewMemory(), nil

	case StoreTypeFile:
		path := cfg.filePath
		if path == "" {
			path = DefaultFilePath()
		}
		return NewFile(path), nil

	case StoreTypeRedis:
		if cfg.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		ttl := cfg.redisTTL
		if ttl <= 0 {
			ttl = defaultRedisTTL
		}
		return NewRedis(cfg.redisClient, ttl), nil

	default:
		return nil, ErrInvalidStoreType
	}
}

// DefaultFilePath is the token cache location used when none is
// configured: the user cache directory, or the working directory when
// the platform reports none.
func DefaultFilePath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "mabot", "tokens.json")
	}
	return ".mabot_tokens.json"
}
