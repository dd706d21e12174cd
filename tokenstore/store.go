// Package tokenstore persists the MABOT bearer-token pair so a client
// restart does not force a fresh login. It is a single-record key-value
// cache with pluggable drivers: in-memory, a local JSON file, and Redis
// for deployments that share one token across instances.
package tokenstore

import (
	"context"
	"errors"
	"time"
)

const (
	// TokenLifetime is the assumed access-token lifetime. The MABOT
	// API does not report one, so expiry is computed client-side as
	// issue time plus this constant.
	TokenLifetime = time.Hour

	// ExpirySkew is how long before the computed expiry a token is
	// already treated as expired.
	ExpirySkew = 5 * time.Minute
)

// Common errors for token store construction.
var (
	ErrInvalidConfig    = errors.New("invalid token store configuration")
	ErrInvalidStoreType = errors.New("invalid token store type")
)

// Record is the persisted token state: the pair returned by the auth
// endpoints plus the client-computed expiry.
type Record struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Valid reports whether the access token is still usable at now,
// applying the expiry skew.
func (r *Record) Valid(now time.Time) bool {
	if r == nil || r.AccessToken == "" {
		return false
	}
	return now.Before(r.ExpiresAt.Add(-ExpirySkew))
}

// Store defines the interface for token persistence.
type Store interface {
	// Save persists the record, replacing any previous one.
	Save(ctx context.Context, rec *Record) error

	// Load returns the stored record, or nil if none is stored.
	// Drivers fail soft: an unreadable or corrupt record loads as
	// nil rather than as an error, forcing a re-login instead of
	// breaking the chat flow.
	Load(ctx context.Context) (*Record, error)

	// Clear removes any stored record.
	Clear(ctx context.Context) error

	// Close closes the store and releases any resources.
	Close() error
}
