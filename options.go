package mabot

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aveeuropa/mabot/tokenstore"
)

// defaultTimeout bounds every network call so an abandoned request
// cannot hold a caller forever.
const defaultTimeout = 30 * time.Second

// Option is a functional option for configuring the client.
type Option func(*settings)

// settings holds the injectable collaborators shared by the auth and
// chat clients.
type settings struct {
	httpc *http.Client
	store tokenstore.Store
	log   *slog.Logger
	now   func() time.Time
}

func newSettings(opts ...Option) *settings {
	s := &settings{
		httpc: &http.Client{Timeout: defaultTimeout},
		store: tokenstore.NewMemory(),
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithHTTPClient sets the HTTP client used for every call.
func WithHTTPClient(httpc *http.Client) Option {
	return func(s *settings) {
		s.httpc = httpc
	}
}

// WithTokenStore sets the token persistence backend. Defaults to the
// in-memory store.
func WithTokenStore(store tokenstore.Store) Option {
	return func(s *settings) {
		s.store = store
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *settings) {
		s.log = log
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}
