package mabot

import (
	"math/rand"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// chatIDPattern is the UUID v4 shape every chat id must satisfy before
// it is used in an outbound request: version nibble 4, variant nibble
// in {8,9,a,b}.
var chatIDPattern = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// maxChatIDAttempts bounds regeneration when a generated id fails
// validation.
const maxChatIDAttempts = 3

// IsValidChatID reports whether id matches the UUID v4 pattern.
func IsValidChatID(id string) bool {
	return chatIDPattern.MatchString(id)
}

// ChatSession holds the identifier that correlates all messages of one
// conversation thread. The id is replaced, never mutated in place.
type ChatSession struct {
	mu    sync.Mutex
	id    string
	newID func() string
}

// NewChatSession creates a session with a freshly generated chat id.
func NewChatSession() (*ChatSession, error) {
	s := &ChatSession{newID: randomChatID}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the active chat id. Never empty after construction.
func (s *ChatSession) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Reset discards the current id and generates a new one, starting a
// logically new conversation thread. Generation is retried up to
// maxChatIDAttempts before failing with ErrChatIDGeneration; the
// previous id stays in place on failure.
func (s *ChatSession) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for attempt := 0; attempt < maxChatIDAttempts; attempt++ {
		id := s.newID()
		if IsValidChatID(id) {
			s.id = id
			return nil
		}
	}
	return ErrChatIDGeneration
}

// randomChatID generates a UUID v4, preferring the crypto-strong
// source and falling back to a pseudo-random substitution that fixes
// the version and variant nibbles.
func randomChatID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	return fallbackChatID()
}

// fallbackChatID fills the v4 template one nibble at a time: 'x' is a
// random hex digit, 'y' is constrained to {8,9,a,b}.
func fallbackChatID() string {
	const template = "xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx"
	const hex = "0123456789abcdef"
	var b strings.Builder
	b.Grow(len(template))
	for _, c := range template {
		switch c {
		case 'x':
			b.WriteByte(hex[rand.Intn(16)])
		case 'y':
			b.WriteByte(hex[rand.Intn(4)|8])
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
