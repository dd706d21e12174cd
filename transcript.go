package mabot

import (
	"sync"
	"time"
)

// TranscriptMessage is a single rendered conversation turn.
type TranscriptMessage struct {
	Role       string    `json:"role"` // RoleUser or RoleAssistant
	Content    string    `json:"content"`
	TokenCount int       `json:"token_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// EstimateTokens estimates the token count for a text using a
// Unicode-aware heuristic: ~4 ASCII characters per token, ~1 non-ASCII
// character (CJK, Cyrillic, emoji) per token.
func EstimateTokens(text string) int {
	weight := 0
	for _, r := range text {
		switch {
		case r <= 127:
			weight += 1
		default:
			weight += 4
		}
	}
	return (weight + 3) / 4
}

// Default transcript bounds.
const (
	defaultMaxMessages = 50
	defaultMaxTokens   = 4096
)

// Transcript is the in-memory record of one conversation as shown to
// the user, bounded by message and token limits. Oldest turns are
// dropped first; the chat id, not the transcript, is what correlates
// the thread on the backend.
type Transcript struct {
	mu          sync.Mutex
	messages    []TranscriptMessage
	maxMessages int
	maxTokens   int
}

// NewTranscript creates a transcript. Non-positive limits fall back to
// the defaults.
func NewTranscript(maxMessages, maxTokens int) *Transcript {
	if maxMessages <= 0 {
		maxMessages = defaultMaxMessages
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Transcript{maxMessages: maxMessages, maxTokens: maxTokens}
}

// Append records a conversation turn with an estimated token count and
// trims the transcript to its limits.
func (t *Transcript) Append(role, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.messages = append(t.messages, TranscriptMessage{
		Role:       role,
		Content:    content,
		TokenCount: EstimateTokens(content),
		Timestamp:  time.Now(),
	})
	t.messages = truncateMessages(t.messages, t.maxTokens, t.maxMessages)
}

// Messages returns a copy of the current transcript.
func (t *Transcript) Messages() []TranscriptMessage {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]TranscriptMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

// Clear empties the transcript, used when a conversation is reset.
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = nil
}

// truncateMessages applies the message limit first, then the token
// limit, removing oldest messages until within bounds.
func truncateMessages(messages []TranscriptMessage, tokenLimit, messageLimit int) []TranscriptMessage {
	if len(messages) == 0 {
		return messages
	}

	if len(messages) > messageLimit {
		messages = messages[len(messages)-messageLimit:]
	}

	totalTokens := 0
	for _, msg := range messages {
		totalTokens += msg.TokenCount
	}
	for totalTokens > tokenLimit && len(messages) > 0 {
		totalTokens -= messages[0].TokenCount
		messages = messages[1:]
	}

	return messages
}
