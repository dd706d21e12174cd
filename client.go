// Package mabot is a client for the MABOT conversational API as used
// by the Ave Europa web front-end. It owns the bearer-token lifecycle,
// the per-conversation chat identifier, and the request/response cycle
// for sending a user message and extracting the assistant's reply.
package mabot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
)

// FallbackReply is returned when the backend answers with an envelope
// that carries no text content. The conversation keeps going instead
// of failing on a non-text modality.
const FallbackReply = "I received your message but couldn't generate a response. Please try again."

// Client orchestrates the chat exchange: it obtains a valid token from
// its AuthClient, builds the outbound envelope, calls /io/input and
// post-processes the assistant's reply.
type Client struct {
	cfg      Config
	httpc    *http.Client
	auth     *AuthClient
	session  *ChatSession
	prefixRe *regexp.Regexp
	log      *slog.Logger
}

// New creates a chat client for cfg. A missing API URL is not fatal
// here: the client constructs, reports the condition, and every send
// fails with ErrNotConfigured until the URL is set.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BotUsername == "" {
		cfg.BotUsername = DefaultBotUsername
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	s := newSettings(opts...)

	session, err := NewChatSession()
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:      cfg,
		httpc:    s.httpc,
		auth:     NewAuthClient(cfg, opts...),
		session:  session,
		prefixRe: regexp.MustCompile(`(?i)^\*` + regexp.QuoteMeta(cfg.BotUsername) + `\*:\s*`),
		log:      s.log,
	}
	if cfg.APIURL == "" {
		c.log.Warn("mabot API URL is not configured")
	}
	c.log.Debug("chat client initialized", "bot", cfg.BotUsername, "chat_id", session.Current())
	return c, nil
}

// Auth exposes the underlying auth client for status reporting and
// explicit login/logout flows.
func (c *Client) Auth() *AuthClient { return c.auth }

// Config returns the configuration the client was built with.
func (c *Client) Config() Config { return c.cfg }

// CurrentChatID returns the identifier of the active conversation.
func (c *Client) CurrentChatID() string { return c.session.Current() }

// ResetChat starts a new conversation thread under a fresh chat id.
func (c *Client) ResetChat() error { return c.session.Reset() }

// SendMessage sends one user text message and returns the assistant's
// reply, formatted for rendering.
//
// Empty or whitespace-only text is a no-op and returns ("", nil).
// Auth failures surface as an *AuthError with AuthRequiredMessage;
// other failures as a *TransportError carrying the remote-supplied
// detail when one was present. A reply without text content degrades
// to FallbackReply rather than an error.
func (c *Client) SendMessage(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if c.cfg.APIURL == "" {
		return "", ErrNotConfigured
	}

	token, err := c.auth.EnsureValidToken(ctx)
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return "", &AuthError{Message: AuthRequiredMessage, Err: err}
		}
		return "", err
	}

	update := UpdateIn{
		Platform:          PlatformWeb,
		ChatID:            c.session.Current(),
		PlatformChatID:    c.session.Current(),
		Messages:          []Message{NewTextMessage(RoleUser, text)},
		BotUsername:       c.cfg.BotUsername,
		PrefixWithBotName: true,
	}

	payload, err := json.Marshal(update)
	if err != nil {
		return "", &TransportError{Message: fmt.Sprintf("Failed to send message: %s", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+"/io/input", bytes.NewReader(payload))
	if err != nil {
		return "", &TransportError{Message: fmt.Sprintf("Failed to send message: %s", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	c.log.Debug("sending message", "chat_id", update.ChatID)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", &TransportError{Message: fmt.Sprintf("Failed to send message: %s", err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := apiErrorMessage(body)
		if msg == "" {
			msg = fmt.Sprintf("Failed to send message: %d", resp.StatusCode)
		}
		c.log.Warn("chat endpoint rejected message", "status", resp.StatusCode)
		return "", &TransportError{StatusCode: resp.StatusCode, Message: msg}
	}

	var out UpdateOut
	if err := json.Unmarshal(body, &out); err != nil {
		// A malformed envelope degrades to the fallback reply so the
		// conversation stays usable.
		c.log.Warn("unparseable response envelope", "error", err)
		return FallbackReply, nil
	}

	reply, ok := firstTextContent(out.Messages)
	if !ok {
		c.log.Warn("no text content in bot response")
		return FallbackReply, nil
	}

	reply = c.prefixRe.ReplaceAllString(reply, "")
	return FormatBotResponse(reply), nil
}

// BotInfo returns the bots visible to the authenticated account.
// Debug surface; GET /bot.
func (c *Client) BotInfo(ctx context.Context) ([]BotRead, error) {
	var bots []BotRead
	if err := c.getJSON(ctx, "/bot", &bots); err != nil {
		return nil, err
	}
	return bots, nil
}

// BotByUsername returns the metadata of one bot. Debug surface;
// GET /bot/{username}.
func (c *Client) BotByUsername(ctx context.Context, username string) (*BotRead, error) {
	var bot BotRead
	if err := c.getJSON(ctx, "/bot/"+username, &bot); err != nil {
		return nil, err
	}
	return &bot, nil
}

// getJSON performs an authenticated GET against the API and decodes
// the response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if c.cfg.APIURL == "" {
		return ErrNotConfigured
	}

	token, err := c.auth.EnsureValidToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := apiErrorMessage(body)
		if msg == "" {
			msg = fmt.Sprintf("request to %s failed: %d", path, resp.StatusCode)
		}
		return &TransportError{StatusCode: resp.StatusCode, Message: msg}
	}

	return json.Unmarshal(body, out)
}

// firstTextContent finds the first text part of the first message, the
// only part of the inbound envelope the conversational path reads.
func firstTextContent(messages []Message) (string, bool) {
	if len(messages) == 0 {
		return "", false
	}
	for _, content := range messages[0].Contents {
		if content.Type == ContentTypeText {
			return content.Value, true
		}
	}
	return "", false
}
