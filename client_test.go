package mabot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aveeuropa/mabot/tokenstore"
)

// fakeMabot mocks the full MABOT API surface used by the client.
type fakeMabot struct {
	mu             sync.Mutex
	loginCalls     int
	refreshCalls   int
	chatCalls      int
	loginStatus    int // 0 means 200
	chatStatus     int
	chatBody       string // raw chat response; "" means a text envelope with replyText
	replyText      string
	lastUpdate     UpdateIn
	lastAuthHeader string
}

func (f *fakeMabot) counts() (login, refresh, chat int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.refreshCalls, f.chatCalls
}

func (f *fakeMabot) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.loginCalls++
		status := f.loginStatus
		f.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(Token{AccessToken: "access-1", RefreshToken: "refresh-1", TokenType: "bearer"})
	})

	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.refreshCalls++
		f.mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
	})

	mux.HandleFunc("/io/input", func(w http.ResponseWriter, r *http.Request) {
		var update UpdateIn
		_ = json.NewDecoder(r.Body).Decode(&update)

		f.mu.Lock()
		f.chatCalls++
		f.lastUpdate = update
		f.lastAuthHeader = r.Header.Get("Authorization")
		status := f.chatStatus
		body := f.chatBody
		reply := f.replyText
		f.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
			return
		}
		if body != "" {
			_, _ = w.Write([]byte(body))
			return
		}
		_ = json.NewEncoder(w).Encode(UpdateOut{
			ChatID:   update.ChatID,
			Messages: []Message{NewTextMessage(RoleAssistant, reply)},
		})
	})

	mux.HandleFunc("/bot", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastAuthHeader = r.Header.Get("Authorization")
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode([]BotRead{{ID: "1", Name: "Ave Europa", Username: "aveeuropa"}})
	})

	mux.HandleFunc("/bot/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(BotRead{ID: "1", Name: "Ave Europa", Username: "aveeuropa"})
	})

	return mux
}

func newFakeMabot(t *testing.T) (*fakeMabot, *httptest.Server) {
	t.Helper()
	fake := &fakeMabot{replyText: "Hola"}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	return fake, srv
}

// authedStore returns a token store holding a currently valid record,
// so tests can skip the login round trip.
func authedStore(t *testing.T) tokenstore.Store {
	t.Helper()
	store := tokenstore.NewMemory()
	require.NoError(t, store.Save(context.Background(), &tokenstore.Record{
		AccessToken: "seeded-token",
		ExpiresAt:   time.Now().Add(time.Hour),
	}))
	return store
}

func TestSendMessageEnvelope(t *testing.T) {
	fake, srv := newFakeMabot(t)
	client, err := New(Config{APIURL: srv.URL}, WithTokenStore(authedStore(t)))
	require.NoError(t, err)

	reply, err := client.SendMessage(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hola", reply)

	update := fake.lastUpdate
	assert.Equal(t, PlatformWeb, update.Platform)
	assert.Equal(t, client.CurrentChatID(), update.ChatID)
	assert.Equal(t, update.ChatID, update.PlatformChatID)
	assert.Equal(t, DefaultBotUsername, update.BotUsername)
	assert.True(t, update.PrefixWithBotName)
	require.Len(t, update.Messages, 1)
	assert.Equal(t, RoleUser, update.Messages[0].Role)
	require.Len(t, update.Messages[0].Contents, 1)
	assert.Equal(t, ContentTypeText, update.Messages[0].Contents[0].Type)
	assert.Equal(t, "Hello", update.Messages[0].Contents[0].Value)

	assert.Equal(t, "Bearer seeded-token", fake.lastAuthHeader)
}

func TestSendMessageStripsPrefixAndFormats(t *testing.T) {
	fake, srv := newFakeMabot(t)
	fake.replyText = "*AveEuropa*: 1.uno\n2.dos ¿Seguimos?"
	client, err := New(Config{APIURL: srv.URL}, WithTokenStore(authedStore(t)))
	require.NoError(t, err)

	reply, err := client.SendMessage(context.Background(), "lista")
	require.NoError(t, err)
	assert.Equal(t, "1. uno\n2. dos ¿Seguimos?\n\n"+FollowUpPrompt, reply)
}

func TestSendMessageLoginOnceScenario(t *testing.T) {
	fake, srv := newFakeMabot(t)
	client, err := New(Config{
		APIURL:   srv.URL,
		Email:    "user@example.com",
		Password: "secret",
	})
	require.NoError(t, err)

	_, err = client.SendMessage(context.Background(), "Hello")
	require.NoError(t, err)
	_, err = client.SendMessage(context.Background(), "Follow-up")
	require.NoError(t, err)

	login, refresh, chat := fake.counts()
	assert.Equal(t, 1, login, "one login for the whole session while the token stays valid")
	assert.Zero(t, refresh)
	assert.Equal(t, 2, chat)
}

func TestSendMessageEmptyInputIsNoOp(t *testing.T) {
	fake, srv := newFakeMabot(t)
	client, err := New(Config{APIURL: srv.URL}, WithTokenStore(authedStore(t)))
	require.NoError(t, err)

	for _, input := range []string{"", "   ", "\n\t "} {
		reply, err := client.SendMessage(context.Background(), input)
		require.NoError(t, err)
		assert.Empty(t, reply)
	}

	login, refresh, chat := fake.counts()
	assert.Zero(t, login+refresh+chat, "empty input must not reach the network")
}

func TestSendMessageUnconfigured(t *testing.T) {
	client, err := New(Config{})
	require.NoError(t, err, "construction succeeds without configuration")

	_, err = client.SendMessage(context.Background(), "Hello")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendMessageAuthRequired(t *testing.T) {
	fake, srv := newFakeMabot(t)
	fake.loginStatus = http.StatusUnauthorized

	client, err := New(Config{
		APIURL:   srv.URL,
		Email:    "user@example.com",
		Password: "wrong",
	})
	require.NoError(t, err)

	_, err = client.SendMessage(context.Background(), "Hello")
	require.Error(t, err)
	assert.Equal(t, AuthRequiredMessage, err.Error())

	var authErr *AuthError
	assert.True(t, errors.As(err, &authErr))
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestSendMessageFallbackReplies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no messages", `{"chat_id":"c","messages":[]}`},
		{"empty contents", `{"chat_id":"c","messages":[{"role":"assistant","contents":[]}]}`},
		{"non-text modality only", `{"chat_id":"c","messages":[{"role":"assistant","contents":[{"type":"audio","value":"blob"}]}]}`},
		{"malformed envelope", `this is not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, srv := newFakeMabot(t)
			fake.chatBody = tt.body
			client, err := New(Config{APIURL: srv.URL}, WithTokenStore(authedStore(t)))
			require.NoError(t, err)

			reply, err := client.SendMessage(context.Background(), "Hello")
			require.NoError(t, err, "protocol-shaped failures must not surface as errors")
			assert.Equal(t, FallbackReply, reply)
		})
	}
}

func TestSendMessageTransportError(t *testing.T) {
	fake, srv := newFakeMabot(t)
	fake.chatStatus = http.StatusUnprocessableEntity
	fake.chatBody = `{"detail":[{"msg":"chat_id is malformed"}]}`
	client, err := New(Config{APIURL: srv.URL}, WithTokenStore(authedStore(t)))
	require.NoError(t, err)

	_, err = client.SendMessage(context.Background(), "Hello")
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusUnprocessableEntity, transportErr.StatusCode)
	assert.Equal(t, "chat_id is malformed", transportErr.Message)
}

func TestSendMessageTransportErrorWithoutDetail(t *testing.T) {
	fake, srv := newFakeMabot(t)
	fake.chatStatus = http.StatusServiceUnavailable
	client, err := New(Config{APIURL: srv.URL}, WithTokenStore(authedStore(t)))
	require.NoError(t, err)

	_, err = client.SendMessage(context.Background(), "Hello")
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "Failed to send message: 503", transportErr.Message)
}

func TestResetChat(t *testing.T) {
	_, srv := newFakeMabot(t)
	client, err := New(Config{APIURL: srv.URL}, WithTokenStore(authedStore(t)))
	require.NoError(t, err)

	before := client.CurrentChatID()
	require.NoError(t, client.ResetChat())
	after := client.CurrentChatID()

	assert.NotEqual(t, before, after)
	assert.True(t, IsValidChatID(after))
}

func TestBotInfo(t *testing.T) {
	fake, srv := newFakeMabot(t)
	client, err := New(Config{APIURL: srv.URL}, WithTokenStore(authedStore(t)))
	require.NoError(t, err)

	bots, err := client.BotInfo(context.Background())
	require.NoError(t, err)
	require.Len(t, bots, 1)
	assert.Equal(t, "aveeuropa", bots[0].Username)
	assert.Equal(t, "Bearer seeded-token", fake.lastAuthHeader)
}

func TestBotByUsername(t *testing.T) {
	_, srv := newFakeMabot(t)
	client, err := New(Config{APIURL: srv.URL}, WithTokenStore(authedStore(t)))
	require.NoError(t, err)

	bot, err := client.BotByUsername(context.Background(), "aveeuropa")
	require.NoError(t, err)
	assert.Equal(t, "Ave Europa", bot.Name)
}
