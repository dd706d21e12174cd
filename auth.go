package mabot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/aveeuropa/mabot/tokenstore"
)

// AuthClient owns the token lifecycle against the MABOT auth
// endpoints: login, refresh, and the cached-token fast path. Concurrent
// callers needing a token share a single in-flight login or refresh.
type AuthClient struct {
	baseURL string
	creds   *LoginCredentials // configured auto-login credentials, may be nil
	store   tokenstore.Store
	httpc   *http.Client
	log     *slog.Logger
	now     func() time.Time
	group   singleflight.Group
}

// NewAuthClient creates an auth client for cfg. When the configuration
// carries credentials and no valid token is stored, one auto-login is
// attempted immediately; a failure there is logged, not surfaced,
// because EnsureValidToken retries on first real use.
func NewAuthClient(cfg Config, opts ...Option) *AuthClient {
	s := newSettings(opts...)

	a := &AuthClient{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		store:   s.store,
		httpc:   s.httpc,
		log:     s.log,
		now:     s.now,
	}
	if cfg.Email != "" && cfg.Password != "" {
		a.creds = &LoginCredentials{Username: cfg.Email, Password: cfg.Password}
	}

	if a.baseURL == "" {
		a.log.Warn("mabot API URL is not configured, auth calls will fail")
		return a
	}

	if a.creds != nil && !a.IsAuthenticated(context.Background()) {
		if _, err := a.Login(context.Background(), *a.creds); err != nil {
			a.log.Warn("auto-login failed", "error", err)
		}
	}
	return a
}

// Login exchanges credentials for a token pair via POST /auth/login
// and persists the result. The grant type defaults to "password".
func (a *AuthClient) Login(ctx context.Context, creds LoginCredentials) (*Token, error) {
	if a.baseURL == "" {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)
	if creds.GrantType != "" {
		form.Set("grant_type", creds.GrantType)
	} else {
		form.Set("grant_type", "password")
	}
	if creds.Scope != "" {
		form.Set("scope", creds.Scope)
	}
	if creds.ClientID != "" {
		form.Set("client_id", creds.ClientID)
	}
	if creds.ClientSecret != "" {
		form.Set("client_secret", creds.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpc.Do(req)
	if err != nil {
		return nil, &AuthError{Message: fmt.Sprintf("Login failed: %s", err), Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := apiErrorMessage(body)
		if msg == "" {
			msg = fmt.Sprintf("Login failed: %d", resp.StatusCode)
		}
		a.log.Warn("login rejected", "status", resp.StatusCode)
		return nil, &AuthError{Message: msg}
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &AuthError{Message: fmt.Sprintf("Login failed: %s", err), Err: err}
	}

	if err := a.saveToken(ctx, &token); err != nil {
		a.log.Warn("failed to persist token", "error", err)
	}
	a.log.Debug("login succeeded")
	return &token, nil
}

// Refresh exchanges the stored refresh token for a new pair via POST
// /auth/refresh. Any failure clears the stored tokens, forcing a full
// re-login on the next attempt.
func (a *AuthClient) Refresh(ctx context.Context) (*Token, error) {
	if a.baseURL == "" {
		return nil, ErrNotConfigured
	}

	rec, err := a.store.Load(ctx)
	if err != nil || rec == nil || rec.RefreshToken == "" {
		return nil, &AuthError{Message: "No refresh token available", Err: ErrNoRefreshToken}
	}

	payload, err := json.Marshal(map[string]string{"refresh_token": rec.RefreshToken})
	if err != nil {
		return nil, fmt.Errorf("encoding refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/auth/refresh", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpc.Do(req)
	if err != nil {
		a.clear(ctx)
		return nil, &AuthError{Message: fmt.Sprintf("Token refresh failed: %s", err), Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.clear(ctx)
		msg := apiErrorMessage(body)
		if msg == "" {
			msg = fmt.Sprintf("Token refresh failed: %d", resp.StatusCode)
		}
		a.log.Warn("token refresh rejected", "status", resp.StatusCode)
		return nil, &AuthError{Message: msg}
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		a.clear(ctx)
		return nil, &AuthError{Message: fmt.Sprintf("Token refresh failed: %s", err), Err: err}
	}

	if err := a.saveToken(ctx, &token); err != nil {
		a.log.Warn("failed to persist token", "error", err)
	}
	a.log.Debug("token refreshed")
	return &token, nil
}

// AccessTokenIfValid returns the cached access token while it is still
// inside its validity window, or "" without any network call.
func (a *AuthClient) AccessTokenIfValid(ctx context.Context) string {
	rec, err := a.store.Load(ctx)
	if err != nil || !rec.Valid(a.now()) {
		return ""
	}
	return rec.AccessToken
}

// EnsureValidToken returns a usable access token, trying in order: the
// cached token, auto-login with configured credentials, and a token
// refresh. Concurrent callers share one in-flight attempt rather than
// each triggering their own login or refresh.
func (a *AuthClient) EnsureValidToken(ctx context.Context) (string, error) {
	if tok := a.AccessTokenIfValid(ctx); tok != "" {
		return tok, nil
	}

	v, err, _ := a.group.Do("token", func() (any, error) {
		// Another caller may have finished while we waited.
		if tok := a.AccessTokenIfValid(ctx); tok != "" {
			return tok, nil
		}

		if a.creds != nil {
			if _, err := a.Login(ctx, *a.creds); err != nil {
				a.log.Warn("auto-login failed", "error", err)
			} else if tok := a.AccessTokenIfValid(ctx); tok != "" {
				return tok, nil
			}
		}

		if _, err := a.Refresh(ctx); err != nil {
			a.log.Debug("token refresh unavailable", "error", err)
		} else if tok := a.AccessTokenIfValid(ctx); tok != "" {
			return tok, nil
		}

		return "", &AuthError{Message: "Authentication required", Err: ErrAuthRequired}
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Logout clears the stored tokens.
func (a *AuthClient) Logout(ctx context.Context) error {
	return a.store.Clear(ctx)
}

// IsAuthenticated reports whether a currently valid token is cached.
func (a *AuthClient) IsAuthenticated(ctx context.Context) bool {
	return a.AccessTokenIfValid(ctx) != ""
}

// saveToken persists a token pair with a client-computed expiry; the
// API does not return one.
func (a *AuthClient) saveToken(ctx context.Context, token *Token) error {
	return a.store.Save(ctx, &tokenstore.Record{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    a.now().Add(tokenstore.TokenLifetime),
	})
}

func (a *AuthClient) clear(ctx context.Context) {
	if err := a.store.Clear(ctx); err != nil {
		a.log.Warn("failed to clear token store", "error", err)
	}
}
