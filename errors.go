package mabot

import (
	"encoding/json"
	"errors"
)

// Common errors for the MABOT client.
var (
	ErrNotConfigured    = errors.New("mabot API URL is not configured")
	ErrAuthRequired     = errors.New("authentication required")
	ErrNoRefreshToken   = errors.New("no refresh token available")
	ErrChatIDGeneration = errors.New("could not generate a valid chat id")
)

// AuthRequiredMessage is the exact string surfaced to the conversation
// when neither login nor refresh can produce a token.
const AuthRequiredMessage = "Authentication required. Please login to MABOT first."

// AuthError reports a rejected login or refresh, or the absence of any
// credential path. The message is user-facing and shown in the chat.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// TransportError reports a failed chat-endpoint call for reasons other
// than authentication. The message carries the remote-supplied detail
// when one was present.
type TransportError struct {
	StatusCode int
	Message    string
}

func (e *TransportError) Error() string { return e.Message }

// apiErrorBody is the error shape the API returns on validation and
// auth failures: {"detail": [{"msg": "..."}]}.
type apiErrorBody struct {
	Detail []struct {
		Msg string `json:"msg"`
	} `json:"detail"`
}

// apiErrorMessage extracts the first validation detail from an error
// body, or "" when the body is empty or not the expected shape.
func apiErrorMessage(body []byte) string {
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if len(parsed.Detail) == 0 {
		return ""
	}
	return parsed.Detail[0].Msg
}
