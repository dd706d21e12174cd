package mabot

// Wire types for the MABOT HTTP API. Field names and tags follow the
// service's OpenAPI schema and must not be changed without checking the
// remote contract.

// Content types accepted by the API. This client only produces text;
// the remaining modalities are part of the protocol surface and are
// passed through untouched when the backend sends them.
const (
	ContentTypeText     = "text"
	ContentTypeAudio    = "audio"
	ContentTypeImage    = "image"
	ContentTypeVideo    = "video"
	ContentTypeDocument = "document"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// PlatformWeb identifies this client to the backend.
const PlatformWeb = "web"

// Token is the pair returned by the auth endpoints.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// LoginCredentials is the form body for POST /auth/login.
type LoginCredentials struct {
	Username     string
	Password     string
	GrantType    string // defaults to "password"
	Scope        string
	ClientID     string
	ClientSecret string
}

// MessageContent is one typed part of a message.
type MessageContent struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Filename  string `json:"filename,omitempty"`
	Mimetype  string `json:"mimetype,omitempty"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// Message is a single conversation turn carried in an envelope.
type Message struct {
	Role     string           `json:"role"`
	Contents []MessageContent `json:"contents"`
}

// NewTextMessage builds a single-part text message.
func NewTextMessage(role, text string) Message {
	return Message{
		Role: role,
		Contents: []MessageContent{
			{Type: ContentTypeText, Value: text},
		},
	}
}

// UpdateIn is the outbound envelope for POST /io/input.
type UpdateIn struct {
	Platform          string    `json:"platform"`
	ChatID            string    `json:"chat_id"`
	PlatformChatID    string    `json:"platform_chat_id"`
	Messages          []Message `json:"messages"`
	BotUsername       string    `json:"bot_username"`
	PrefixWithBotName bool      `json:"prefix_with_bot_name"`
}

// UpdateOut is the inbound envelope returned by POST /io/input.
type UpdateOut struct {
	ChatID         string    `json:"chat_id"`
	PlatformChatID string    `json:"platform_chat_id,omitempty"`
	Messages       []Message `json:"messages"`
}

// ModalityRead describes one input or output modality of a bot.
type ModalityRead struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// BotRead is the bot metadata returned by GET /bot and GET /bot/{username}.
// Consumed by debug tooling only, not by the conversational path.
type BotRead struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Username         string         `json:"username"`
	Description      string         `json:"description,omitempty"`
	Instructions     string         `json:"instructions,omitempty"`
	InputModalities  []ModalityRead `json:"input_modalities"`
	OutputModalities []ModalityRead `json:"output_modalities"`
	Private          bool           `json:"private"`
}
