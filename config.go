package mabot

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultBotUsername is the bot the Ave Europa front-end talks to.
const DefaultBotUsername = "aveeuropa"

// Config is the full configuration surface of the client, loaded once
// at startup. APIURL, Email and Password have no defaults; the system
// stays up and reports the unconfigured condition when they are unset.
type Config struct {
	APIURL      string
	BotUsername string
	Email       string
	Password    string
}

// LoadConfig reads the MABOT_* environment variables, loading
// .env.local and .env first when present. Both files are optional.
func LoadConfig() Config {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	return Config{
		APIURL:      strings.TrimRight(os.Getenv("MABOT_API_URL"), "/"),
		BotUsername: getEnv("MABOT_BOT_USERNAME", DefaultBotUsername),
		Email:       os.Getenv("MABOT_EMAIL"),
		Password:    os.Getenv("MABOT_PASSWORD"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Missing lists the required settings that are unset.
func (c Config) Missing() []string {
	var missing []string
	if c.APIURL == "" {
		missing = append(missing, "MABOT_API_URL")
	}
	if c.BotUsername == "" {
		missing = append(missing, "MABOT_BOT_USERNAME")
	}
	if c.Email == "" {
		missing = append(missing, "MABOT_EMAIL")
	}
	if c.Password == "" {
		missing = append(missing, "MABOT_PASSWORD")
	}
	return missing
}

// IsConfigured reports whether every required setting is present.
func (c Config) IsConfigured() bool {
	return len(c.Missing()) == 0
}
