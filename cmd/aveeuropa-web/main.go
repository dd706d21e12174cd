// Command aveeuropa-web serves the Ave Europa chat front-end API: a
// thin JSON surface over the MABOT client covering the chat exchange,
// conversation reset, configuration status and the bot debug panel.
package main

import (
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"

	"github.com/aveeuropa/mabot"
	"github.com/aveeuropa/mabot/tokenstore"
)

func main() {
	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "aveeuropa",
	})
	if os.Getenv("MABOT_DEBUG") != "" {
		logger.SetLevel(charmlog.DebugLevel)
	}

	cfg := mabot.LoadConfig()
	if missing := cfg.Missing(); len(missing) > 0 {
		// Not fatal: the status endpoint reports the condition and the
		// chat renders the error instead of the server crashing.
		logger.Warn("MABOT configuration incomplete", "missing", missing)
	}

	store, err := tokenstore.New(tokenstore.StoreTypeFile,
		tokenstore.WithFilePath(os.Getenv("MABOT_TOKEN_FILE")))
	if err != nil {
		logger.Fatal("creating token store", "error", err)
	}
	defer store.Close()

	client, err := mabot.New(cfg,
		mabot.WithTokenStore(store),
		mabot.WithLogger(slog.New(logger)))
	if err != nil {
		logger.Fatal("creating mabot client", "error", err)
	}

	srv := newServer(client, logger)
	addr := ":" + getEnv("MABOT_WEB_PORT", "8080")
	logger.Info("listening", "addr", addr)
	if err := srv.router().Run(addr); err != nil {
		logger.Fatal("server stopped", "error", err)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
