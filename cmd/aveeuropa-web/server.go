package main

import (
	"net/http"

	charmlog "github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/aveeuropa/mabot"
)

// server wires the MABOT client and the rendered transcript behind the
// front-end JSON endpoints.
type server struct {
	client     *mabot.Client
	transcript *mabot.Transcript
	log        *charmlog.Logger
}

func newServer(client *mabot.Client, log *charmlog.Logger) *server {
	return &server{
		client:     client,
		transcript: mabot.NewTranscript(0, 0),
		log:        log,
	}
}

func (s *server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	api := r.Group("/api")
	api.POST("/chat", s.handleChat)
	api.POST("/chat/reset", s.handleReset)
	api.GET("/chat/transcript", s.handleTranscript)
	api.GET("/status", s.handleStatus)
	api.GET("/debug/bot", s.handleBots)
	api.GET("/debug/bot/:username", s.handleBotByUsername)

	return r
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// handleChat forwards one user message to MABOT. Failures are rendered
// as an assistant-style reply, never as a broken conversation: the
// response is always 200 with a reply string.
func (s *server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	reply, err := s.client.SendMessage(c.Request.Context(), req.Message)
	if err != nil {
		s.log.Warn("send failed", "error", err)
		reply = err.Error()
	}
	if reply == "" {
		// Whitespace-only input is a no-op.
		c.JSON(http.StatusOK, gin.H{"reply": "", "chat_id": s.client.CurrentChatID()})
		return
	}

	s.transcript.Append(mabot.RoleUser, req.Message)
	s.transcript.Append(mabot.RoleAssistant, reply)

	c.JSON(http.StatusOK, gin.H{
		"reply":   reply,
		"chat_id": s.client.CurrentChatID(),
	})
}

// handleReset starts a new conversation thread and empties the
// transcript.
func (s *server) handleReset(c *gin.Context) {
	if err := s.client.ResetChat(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.transcript.Clear()
	s.log.Info("conversation reset", "chat_id", s.client.CurrentChatID())
	c.JSON(http.StatusOK, gin.H{"chat_id": s.client.CurrentChatID()})
}

func (s *server) handleTranscript(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"chat_id":  s.client.CurrentChatID(),
		"messages": s.transcript.Messages(),
	})
}

// handleStatus reports the configured/connected state the front-end
// shows in its status banner.
func (s *server) handleStatus(c *gin.Context) {
	cfg := s.client.Config()
	missing := cfg.Missing()
	c.JSON(http.StatusOK, gin.H{
		"configured":    len(missing) == 0,
		"missing":       missing,
		"bot_username":  cfg.BotUsername,
		"authenticated": s.client.Auth().IsAuthenticated(c.Request.Context()),
		"chat_id":       s.client.CurrentChatID(),
	})
}

func (s *server) handleBots(c *gin.Context) {
	bots, err := s.client.BotInfo(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, bots)
}

func (s *server) handleBotByUsername(c *gin.Context) {
	bot, err := s.client.BotByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, bot)
}
