package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/council/internal/config"
	"github.com/agenthands/council/internal/council"
	"github.com/agenthands/council/internal/llm"
	"github.com/agenthands/council/internal/store"
)

type Server struct {
	cfg     *config.Config
	store   *store.Store
	gateway council.Caller
}

// New wires a server from pre-built collaborators. Tests inject fakes here.
func New(cfg *config.Config, st *store.Store, gateway council.Caller) *Server {
	return &Server{
		cfg:     cfg,
		store:   st,
		gateway: gateway,
	}
}

// NewServer builds the production wiring: provider registry, gateway, and
// JSON-file store from the loaded config.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	registry, err := llm.BuildRegistry(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st, err := store.New(cfg.Store.DataDir)
	if err != nil {
		return nil, err
	}
	return New(cfg, st, llm.NewGateway(registry, cfg.Timeout())), nil
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	api.POST("/conversations", s.CreateConversation)
	api.GET("/conversations", s.ListConversations)
	api.GET("/conversations/:id", s.GetConversation)
	api.DELETE("/conversations/:id", s.DeleteConversation)
	api.POST("/conversations/:id/message", s.SendMessage)

	return r
}

func (s *Server) CreateConversation(c *gin.Context) {
	conv, err := s.store.Create()
	if err != nil {
		log.Printf("Failed to create conversation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (s *Server) ListConversations(c *gin.Context) {
	list, err := s.store.List()
	if err != nil {
		log.Printf("Failed to list conversations: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conversations"})
		return
	}
	if list == nil {
		list = []store.ConversationMetadata{}
	}
	c.JSON(http.StatusOK, gin.H{"conversations": list})
}

func (s *Server) GetConversation(c *gin.Context) {
	conv, err := s.store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		log.Printf("Failed to load conversation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load conversation"})
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (s *Server) DeleteConversation(c *gin.Context) {
	if err := s.store.Delete(c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		log.Printf("Failed to delete conversation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete conversation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage appends the user turn, runs the council pipeline, and streams
// one SSE event per stage transition. The assistant turn is persisted once
// the run completes.
func (s *Server) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	id := c.Param("id")
	conv, err := s.store.AppendUserMessage(id, req.Content)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		log.Printf("Failed to append message: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to append message"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	pipeline := council.New(s.gateway, s.cfg.Council.Models, s.cfg.Council.Chairman).
		WithEmitter(func(ev council.Event) {
			c.SSEvent(ev.Type, ev)
			c.Writer.Flush()
		})

	// Client disconnect cancels the request context and with it every
	// in-flight model call.
	result, err := pipeline.Run(c.Request.Context(), historyMessages(conv))
	if err != nil {
		// The error event was already emitted by the pipeline.
		log.Printf("Pipeline failed for conversation %s: %v", id, err)
		return
	}

	if _, err := s.store.AppendAssistantMessage(id, result); err != nil {
		log.Printf("Failed to persist assistant message: %v", err)
		c.SSEvent(council.EventError, council.Event{Type: council.EventError, Error: "Failed to persist result"})
		c.Writer.Flush()
	}
}

// historyMessages flattens the stored transcript into the chat history sent
// to stage-one models: user turns as-is, assistant turns as the chairman's
// synthesized answer.
func historyMessages(conv *store.Conversation) []llm.Message {
	var messages []llm.Message
	for _, m := range conv.Messages {
		switch m.Role {
		case "user":
			messages = append(messages, llm.Message{Role: llm.RoleUser, Content: m.Content})
		case "assistant":
			if m.Stage3 != nil && m.Stage3.Response != council.SynthesisUnavailable {
				messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: m.Stage3.Response})
			}
		}
	}
	return messages
}
