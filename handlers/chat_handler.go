package handlers

import (
	"errors"
	"log"
	"net/http"

	"lexaid-backend/models"
	"lexaid-backend/repository"
	"lexaid-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChatHandler handles HTTP requests for the conversational RAG chatbot.
// It owns the session lifecycle around the stateless answering engine:
// load history, ask, append the new turn back to storage.
type ChatHandler struct {
	chatService *service.ChatService
	sessionRepo *repository.SessionRepository
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService, sessionRepo *repository.SessionRepository) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		sessionRepo: sessionRepo,
	}
}

// ChatRequest represents the request body for a chat turn
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	sessionID := uuid.New()
	if req.SessionID != "" {
		parsed, err := uuid.Parse(req.SessionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_SESSION_ID",
					"message": "Invalid session_id format",
				},
			})
			return
		}
		sessionID = parsed
	}

	session, err := h.sessionRepo.Get(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SESSION_LOAD_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.chatService.Ask(c.Request.Context(), service.AskRequest{
		Question: req.Query,
		History:  session.Turns,
	})
	if err != nil {
		h.writeChatError(c, err)
		return
	}

	// Persist the new turn; the answer is still returned if the append
	// fails, the next call just won't see this turn
	session.Turns = append(session.Turns, models.ConversationTurn{
		Question: req.Query,
		Answer:   result.Answer,
	})
	if err := h.sessionRepo.Save(c.Request.Context(), session); err != nil {
		log.Printf("Warning: Failed to save chat session %s: %v", sessionID, err)
	}

	sources := result.Sources
	if sources == nil {
		sources = []models.ChatSource{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"answer":     result.Answer,
			"sources":    sources,
			"session_id": sessionID,
		},
	})
}

func (h *ChatHandler) writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyQuestion):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMPTY_QUERY",
				"message": "The 'query' field is required.",
			},
		})
	case errors.Is(err, service.ErrEngineUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ENGINE_UNAVAILABLE",
				"message": "The answering engine is unavailable. Please retry.",
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CHAT_FAILED",
				"message": err.Error(),
			},
		})
	}
}
