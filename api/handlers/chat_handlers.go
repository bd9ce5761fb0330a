package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"offline-llm-chat/chat"
	"offline-llm-chat/dto"
	"offline-llm-chat/engine"
	"offline-llm-chat/logger"
	"offline-llm-chat/repositories"
)

// bindChatRequest validates the shared /chat and /stream request body and
// writes the 400 response itself when validation fails.
func bindChatRequest(c *gin.Context, maxLen int) (message, conversationID string, ok bool) {
	var req dto.ChatRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "No message provided"})
		return "", "", false
	}

	message = strings.TrimSpace(*req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "Empty message"})
		return "", "", false
	}
	if utf8.RuneCountInString(message) > maxLen {
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "Message too long"})
		return "", "", false
	}
	return message, req.ConversationID, true
}

// selectConversation makes the requested conversation current. It writes
// the error response itself when the ID is unknown.
func selectConversation(c *gin.Context, session *chat.Session, id string) bool {
	if id == "" {
		return true
	}
	if _, err := session.Select(c.Request.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "Conversation not found"})
		} else {
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
		}
		return false
	}
	return true
}

// ChatHandler godoc
// @Summary      Send a chat message
// @Description  Runs one full exchange and returns the complete response with updated history
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ChatRequestDTO  true  "chat request"
// @Success      200   {object}  dto.ChatResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      404   {object}  dto.ErrorResponseDTO
// @Failure      503   {object}  dto.ErrorResponseDTO
// @Failure      500   {object}  dto.ErrorResponseDTO
// @Router       /chat [post]
func ChatHandler(svc *chat.Service, session *chat.Session, maxMessageLength int) gin.HandlerFunc {
	return func(c *gin.Context) {
		message, conversationID, ok := bindChatRequest(c, maxMessageLength)
		if !ok {
			return
		}
		if !selectConversation(c, session, conversationID) {
			return
		}

		result, err := svc.Chat(c.Request.Context(), message)
		if err != nil {
			if errors.Is(err, engine.ErrUnavailable) {
				c.JSON(http.StatusServiceUnavailable, dto.ErrorResponseDTO{Error: "Model not loaded"})
				return
			}
			logger.Log.Errorf("chat failed: %v", err)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}

		c.JSON(http.StatusOK, dto.ChatResponseDTO{
			Response:       result.Response,
			ConversationID: result.ConversationID,
			History:        result.History,
		})
	}
}

// StreamHandler godoc
// @Summary      Stream a chat response
// @Description  Server-sent events; one {"token": ...} event per increment, terminated by {"done": true} or {"error": ...}
// @Tags         chat
// @Accept       json
// @Produce      text/event-stream
// @Param        body  body  dto.ChatRequestDTO  true  "chat request"
// @Success      200
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      404   {object}  dto.ErrorResponseDTO
// @Failure      503   {object}  dto.ErrorResponseDTO
// @Router       /stream [post]
func StreamHandler(svc *chat.Service, session *chat.Session, maxMessageLength int) gin.HandlerFunc {
	return func(c *gin.Context) {
		message, conversationID, ok := bindChatRequest(c, maxMessageLength)
		if !ok {
			return
		}
		if !selectConversation(c, session, conversationID) {
			return
		}
		if _, err := svc.Provider().Engine(); err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponseDTO{Error: "Model not loaded"})
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		emit := func(token string) error {
			if err := writeEvent(c, gin.H{"token": token}); err != nil {
				return err
			}
			return nil
		}

		conversationIDOut, err := svc.Stream(c.Request.Context(), message, emit)
		if err != nil {
			// A gone client gets no error event; it is a cancellation, not
			// a failure, and nothing was persisted either way.
			if c.Request.Context().Err() != nil {
				return
			}
			logger.Log.Errorf("stream failed: %v", err)
			_ = writeEvent(c, gin.H{"error": err.Error()})
			return
		}

		_ = writeEvent(c, gin.H{"done": true, "conversation_id": conversationIDOut})
	}
}

func writeEvent(c *gin.Context, payload gin.H) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}
