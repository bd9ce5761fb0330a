package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"offline-llm-chat/chat"
	"offline-llm-chat/dto"
	"offline-llm-chat/repositories"
)

// ListConversationsHandler godoc
// @Summary      List conversations
// @Description  All conversations, most recently updated first
// @Tags         conversations
// @Produce      json
// @Success      200  {array}  models.ConversationSummary
// @Router       /conversations [get]
func ListConversationsHandler(store chat.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := store.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// CreateConversationHandler godoc
// @Summary      Create a conversation
// @Description  Creates an empty "New Chat" conversation and makes it current
// @Tags         conversations
// @Produce      json
// @Success      200  {object}  dto.ConversationCreatedDTO
// @Router       /conversations [post]
func CreateConversationHandler(session *chat.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := session.Create(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, dto.ConversationCreatedDTO{ID: id})
	}
}

// GetConversationHandler godoc
// @Summary      Get a conversation
// @Description  Returns the conversation's history and makes it current
// @Tags         conversations
// @Param        id  path  string  true  "conversation id"
// @Produce      json
// @Success      200  {object}  dto.ConversationDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /conversations/{id} [get]
func GetConversationHandler(session *chat.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		conv, err := session.Select(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "Conversation not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, dto.ConversationDTO{ID: conv.ID, History: conv.History})
	}
}

// DeleteConversationHandler godoc
// @Summary      Delete a conversation
// @Description  Idempotent; deleting the current conversation clears the current pointer
// @Tags         conversations
// @Param        id  path  string  true  "conversation id"
// @Produce      json
// @Success      200  {object}  dto.StatusResponseDTO
// @Router       /conversations/{id} [delete]
func DeleteConversationHandler(session *chat.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := session.Delete(c.Request.Context(), c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, dto.StatusResponseDTO{Status: "deleted"})
	}
}

// ClearHandler godoc
// @Summary      Clear current conversation history
// @Tags         conversations
// @Produce      json
// @Success      200  {object}  dto.StatusResponseDTO
// @Router       /clear [post]
func ClearHandler(session *chat.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := session.Clear(c.Request.Context()); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "Conversation not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, dto.StatusResponseDTO{Status: "cleared"})
	}
}
