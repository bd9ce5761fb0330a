package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"offline-llm-chat/dto"
	"offline-llm-chat/engine"
)

// HealthHandler godoc
// @Summary      Health check
// @Description  Reports server health and the model lifecycle state
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponseDTO
// @Router       /health [get]
func HealthHandler(provider *engine.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthResponseDTO{
			Status:      "healthy",
			ModelLoaded: provider.Ready(),
			ModelState:  provider.State().String(),
		})
	}
}
