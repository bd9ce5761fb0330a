package router

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"offline-llm-chat/api/handlers"
	"offline-llm-chat/api/middleware"
	"offline-llm-chat/chat"
	_ "offline-llm-chat/docs"
	"offline-llm-chat/engine"
)

type Deps struct {
	Provider *engine.Provider
	Service  *chat.Service
	Session  *chat.Session
	Store    chat.Store

	MaxMessageLength int

	// StaticDir serves the web frontend when set.
	StaticDir string
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogging())

	r.GET("/health", handlers.HealthHandler(d.Provider))

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/chat", handlers.ChatHandler(d.Service, d.Session, d.MaxMessageLength))
	r.POST("/stream", handlers.StreamHandler(d.Service, d.Session, d.MaxMessageLength))
	r.GET("/conversations", handlers.ListConversationsHandler(d.Store))
	r.POST("/conversations", handlers.CreateConversationHandler(d.Session))
	r.GET("/conversations/:id", handlers.GetConversationHandler(d.Session))
	r.DELETE("/conversations/:id", handlers.DeleteConversationHandler(d.Session))
	r.POST("/clear", handlers.ClearHandler(d.Session))

	// Frontend is a plain static bundle; everything unrouted falls through
	// to it.
	if d.StaticDir != "" {
		fs := http.FileServer(http.Dir(d.StaticDir))
		r.NoRoute(func(c *gin.Context) {
			if c.Request.Method != http.MethodGet {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			path := filepath.Join(d.StaticDir, filepath.Clean("/"+c.Request.URL.Path))
			if _, err := os.Stat(path); err != nil && c.Request.URL.Path != "/" {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			fs.ServeHTTP(c.Writer, c.Request)
		})
	}

	return r
}
