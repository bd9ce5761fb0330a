package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/cors"

	"offline-llm-chat/api/router"
	"offline-llm-chat/chat"
	"offline-llm-chat/config"
	"offline-llm-chat/db"
	"offline-llm-chat/engine"
	"offline-llm-chat/logger"
	"offline-llm-chat/repositories"
)

// @title           Offline LLM Chat API
// @version         1.0
// @description     Local web chat front-end over a language model
// @BasePath        /
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	if err := db.Init(context.Background()); err != nil {
		logger.Log.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}

	store := repositories.NewConversationRepository(db.Database())
	session := chat.NewSession(store)
	provider := engine.NewProvider(cfg)
	service := chat.NewService(session, provider, chat.Options{
		SystemPrompt:  cfg.Chat.SystemPrompt,
		HistoryWindow: cfg.Chat.HistoryWindow,
	})

	// Model bootstrap runs in the background; /health reports the lifecycle
	// state and generate requests fail fast until the engine is Ready.
	go func() {
		_ = provider.Load(context.Background())
	}()

	r := router.New(router.Deps{
		Provider:         provider,
		Service:          service,
		Session:          session,
		Store:            store,
		MaxMessageLength: cfg.Chat.MaxMessageLength,
		StaticDir:        cfg.Server.StaticDir,
	})

	corsOpts := cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}
	if len(corsOpts.AllowedOrigins) == 0 {
		corsOpts.AllowedOrigins = []string{"*"}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Log.Infof("starting chat server on %s", addr)
	srv := &http.Server{Addr: addr, Handler: cors.New(corsOpts).Handler(r)}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
