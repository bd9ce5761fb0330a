package chat

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"offline-llm-chat/engine"
	"offline-llm-chat/logger"
	"offline-llm-chat/models"
)

// Options bounds prompt assembly.
type Options struct {
	SystemPrompt  string
	HistoryWindow int
}

// EngineProvider hands out a Ready engine or engine.ErrUnavailable.
// *engine.Provider is the production implementation.
type EngineProvider interface {
	Engine() (engine.Engine, error)
}

// Service coordinates the session, the prompt builder and the inference
// engine for both the synchronous and the streaming chat paths.
type Service struct {
	session  *Session
	provider EngineProvider
	opts     Options
}

func NewService(session *Session, provider EngineProvider, opts Options) *Service {
	return &Service{session: session, provider: provider, opts: opts}
}

// Provider exposes the engine provider, for availability checks that must
// happen before a response commits to the event-stream content type.
func (s *Service) Provider() EngineProvider {
	return s.provider
}

// ChatResult is the outcome of a completed synchronous exchange.
type ChatResult struct {
	Response       string
	ConversationID string
	History        []models.Message
}

// Chat runs one full exchange: build the prompt from the current
// conversation, generate a complete response, then persist the user and
// assistant turns in that order. User content is HTML-escaped before it is
// prompted or stored.
func (s *Service) Chat(ctx context.Context, message string) (*ChatResult, error) {
	eng, err := s.provider.Engine()
	if err != nil {
		return nil, err
	}

	userMessage := html.EscapeString(message)
	prompt, err := s.buildPrompt(ctx, userMessage)
	if err != nil {
		return nil, err
	}

	response, err := eng.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	if _, err := s.session.AppendTurn(ctx, models.RoleUser, userMessage); err != nil {
		return nil, fmt.Errorf("persist user turn: %w", err)
	}
	if _, err := s.session.AppendTurn(ctx, models.RoleAssistant, response); err != nil {
		return nil, fmt.Errorf("persist assistant turn: %w", err)
	}

	history, err := s.session.History(ctx)
	if err != nil {
		return nil, err
	}
	return &ChatResult{
		Response:       response,
		ConversationID: s.session.Current(),
		History:        history,
	}, nil
}

// Stream runs one streaming exchange. Every increment is handed to emit as
// it arrives and accumulated locally; only when the engine's stream ends
// naturally are the user and assistant turns persisted. An engine error
// mid-stream, or an emit failure (the caller went away), discards the
// accumulated text so history never contains a half-generated assistant
// turn. The resolved conversation ID is returned on success.
func (s *Service) Stream(ctx context.Context, message string, emit func(token string) error) (string, error) {
	eng, err := s.provider.Engine()
	if err != nil {
		return "", err
	}

	userMessage := html.EscapeString(message)
	prompt, err := s.buildPrompt(ctx, userMessage)
	if err != nil {
		return "", err
	}

	stream, err := eng.GenerateStream(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	var full strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		token, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Log.Errorf("stream aborted, discarding %d accumulated bytes: %v", full.Len(), err)
			return "", err
		}
		full.WriteString(token)
		if err := emit(token); err != nil {
			return "", err
		}
	}

	if _, err := s.session.AppendTurn(ctx, models.RoleUser, userMessage); err != nil {
		return "", fmt.Errorf("persist user turn: %w", err)
	}
	if _, err := s.session.AppendTurn(ctx, models.RoleAssistant, full.String()); err != nil {
		return "", fmt.Errorf("persist assistant turn: %w", err)
	}
	return s.session.Current(), nil
}

func (s *Service) buildPrompt(ctx context.Context, userMessage string) (string, error) {
	history, err := s.session.History(ctx)
	if err != nil {
		return "", err
	}
	return BuildPrompt(s.opts.SystemPrompt, history, userMessage, s.opts.HistoryWindow), nil
}
