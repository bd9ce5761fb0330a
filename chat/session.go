package chat

import (
	"context"
	"sync"

	"offline-llm-chat/models"
)

// Session is the active-conversation cursor. It holds only the ID of the
// current conversation; every read goes back to the Store, so the Store
// remains the single source of truth. A Session is an explicit object
// injected where needed rather than process-global state, though a
// single-operator deployment still runs one shared instance.
type Session struct {
	store Store

	mu      sync.Mutex
	current string
}

func NewSession(store Store) *Session {
	return &Session{store: store}
}

// Select verifies the conversation exists and makes it current. On any
// error, including repositories.ErrNotFound, the current pointer is left
// unchanged.
func (s *Session) Select(ctx context.Context, id string) (*models.Conversation, error) {
	conv, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = id
	s.mu.Unlock()
	return conv, nil
}

// Current returns the current conversation ID, or "" when none is set.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// EnsureCurrent returns the current conversation ID, lazily creating and
// adopting a conversation when none is current.
func (s *Session) EnsureCurrent(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != "" {
		return s.current, nil
	}
	conv, err := s.store.Create(ctx, "")
	if err != nil {
		return "", err
	}
	s.current = conv.ID
	return s.current, nil
}

// Create starts a fresh conversation and adopts it as current.
func (s *Session) Create(ctx context.Context) (string, error) {
	conv, err := s.store.Create(ctx, "")
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.current = conv.ID
	s.mu.Unlock()
	return conv.ID, nil
}

// History returns the current conversation's messages, or an empty slice
// when no conversation is current.
func (s *Session) History(ctx context.Context) ([]models.Message, error) {
	id := s.Current()
	if id == "" {
		return []models.Message{}, nil
	}
	conv, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return conv.History, nil
}

// AppendTurn appends one message to the current conversation, creating one
// first if needed.
func (s *Session) AppendTurn(ctx context.Context, role, content string) (*models.Message, error) {
	id, err := s.EnsureCurrent(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.AppendMessage(ctx, id, role, content)
}

// Clear empties the current conversation's history. No-op when no
// conversation is current.
func (s *Session) Clear(ctx context.Context) error {
	id := s.Current()
	if id == "" {
		return nil
	}
	return s.store.ClearHistory(ctx, id)
}

// Delete removes a conversation. When it is the current one, the current
// pointer is cleared so the next append starts a new conversation.
func (s *Session) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	if s.current == id {
		s.current = ""
	}
	s.mu.Unlock()
	return nil
}
