package chat_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"offline-llm-chat/engine"
	"offline-llm-chat/models"
	"offline-llm-chat/repositories"
)

// memStore is an in-memory chat.Store with the same semantics as the
// Mongo-backed repository.
type memStore struct {
	mu    sync.Mutex
	convs map[string]*models.Conversation
}

func newMemStore() *memStore {
	return &memStore{convs: map[string]*models.Conversation{}}
}

func (s *memStore) Create(ctx context.Context, title string) (*models.Conversation, error) {
	if title == "" {
		title = models.DefaultTitle
	}
	now := time.Now()
	conv := &models.Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		History:   []models.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.convs[conv.ID] = conv
	s.mu.Unlock()
	out := *conv
	return &out, nil
}

func (s *memStore) Get(ctx context.Context, id string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *conv
	out.History = append([]models.Message{}, conv.History...)
	return &out, nil
}

func (s *memStore) List(ctx context.Context) ([]models.ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := []models.ConversationSummary{}
	convs := make([]*models.Conversation, 0, len(s.convs))
	for _, c := range s.convs {
		convs = append(convs, c)
	}
	sort.Slice(convs, func(i, j int) bool { return convs[i].UpdatedAt.After(convs[j].UpdatedAt) })
	for _, c := range convs {
		items = append(items, models.ConversationSummary{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt})
	}
	return items, nil
}

func (s *memStore) AppendMessage(ctx context.Context, id, role, content string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	msg := models.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	conv.History = append(conv.History, msg)
	conv.UpdatedAt = msg.Timestamp
	if role == models.RoleUser && conv.Title == models.DefaultTitle {
		conv.Title = models.DeriveTitle(content)
	}
	return &msg, nil
}

func (s *memStore) ClearHistory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[id]
	if !ok {
		return repositories.ErrNotFound
	}
	conv.History = []models.Message{}
	conv.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, id)
	return nil
}

// fakeProvider hands out a scripted engine, or ErrUnavailable when Down.
type fakeProvider struct {
	engine engine.Engine
	down   bool
}

func (p *fakeProvider) Engine() (engine.Engine, error) {
	if p.down || p.engine == nil {
		return nil, engine.ErrUnavailable
	}
	return p.engine, nil
}

// fakeEngine replays scripted output. FailAfter >= 0 makes the stream
// error after that many increments.
type fakeEngine struct {
	response  string
	tokens    []string
	failAfter int
	err       error
}

func newFakeEngine(response string, tokens ...string) *fakeEngine {
	return &fakeEngine{response: response, tokens: tokens, failAfter: -1}
}

func (e *fakeEngine) Generate(ctx context.Context, prompt string) (string, error) {
	if e.err != nil && e.failAfter == 0 {
		return "", e.err
	}
	return e.response, nil
}

func (e *fakeEngine) GenerateStream(ctx context.Context, prompt string) (engine.TokenStream, error) {
	return &fakeStream{engine: e}, nil
}

func (e *fakeEngine) Close() error { return nil }

type fakeStream struct {
	engine *fakeEngine
	pos    int
	closed bool
}

func (s *fakeStream) Next() (string, error) {
	if s.engine.failAfter >= 0 && s.pos == s.engine.failAfter {
		return "", s.engine.err
	}
	if s.pos >= len(s.engine.tokens) {
		return "", io.EOF
	}
	token := s.engine.tokens[s.pos]
	s.pos++
	return token, nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}
