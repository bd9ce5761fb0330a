package chat

import (
	"context"

	"offline-llm-chat/models"
)

// Store is the durable conversation record the chat core runs against.
// *repositories.ConversationRepository is the production implementation;
// unknown IDs are signalled with repositories.ErrNotFound.
type Store interface {
	Create(ctx context.Context, title string) (*models.Conversation, error)
	Get(ctx context.Context, id string) (*models.Conversation, error)
	List(ctx context.Context) ([]models.ConversationSummary, error)
	AppendMessage(ctx context.Context, id, role, content string) (*models.Message, error)
	ClearHistory(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
