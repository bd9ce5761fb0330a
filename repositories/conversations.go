package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"offline-llm-chat/models"
)

// ErrNotFound is returned when an operation addresses an unknown
// conversation ID.
var ErrNotFound = errors.New("conversation not found")

type ConversationRepository struct {
	col *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	return &ConversationRepository{col: db.Collection("conversations")}
}

// Create inserts a new conversation with an empty history. An empty title
// falls back to the "New Chat" sentinel. Titles are not unique.
func (r *ConversationRepository) Create(ctx context.Context, title string) (*models.Conversation, error) {
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
	if _, err := r.col.InsertOne(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Get returns a conversation by ID.
func (r *ConversationRepository) Get(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&conv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if conv.History == nil {
		conv.History = []models.Message{}
	}
	return &conv, nil
}

// List returns all conversations, most recently updated first.
func (r *ConversationRepository) List(ctx context.Context) ([]models.ConversationSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetProjection(bson.M{"_id": 1, "title": 1, "created_at": 1})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := []models.ConversationSummary{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AppendMessage appends one message to a conversation's history and bumps
// updated_at. The append is a single atomic $push, so concurrent appends to
// the same conversation cannot drop each other. When the first user message
// arrives while the title still equals the sentinel, the title is renamed to
// a prefix of that message; the rename is a conditional update and therefore
// fires at most once.
func (r *ConversationRepository) AppendMessage(ctx context.Context, id, role, content string) (*models.Message, error) {
	msg := models.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"history": msg},
		"$set":  bson.M{"updated_at": msg.Timestamp},
	})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}

	if role == models.RoleUser {
		_, err = r.col.UpdateOne(ctx,
			bson.M{"_id": id, "title": models.DefaultTitle},
			bson.M{"$set": bson.M{"title": models.DeriveTitle(content)}},
		)
		if err != nil {
			return nil, err
		}
	}

	return &msg, nil
}

// ClearHistory empties a conversation's history without deleting the
// conversation itself.
func (r *ConversationRepository) ClearHistory(ctx context.Context, id string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"history": []models.Message{}, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a conversation permanently. Deleting an absent
// conversation is not an error.
func (r *ConversationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
