package models

import (
	"time"
)

// DefaultTitle is the sentinel title given to a conversation before the
// first user message names it.
const DefaultTitle = "New Chat"

// Message roles. The system prompt is never stored as a message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged utterance inside a conversation's history.
type Message struct {
	ID        string    `bson:"id" json:"id"`
	Role      string    `bson:"role" json:"role"`
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Conversation is a titled, ordered collection of messages.
// Collection: conversations
type Conversation struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	History   []Message `bson:"history" json:"history"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ConversationSummary is the list-view projection of a conversation.
type ConversationSummary struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// DeriveTitle produces a conversation title from the first user message:
// the first 30 characters, with an ellipsis marker when truncated.
func DeriveTitle(content string) string {
	const max = 30
	rs := []rune(content)
	if len(rs) <= max {
		return content
	}
	return string(rs[:max]) + "..."
}
