package chat

import (
	"strings"

	"offline-llm-chat/models"
)

// BuildPrompt assembles the single linear prompt sent to the engine: the
// system line, the last window entries of history rendered as
// "<Role>: <content>", the new user message, and a trailing "Assistant:"
// for the model to complete. It never mutates history.
func BuildPrompt(systemPrompt string, history []models.Message, userMessage string, window int) string {
	if window < 0 {
		window = 0
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}

	parts := make([]string, 0, len(history)+3)
	parts = append(parts, "System: "+systemPrompt+"\n")
	for _, m := range history {
		parts = append(parts, capitalize(m.Role)+": "+m.Content+"\n")
	}
	parts = append(parts, "User: "+userMessage+"\n")
	parts = append(parts, "Assistant:")

	return strings.Join(parts, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
