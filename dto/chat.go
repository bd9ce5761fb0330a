package dto

import "offline-llm-chat/models"

// ChatRequestDTO is the body of POST /chat and POST /stream. Message is a
// pointer so a missing key can be told apart from an empty string.
type ChatRequestDTO struct {
	Message        *string `json:"message" example:"Hello"`
	ConversationID string  `json:"conversation_id,omitempty"`
}

type ChatResponseDTO struct {
	Response       string           `json:"response"`
	ConversationID string           `json:"conversation_id"`
	History        []models.Message `json:"history"`
}

type ConversationDTO struct {
	ID      string           `json:"id"`
	History []models.Message `json:"history"`
}

type ConversationCreatedDTO struct {
	ID string `json:"id"`
}

type HealthResponseDTO struct {
	Status      string `json:"status" example:"healthy"`
	ModelLoaded bool   `json:"model_loaded"`
	ModelState  string `json:"model_state" example:"ready"`
}

// ErrorResponseDTO is the shared error response shape.
type ErrorResponseDTO struct {
	Error string `json:"error" example:"Empty message"`
}

// StatusResponseDTO is the shared simple-status response shape.
type StatusResponseDTO struct {
	Status string `json:"status" example:"deleted"`
}
