package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateChatRequest struct {
	ParticipantID string `json:"participant_id" validate:"required,uuid"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// Response DTOs

type MessageResponse struct {
	ID             int64     `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Sender         UserBrief `json:"sender"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}

type ConversationResponse struct {
	ID            uuid.UUID         `json:"id"`
	Participants  []UserBrief       `json:"participants"`
	LastMessageAt time.Time         `json:"last_message_at"`
	Messages      []MessageResponse `json:"messages,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

type ChatListResponse struct {
	Chats []ConversationResponse `json:"chats"`
	Total int                    `json:"total"`
}

// Gateway event payloads

// NewMessagePayload is emitted to the conversation room on every send
type NewMessagePayload struct {
	ChatID  uuid.UUID       `json:"chat_id"`
	Message MessageResponse `json:"message"`
}

// ChatUpdatedPayload is emitted to each participant's personal room. Messages
// holds only the newly appended message.
type ChatUpdatedPayload struct {
	Chat ConversationResponse `json:"chat"`
}
