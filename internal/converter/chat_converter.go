package converter

import (
	"medicare-backend/internal/delivery/dto"
	"medicare-backend/internal/domain/entity"
)

// MessageToResponse converts a Message entity to MessageResponse DTO
func MessageToResponse(message *entity.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		Sender:         UserToBrief(&message.Sender),
		Content:        message.Content,
		Timestamp:      message.CreatedAt,
	}
}

// MessagesToResponses converts a slice of Message entities to DTOs
func MessagesToResponses(messages []entity.Message) []dto.MessageResponse {
	responses := make([]dto.MessageResponse, len(messages))
	for i, message := range messages {
		responses[i] = MessageToResponse(&message)
	}
	return responses
}

// ConversationToResponse converts a Conversation entity to a DTO. Messages are
// attached by the caller when needed.
func ConversationToResponse(conversation *entity.Conversation) *dto.ConversationResponse {
	if conversation == nil {
		return nil
	}

	return &dto.ConversationResponse{
		ID: conversation.ID,
		Participants: []dto.UserBrief{
			UserToBrief(&conversation.UserA),
			UserToBrief(&conversation.UserB),
		},
		LastMessageAt: conversation.LastMessageAt,
		CreatedAt:     conversation.CreatedAt,
	}
}

// ConversationsToResponses converts a slice of Conversation entities to DTOs
func ConversationsToResponses(conversations []entity.Conversation) []dto.ConversationResponse {
	responses := make([]dto.ConversationResponse, len(conversations))
	for i, conversation := range conversations {
		resp := ConversationToResponse(&conversation)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
