package repository

import (
	"context"
	"errors"

	"medicare-backend/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrDuplicatePair is returned by Create when an insert loses the uniqueness
// race on the normalized participant pair. The existing row is authoritative.
var ErrDuplicatePair = errors.New("conversation already exists for pair")

type ConversationRepository interface {
	// Create inserts the conversation. Returns ErrDuplicatePair when a racing
	// insert for the same normalized pair already landed.
	Create(ctx context.Context, conversation *entity.Conversation) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error)
	// FindByPair looks up the conversation for a normalized participant pair.
	FindByPair(ctx context.Context, participantA, participantB uuid.UUID) (*entity.Conversation, error)
	// FindByParticipant returns all conversations the user takes part in,
	// most recently active first.
	FindByParticipant(ctx context.Context, userID uuid.UUID) ([]entity.Conversation, error)
	// AppendMessage persists the message and advances the conversation's
	// last-message timestamp.
	AppendMessage(ctx context.Context, conversation *entity.Conversation, message *entity.Message) error
	FindMessages(ctx context.Context, conversationID uuid.UUID) ([]entity.Message, error)
}
