package repository

import (
	"context"
	"errors"
	"time"

	"medicare-backend/internal/domain/entity"
	domainRepo "medicare-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) domainRepo.ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	conversation.ParticipantA, conversation.ParticipantB =
		entity.NormalizePair(conversation.ParticipantA, conversation.ParticipantB)
	if conversation.LastMessageAt.IsZero() {
		conversation.LastMessageAt = time.Now().UTC()
	}

	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		if isDuplicateKeyError(err, "idx_conversation_pair") {
			return domainRepo.ErrDuplicatePair
		}
		return err
	}
	return nil
}

func (r *conversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	var conversation entity.Conversation
	err := r.db.WithContext(ctx).
		Preload("UserA").
		Preload("UserB").
		Where("id = ?", id).
		First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *conversationRepository) FindByPair(ctx context.Context, participantA, participantB uuid.UUID) (*entity.Conversation, error) {
	low, high := entity.NormalizePair(participantA, participantB)

	var conversation entity.Conversation
	err := r.db.WithContext(ctx).
		Preload("UserA").
		Preload("UserB").
		Where("participant_a = ? AND participant_b = ?", low, high).
		First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *conversationRepository) FindByParticipant(ctx context.Context, userID uuid.UUID) ([]entity.Conversation, error) {
	var conversations []entity.Conversation
	err := r.db.WithContext(ctx).
		Preload("UserA").
		Preload("UserB").
		Where("participant_a = ? OR participant_b = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

// AppendMessage writes the message and the conversation's last-message
// timestamp in one transaction so a crash cannot leave them out of step.
func (r *conversationRepository) AppendMessage(ctx context.Context, conversation *entity.Conversation, message *entity.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		conversation.LastMessageAt = message.CreatedAt
		return tx.Model(&entity.Conversation{}).
			Where("id = ?", conversation.ID).
			Update("last_message_at", message.CreatedAt).Error
	})
}

func (r *conversationRepository) FindMessages(ctx context.Context, conversationID uuid.UUID) ([]entity.Message, error) {
	var messages []entity.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
