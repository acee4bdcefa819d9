package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"medicare-backend/internal/converter"
	"medicare-backend/internal/delivery/dto"
	"medicare-backend/internal/domain/entity"
	"medicare-backend/internal/domain/repository"
	"medicare-backend/internal/infrastructure/lock"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxMessageLength = 1000

var (
	ErrChatNotFound        = errors.New("chat not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrSelfChat            = errors.New("cannot create chat with yourself")
	ErrChatNotAllowed      = errors.New("chat is only allowed after appointment confirmation")
	ErrNotParticipant      = errors.New("not a participant of this chat")
	ErrEmptyMessage        = errors.New("message content is required")
	ErrMessageTooLong      = errors.New("message too long")
)

type ChatUsecase interface {
	GetChats(ctx context.Context, actor entity.Actor) (*dto.ChatListResponse, error)
	CreateOrGetChat(ctx context.Context, actor entity.Actor, participantID uuid.UUID) (*dto.ConversationResponse, error)
	SendMessage(ctx context.Context, actor entity.Actor, conversationID uuid.UUID, content string) (*dto.ConversationResponse, error)
	GetMessages(ctx context.Context, actor entity.Actor, conversationID uuid.UUID) ([]dto.MessageResponse, error)
}

type chatUsecase struct {
	log              *logrus.Logger
	userRepo         repository.UserRepository
	conversationRepo repository.ConversationRepository
	appointmentRepo  repository.AppointmentRepository
	locker           lock.Locker
	notifier         Notifier
}

func NewChatUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	conversationRepo repository.ConversationRepository,
	appointmentRepo repository.AppointmentRepository,
	locker lock.Locker,
	notifier Notifier,
) ChatUsecase {
	return &chatUsecase{
		log:              log,
		userRepo:         userRepo,
		conversationRepo: conversationRepo,
		appointmentRepo:  appointmentRepo,
		locker:           locker,
		notifier:         notifier,
	}
}

// CanCommunicate reports whether a confirmed appointment links the two users
// as patient and doctor. It is re-evaluated on every message send, never
// cached: a confirmed appointment can be revoked after a conversation exists.
func (u *chatUsecase) CanCommunicate(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	a, err := u.userRepo.FindByID(ctx, userA)
	if err != nil {
		return false, err
	}
	b, err := u.userRepo.FindByID(ctx, userB)
	if err != nil {
		return false, err
	}
	if a == nil || b == nil {
		return false, nil
	}

	var patientID, doctorID uuid.UUID
	switch {
	case a.IsPatient() && b.IsDoctor():
		patientID, doctorID = a.ID, b.ID
	case b.IsPatient() && a.IsDoctor():
		patientID, doctorID = b.ID, a.ID
	default:
		// Not a patient-doctor pair (covers self-pairs too)
		return false, nil
	}

	return u.appointmentRepo.ExistsConfirmedBetween(ctx, patientID, doctorID)
}

// GetChats returns all conversations the actor participates in, most recently
// active first
func (u *chatUsecase) GetChats(ctx context.Context, actor entity.Actor) (*dto.ChatListResponse, error) {
	conversations, err := u.conversationRepo.FindByParticipant(ctx, actor.ID)
	if err != nil {
		u.log.Warnf("Failed to find chats for user %s: %+v", actor.ID, err)
		return nil, err
	}

	return &dto.ChatListResponse{
		Chats: converter.ConversationsToResponses(conversations),
		Total: len(conversations),
	}, nil
}

// CreateOrGetChat returns the conversation between the actor and the given
// participant, creating it if eligible. Idempotent per unordered pair.
func (u *chatUsecase) CreateOrGetChat(ctx context.Context, actor entity.Actor, participantID uuid.UUID) (*dto.ConversationResponse, error) {
	if participantID == actor.ID {
		return nil, ErrSelfChat
	}

	participant, err := u.userRepo.FindByID(ctx, participantID)
	if err != nil {
		u.log.Warnf("Failed to find participant %s: %+v", participantID, err)
		return nil, err
	}
	if participant == nil {
		return nil, ErrParticipantNotFound
	}

	allowed, err := u.CanCommunicate(ctx, actor.ID, participantID)
	if err != nil {
		u.log.Warnf("Failed eligibility check for %s/%s: %+v", actor.ID, participantID, err)
		return nil, err
	}
	if !allowed {
		return nil, ErrChatNotAllowed
	}

	existing, err := u.conversationRepo.FindByPair(ctx, actor.ID, participantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return converter.ConversationToResponse(existing), nil
	}

	// First create for this pair is serialized on a per-pair lock; a racing
	// insert that slips through anyway hits the unique pair index and is
	// resolved by re-reading.
	low, high := entity.NormalizePair(actor.ID, participantID)
	lockKey := fmt.Sprintf("chatpair:%s:%s", low, high)

	var conversation *entity.Conversation
	err = u.locker.WithLock(ctx, lockKey, func(lockCtx context.Context) error {
		again, err := u.conversationRepo.FindByPair(lockCtx, actor.ID, participantID)
		if err != nil {
			return err
		}
		if again != nil {
			conversation = again
			return nil
		}

		created := &entity.Conversation{
			ParticipantA:  low,
			ParticipantB:  high,
			LastMessageAt: time.Now().UTC(),
		}
		if err := u.conversationRepo.Create(lockCtx, created); err != nil {
			return err
		}
		conversation = created
		return nil
	})
	if err != nil {
		if errors.Is(err, lock.ErrLockNotAcquired) || errors.Is(err, repository.ErrDuplicatePair) {
			// Lost the race; the winner's row is authoritative
			winner, findErr := u.conversationRepo.FindByPair(ctx, actor.ID, participantID)
			if findErr == nil && winner != nil {
				return converter.ConversationToResponse(winner), nil
			}
		}
		u.log.Warnf("Failed to create chat for pair %s/%s: %+v", low, high, err)
		return nil, err
	}

	// Reload to populate participants for the response
	full, err := u.conversationRepo.FindByID(ctx, conversation.ID)
	if err != nil || full == nil {
		return converter.ConversationToResponse(conversation), nil
	}

	u.log.Infof("Chat created: id=%s, participants=%s/%s", full.ID, low, high)
	return converter.ConversationToResponse(full), nil
}

// SendMessage appends a message to the conversation and fans it out: the full
// message to the conversation room, an abbreviated snapshot to both
// participants' personal rooms.
func (u *chatUsecase) SendMessage(ctx context.Context, actor entity.Actor, conversationID uuid.UUID, content string) (*dto.ConversationResponse, error) {
	if utf8.RuneCountInString(strings.TrimSpace(content)) == 0 {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, ErrMessageTooLong
	}

	conversation, err := u.conversationRepo.FindByID(ctx, conversationID)
	if err != nil {
		u.log.Warnf("Failed to find chat %s: %+v", conversationID, err)
		return nil, err
	}
	if conversation == nil {
		return nil, ErrChatNotFound
	}

	if !conversation.HasParticipant(actor.ID) {
		return nil, ErrNotParticipant
	}

	other, _ := conversation.OtherParticipant(actor.ID)
	allowed, err := u.CanCommunicate(ctx, actor.ID, other)
	if err != nil {
		u.log.Warnf("Failed eligibility re-check for chat %s: %+v", conversationID, err)
		return nil, err
	}
	if !allowed {
		// The conversation exists but the confirmed appointment no longer does
		return nil, ErrChatNotAllowed
	}

	// Content is stored as sent, only length-validated
	message := &entity.Message{
		ConversationID: conversation.ID,
		SenderID:       actor.ID,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}

	if err := u.conversationRepo.AppendMessage(ctx, conversation, message); err != nil {
		u.log.Warnf("Failed to append message to chat %s: %+v", conversationID, err)
		return nil, err
	}

	message.Sender = entity.User{ID: actor.ID, Name: actor.Name, Email: actor.Email, Role: actor.Role}
	messageDTO := converter.MessageToResponse(message)

	u.notifier.EmitToRoom(ChatRoom(conversation.ID), EventNewMessage, dto.NewMessagePayload{
		ChatID:  conversation.ID,
		Message: messageDTO,
	})

	snapshot := converter.ConversationToResponse(conversation)
	snapshot.Messages = []dto.MessageResponse{messageDTO}
	for _, participantID := range conversation.Participants() {
		u.notifier.EmitToRoom(UserRoom(participantID), EventChatUpdated, dto.ChatUpdatedPayload{
			Chat: *snapshot,
		})
	}

	response := converter.ConversationToResponse(conversation)
	messages, err := u.conversationRepo.FindMessages(ctx, conversation.ID)
	if err == nil {
		response.Messages = converter.MessagesToResponses(messages)
	}

	return response, nil
}

// GetMessages returns the ordered message history of a conversation
func (u *chatUsecase) GetMessages(ctx context.Context, actor entity.Actor, conversationID uuid.UUID) ([]dto.MessageResponse, error) {
	conversation, err := u.conversationRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrChatNotFound
	}

	if !conversation.HasParticipant(actor.ID) {
		return nil, ErrNotParticipant
	}

	messages, err := u.conversationRepo.FindMessages(ctx, conversationID)
	if err != nil {
		u.log.Warnf("Failed to find messages for chat %s: %+v", conversationID, err)
		return nil, err
	}

	return converter.MessagesToResponses(messages), nil
}
