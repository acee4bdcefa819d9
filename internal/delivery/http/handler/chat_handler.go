package handler

import (
	"encoding/json"
	"net/http"

	"medicare-backend/internal/delivery/dto"
	"medicare-backend/internal/delivery/http/middleware"
	"medicare-backend/internal/usecase"
	"medicare-backend/pkg/response"
	"medicare-backend/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ChatHandler struct {
	chatUsecase usecase.ChatUsecase
	validator   *validator.CustomValidator
}

func NewChatHandler(chatUsecase usecase.ChatUsecase, validator *validator.CustomValidator) *ChatHandler {
	return &ChatHandler{
		chatUsecase: chatUsecase,
		validator:   validator,
	}
}

// List returns all conversations of the authenticated user
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	chats, err := h.chatUsecase.GetChats(r.Context(), actor)
	if err != nil {
		response.InternalServerError(w, "Failed to get chats")
		return
	}

	response.Success(w, http.StatusOK, "Chats retrieved successfully", chats)
}

// Create returns the conversation with the given participant, creating it if
// the pair is eligible
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req dto.CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	participantID, err := uuid.Parse(req.ParticipantID)
	if err != nil {
		response.BadRequest(w, "Invalid participant ID")
		return
	}

	chat, err := h.chatUsecase.CreateOrGetChat(r.Context(), actor, participantID)
	if err != nil {
		switch err {
		case usecase.ErrSelfChat:
			response.BadRequest(w, "Cannot create chat with yourself")
		case usecase.ErrParticipantNotFound:
			response.NotFound(w, "Participant not found")
		case usecase.ErrChatNotAllowed:
			response.Forbidden(w, "Chat is only allowed after appointment confirmation")
		default:
			response.InternalServerError(w, "Failed to create chat")
		}
		return
	}

	response.Success(w, http.StatusOK, "Chat retrieved successfully", chat)
}

// SendMessage appends a message to a conversation over HTTP. The socket
// action goes through the same flow.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	chatID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	var req dto.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	chat, err := h.chatUsecase.SendMessage(r.Context(), actor, chatID, req.Content)
	if err != nil {
		switch err {
		case usecase.ErrChatNotFound:
			response.NotFound(w, "Chat not found")
		case usecase.ErrNotParticipant:
			response.Forbidden(w, "Not a participant of this chat")
		case usecase.ErrChatNotAllowed:
			response.Forbidden(w, "Chat is only allowed after appointment confirmation")
		case usecase.ErrEmptyMessage, usecase.ErrMessageTooLong:
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to send message")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Message sent successfully", chat)
}

// Messages returns the ordered message history of a conversation
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	chatID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid chat ID")
		return
	}

	messages, err := h.chatUsecase.GetMessages(r.Context(), actor, chatID)
	if err != nil {
		switch err {
		case usecase.ErrChatNotFound:
			response.NotFound(w, "Chat not found")
		case usecase.ErrNotParticipant:
			response.Forbidden(w, "Not a participant of this chat")
		default:
			response.InternalServerError(w, "Failed to get messages")
		}
		return
	}

	response.Success(w, http.StatusOK, "Messages retrieved successfully", messages)
}
