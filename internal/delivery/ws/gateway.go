package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"medicare-backend/internal/domain/entity"
	"medicare-backend/internal/domain/repository"
	"medicare-backend/internal/usecase"
	"medicare-backend/pkg/jwt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client actions
const (
	actionJoinChat    = "join_chat"
	actionLeaveChat   = "leave_chat"
	actionSendMessage = "send_message"
)

// EventError is delivered to the offending sender only, never fanned out
const EventError = "error"

type clientFrame struct {
	Action  string `json:"action"`
	ChatID  string `json:"chat_id,omitempty"`
	Content string `json:"content,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// Gateway authenticates sockets, binds them to rooms and routes client
// frames into the chat flow. Authentication happens once per connection,
// before the upgrade; an established socket is never re-verified.
type Gateway struct {
	log              *logrus.Logger
	hub              *Hub
	upgrader         websocket.Upgrader
	jwtService       *jwt.JWTService
	authUsecase      usecase.AuthUsecase
	chatUsecase      usecase.ChatUsecase
	userRepo         repository.UserRepository
	conversationRepo repository.ConversationRepository
}

func NewGateway(
	log *logrus.Logger,
	hub *Hub,
	jwtService *jwt.JWTService,
	authUsecase usecase.AuthUsecase,
	chatUsecase usecase.ChatUsecase,
	userRepo repository.UserRepository,
	conversationRepo repository.ConversationRepository,
) *Gateway {
	return &Gateway{
		log: log,
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		jwtService:       jwtService,
		authUsecase:      authUsecase,
		chatUsecase:      chatUsecase,
		userRepo:         userRepo,
		conversationRepo: conversationRepo,
	}
}

// HandleConnection is the HTTP entry point for socket upgrades. The token
// rides in the query string because browsers cannot set headers on WebSocket
// handshakes.
func (g *Gateway) HandleConnection(w http.ResponseWriter, r *http.Request) {
	actor, ok := g.authenticate(w, r)
	if !ok {
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warnf("Failed to upgrade connection for user %s: %+v", actor.ID, err)
		return
	}

	client := newClient(g.hub, conn, actor)
	defer func() {
		close(client.done)
		g.hub.RemoveClient(client)
		conn.Close()
	}()

	// Every socket lands in its owner's personal room and in the rooms of all
	// conversations the user already participates in.
	g.hub.Join(usecase.UserRoom(actor.ID), client)
	conversations, err := g.conversationRepo.FindByParticipant(r.Context(), actor.ID)
	if err != nil {
		g.log.Warnf("Failed to load conversations for user %s: %+v", actor.ID, err)
	} else {
		for _, conversation := range conversations {
			g.hub.Join(usecase.ChatRoom(conversation.ID), client)
		}
	}

	g.log.Infof("Socket connected: user=%s, role=%s", actor.ID, actor.Role)

	go client.writePump()
	g.readLoop(client)

	g.log.Infof("Socket disconnected: user=%s", actor.ID)
}

// authenticate verifies the handshake token and resolves the live account.
// Any failure refuses the connection before the upgrade happens.
func (g *Gateway) authenticate(w http.ResponseWriter, r *http.Request) (entity.Actor, bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return entity.Actor{}, false
	}

	claims, err := g.jwtService.ValidateToken(token)
	if err != nil || claims.TokenType != jwt.AccessToken {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return entity.Actor{}, false
	}

	valid, err := g.authUsecase.IsTokenValid(r.Context(), claims.UserID, claims.TokenID, jwt.AccessToken)
	if err != nil || !valid {
		http.Error(w, "token revoked", http.StatusUnauthorized)
		return entity.Actor{}, false
	}

	user, err := g.userRepo.FindByID(r.Context(), claims.UserID)
	if err != nil || user == nil {
		http.Error(w, "unknown user", http.StatusUnauthorized)
		return entity.Actor{}, false
	}
	if user.Status == entity.UserStatusSuspended {
		http.Error(w, "account suspended", http.StatusForbidden)
		return entity.Actor{}, false
	}

	return entity.Actor{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}, true
}

func (g *Gateway) readLoop(client *Client) {
	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.log.Warnf("Socket read error for user %s: %+v", client.actor.ID, err)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			client.sendEvent(EventError, errorPayload{Message: "malformed frame"})
			continue
		}

		g.handleFrame(client, frame)
	}
}

func (g *Gateway) handleFrame(client *Client, frame clientFrame) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch frame.Action {
	case actionJoinChat:
		chatID, err := uuid.Parse(frame.ChatID)
		if err != nil {
			client.sendEvent(EventError, errorPayload{Message: "invalid chat_id"})
			return
		}
		conversation, err := g.conversationRepo.FindByID(ctx, chatID)
		if err != nil {
			client.sendEvent(EventError, errorPayload{Message: "chat lookup failed"})
			return
		}
		if conversation == nil || !conversation.HasParticipant(client.actor.ID) {
			client.sendEvent(EventError, errorPayload{Message: "not a participant of this chat"})
			return
		}
		g.hub.Join(usecase.ChatRoom(chatID), client)

	case actionLeaveChat:
		chatID, err := uuid.Parse(frame.ChatID)
		if err != nil {
			client.sendEvent(EventError, errorPayload{Message: "invalid chat_id"})
			return
		}
		g.hub.Leave(usecase.ChatRoom(chatID), client)

	case actionSendMessage:
		chatID, err := uuid.Parse(frame.ChatID)
		if err != nil {
			client.sendEvent(EventError, errorPayload{Message: "invalid chat_id"})
			return
		}
		if _, err := g.chatUsecase.SendMessage(ctx, client.actor, chatID, frame.Content); err != nil {
			client.sendEvent(EventError, errorPayload{Message: err.Error()})
			return
		}

	default:
		client.sendEvent(EventError, errorPayload{Message: "unknown action"})
	}
}
