package ws

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Envelope is the wire frame for every server-to-client event
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Hub is the in-process room directory: it maps room names to the clients
// currently joined. Membership changes and fan-out take the same lock, so a
// client never receives an event for a room it already left.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	log   *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		log:   log,
	}
}

// Join adds the client to a room. Idempotent.
func (h *Hub) Join(room string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[client] = struct{}{}
}

// Leave removes the client from a room. Leaving a room the client is not in
// is a no-op.
func (h *Hub) Leave(room string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(room, client)
}

// RemoveClient drops the client from every room on disconnect
func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range h.rooms {
		h.removeLocked(room, client)
	}
}

func (h *Hub) removeLocked(room string, client *Client) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// EmitToRoom serializes the event once and queues it on every current member
// of the room. Clients that cannot keep up are disconnected rather than
// allowed to stall the rest of the room.
func (h *Hub) EmitToRoom(room, event string, payload interface{}) {
	frame, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		h.log.Warnf("Failed to marshal event %s: %+v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		select {
		case client.send <- frame:
		default:
			// Send buffer full; the writer goroutine is stuck or gone
			client.closeSlow()
		}
	}
}

// RoomSize reports the current member count of a room
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
