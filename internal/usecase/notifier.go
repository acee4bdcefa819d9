package usecase

import "github.com/google/uuid"

// Event names delivered through the fan-out gateway
const (
	EventNewMessage         = "new_message"
	EventChatUpdated        = "chat_updated"
	EventAppointmentCreated = "appointment_created"
	EventAppointmentUpdated = "appointment_updated"
	EventDashboardUpdate    = "dashboard_update"
)

// UserRoom is the personal room keyed by a user's id, used for direct
// notifications.
func UserRoom(userID uuid.UUID) string {
	return "user_" + userID.String()
}

// ChatRoom is the room keyed by a conversation's id, used to fan messages out
// to both participants' active connections.
func ChatRoom(conversationID uuid.UUID) string {
	return "chat_" + conversationID.String()
}

// Notifier delivers an event to every connection currently joined to a room.
// Connections that join later do not receive it retroactively. Usecases
// receive this capability at construction instead of reaching for a shared
// gateway instance.
type Notifier interface {
	EmitToRoom(room string, event string, payload interface{})
}

// NoopNotifier discards all emits. Used by workers and tests that run without
// a gateway.
type NoopNotifier struct{}

func (NoopNotifier) EmitToRoom(string, string, interface{}) {}
