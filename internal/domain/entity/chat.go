package entity

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a two-party chat thread. The participant pair is stored in
// normalized order so the unique index enforces at most one conversation per
// unordered pair.
type Conversation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ParticipantA  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair;index" json:"participant_a"`
	ParticipantB  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair;index" json:"participant_b"`
	LastMessageAt time.Time `gorm:"not null;index" json:"last_message_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
	UserA    User      `gorm:"foreignKey:ParticipantA" json:"user_a,omitempty"`
	UserB    User      `gorm:"foreignKey:ParticipantB" json:"user_b,omitempty"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// HasParticipant reports whether id is one of the two participants
func (c *Conversation) HasParticipant(id uuid.UUID) bool {
	return c.ParticipantA == id || c.ParticipantB == id
}

// OtherParticipant returns the counterpart of id. The second return is false
// when id is not a participant at all.
func (c *Conversation) OtherParticipant(id uuid.UUID) (uuid.UUID, bool) {
	switch id {
	case c.ParticipantA:
		return c.ParticipantB, true
	case c.ParticipantB:
		return c.ParticipantA, true
	}
	return uuid.Nil, false
}

// Participants returns both participant ids
func (c *Conversation) Participants() [2]uuid.UUID {
	return [2]uuid.UUID{c.ParticipantA, c.ParticipantB}
}

// NormalizePair orders two user ids lexicographically. Conversations are
// always stored in normalized order so a pair lookup is a single equality
// match.
func NormalizePair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}

// Message is a single chat message. Immutable once appended.
type Message struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Content        string    `gorm:"type:varchar(1000);not null" json:"content"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}
