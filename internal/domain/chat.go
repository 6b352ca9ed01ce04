package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one entry in the assistant conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	FromUser  bool      `json:"fromUser"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChatMessage creates a message with a fresh random id.
func NewChatMessage(text string, fromUser bool, at time.Time) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Text:      text,
		FromUser:  fromUser,
		Timestamp: at,
	}
}
