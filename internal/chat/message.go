package chat

import (
	"time"

	"github.com/google/uuid"
)

// Role constants
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn entry in a conversation. An assistant message hosting a
// pending generation starts empty with IsStreaming set, and is mutated in
// place exactly once when the turn settles.
type Message struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	IsStreaming bool      `json:"isStreaming,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func newMessage(role, content string, streaming bool) Message {
	return Message{
		ID:          uuid.NewString(),
		Role:        role,
		Content:     content,
		IsStreaming: streaming,
		Timestamp:   time.Now().UTC(),
	}
}
