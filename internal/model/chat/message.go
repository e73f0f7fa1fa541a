package chat

import "time"

// Message persists individual turns for display and audit.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Agent     string    `json:"agent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Transcript roles. Every entry is one or the other.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)
