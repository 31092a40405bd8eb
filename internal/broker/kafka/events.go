package kafka

import (
	"time"

	"seniorweb/internal/domain"
)

// Event types carried on the fan-out topic.
const (
	EventMessageCreated   = "message.created"
	EventConversationRead = "conversation.read"
	EventMutualMatch      = "match.mutual"
)

// Envelope is the record value published for every fan-out event.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Message    *domain.Message `json:"message,omitempty"`
	ReaderID   string          `json:"reader_id,omitempty"`
	OtherID    string          `json:"other_id,omitempty"`
	Match      *domain.Match   `json:"match,omitempty"`
}
