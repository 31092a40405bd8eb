package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"seniorweb/internal/domain"
)

// Inbound events.
const (
	EventRegisterUser = "register-user"
	EventJoinChat     = "join-chat"
	EventLeaveChat    = "leave-chat"
	EventSendMessage  = "send-message"
	EventReadChat     = "read-chat"
)

// Outbound events.
const (
	EventNewMessage    = "new-message"
	EventNotifyMessage = "notify-message"
	EventChatRead      = "chat-read"
	EventNewMatch      = "new-match"
	EventError         = "error"
)

// Frame is the envelope of every websocket message in both directions.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type RegisterPayload struct {
	UserID string `json:"userId"`
}

type PairPayload struct {
	Me    string `json:"me"`
	Other string `json:"other"`
}

type SendPayload struct {
	SenderID   string  `json:"senderId"`
	ReceiverID string  `json:"receiverId"`
	Content    string  `json:"content"`
	ImageURL   *string `json:"imageUrl,omitempty"`
	AudioURL   *string `json:"audioUrl,omitempty"`
	Source     string  `json:"source,omitempty"`
	// CreatedAt is the client clock; the stored timestamp replaces it.
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// NotifyPayload is the thread-list summary of a new message.
type NotifyPayload struct {
	From      string         `json:"from"`
	To        string         `json:"to"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	Source    *domain.Source `json:"source"`
}

type ChatReadPayload struct {
	Reader string `json:"reader"`
	Other  string `json:"other"`
}

type MatchPayload struct {
	UserID    string    `json:"userId"`
	MatchedAt time.Time `json:"matchedAt"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// UserRoom is the room holding every live connection of one user.
func UserRoom(userID string) string {
	return "user:" + userID
}

// PairRoom is the room of connections viewing the conversation of a and b.
func PairRoom(a, b string) string {
	return "pair:" + domain.PairKey(a, b)
}

func encodeFrame(eventType string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", eventType, err)
	}
	return json.Marshal(Frame{Type: eventType, Data: raw})
}
