package domain

import (
	"strings"
	"time"
)

// User is the identity row owned by the profile collaborator. The core only
// reads it to decorate threads and to validate counterparts.
type User struct {
	ID          string    `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"displayName"`
	Email       *string   `db:"email" json:"email,omitempty"`
	AvatarURL   *string   `db:"avatar_url" json:"avatarUrl"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Match is a directional "like" edge. Two rows exist for a mutual pair.
type Match struct {
	ID        int64     `db:"id" json:"id"`
	LikerID   string    `db:"liker_id" json:"likerId"`
	LikedID   string    `db:"liked_id" json:"likedId"`
	IsMutual  bool      `db:"is_mutual" json:"isMutual"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Counterpart returns the other side of the edge relative to userID.
func (m *Match) Counterpart(userID string) string {
	if m.LikerID == userID {
		return m.LikedID
	}
	return m.LikerID
}

// Source is the categorical origin of a conversation.
type Source string

const (
	SourceMatch        Source = "MATCH"
	SourceActivityCard Source = "ACTIVITY_CARD"
	SourceActivityTrip Source = "ACTIVITY_TRIP"
)

// ParseSource maps a client supplied tag onto the closed enum. Unknown or
// empty values yield nil, meaning "no categorized origin yet".
func ParseSource(raw string) *Source {
	switch s := Source(strings.TrimSpace(raw)); s {
	case SourceMatch, SourceActivityCard, SourceActivityTrip:
		return &s
	default:
		return nil
	}
}

// Message is a single direct message between two users.
type Message struct {
	ID         int64     `db:"id" json:"id"`
	SenderID   string    `db:"sender_id" json:"senderId"`
	ReceiverID string    `db:"receiver_id" json:"receiverId"`
	Content    string    `db:"content" json:"content"`
	ImageURL   *string   `db:"image_url" json:"imageUrl,omitempty"`
	AudioURL   *string   `db:"audio_url" json:"audioUrl,omitempty"`
	Read       bool      `db:"is_read" json:"read"`
	Source     *Source   `db:"source" json:"source"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Counterpart returns the participant that is not userID.
func (m *Message) Counterpart(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Touches reports whether userID is the sender or the receiver.
func (m *Message) Touches(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// Before orders messages by creation time, then by insertion order.
func (m *Message) Before(o *Message) bool {
	if !m.CreatedAt.Equal(o.CreatedAt) {
		return m.CreatedAt.Before(o.CreatedAt)
	}
	return m.ID < o.ID
}

// Preview is the one-line summary shown in thread lists and notifications.
func (m *Message) Preview() string {
	switch {
	case m.Content != "":
		return m.Content
	case m.ImageURL != nil:
		return PreviewPhoto
	case m.AudioURL != nil:
		return PreviewVoice
	default:
		return ""
	}
}

const (
	// SeedContent marks the system message written when a match becomes mutual.
	SeedContent = "<conversation started>"
	// PreviewNotStarted is shown for a mutual match without any message.
	PreviewNotStarted = "(not started)"
	PreviewPhoto      = "[photo]"
	PreviewVoice      = "[voice message]"
)

// PairKey is the canonical key of the unordered pair {a, b}.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// Thread is the per-viewer summary of a conversation with one counterpart.
// It is derived and never persisted.
type Thread struct {
	CounterpartID string    `json:"id"`
	DisplayName   string    `json:"displayName"`
	Email         *string   `json:"email,omitempty"`
	AvatarURL     *string   `json:"avatarUrl"`
	LastMessage   string    `json:"lastMessage"`
	LastTimestamp time.Time `json:"lastTime"`
	UnreadCount   int       `json:"unreadCount"`
	Source        *Source   `json:"source"`
}
