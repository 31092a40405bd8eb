package domain

import (
	"context"
)

// UserRepository defines read access to user profiles.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	// GetByIDs resolves many profiles in one round trip. Missing ids are
	// absent from the result.
	GetByIDs(ctx context.Context, ids []string) (map[string]*User, error)
	// ListCandidates returns users other than viewerID that viewerID has not
	// liked yet, newest first.
	ListCandidates(ctx context.Context, viewerID string, limit int) ([]*User, error)
}

// MatchRepository defines persistence operations for like edges.
type MatchRepository interface {
	// Find returns ErrNotFound when the directed edge does not exist.
	Find(ctx context.Context, likerID, likedID string) (*Match, error)
	// Upsert creates the directed edge or leaves the existing row in place.
	// isMutual may only raise the stored flag, never clear it.
	Upsert(ctx context.Context, likerID, likedID string, isMutual bool) (*Match, error)
	// MarkMutual flips both directions of the pair to mutual with a single
	// conditional update and reports how many rows changed.
	MarkMutual(ctx context.Context, a, b string) (int64, error)
	ListMutual(ctx context.Context, userID string) ([]*Match, error)
}

// MessageRepository defines persistence operations for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	// CreateSeed inserts m only when no message exists between the pair yet.
	// A unique seed key per pair turns a concurrent duplicate into a no-op.
	CreateSeed(ctx context.Context, m *Message) (bool, error)
	// ListBetween returns the newest limit messages of the pair in
	// chronological order.
	ListBetween(ctx context.Context, a, b string, limit int) ([]*Message, error)
	// ListTouching returns every message sent or received by userID in
	// chronological order.
	ListTouching(ctx context.Context, userID string) ([]*Message, error)
	// MarkRead flips unread messages from senderID to receiverID in one
	// conditional update.
	MarkRead(ctx context.Context, receiverID, senderID string) (int64, error)
	CountUnread(ctx context.Context, receiverID, senderID string) (int, error)
}
