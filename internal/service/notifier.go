package service

import (
	"context"
	"log/slog"

	"seniorweb/internal/domain"
)

// Notifier fans out state changes after they are durably stored. Delivery is
// best-effort: implementations may drop events and callers never roll back
// on a notifier error.
type Notifier interface {
	MessageCreated(ctx context.Context, m *domain.Message) error
	ConversationRead(ctx context.Context, readerID, otherID string) error
	MutualMatch(ctx context.Context, m *domain.Match) error
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) MessageCreated(context.Context, *domain.Message) error  { return nil }
func (NopNotifier) ConversationRead(context.Context, string, string) error { return nil }
func (NopNotifier) MutualMatch(context.Context, *domain.Match) error       { return nil }

func logNotifyErr(log *slog.Logger, event string, err error) {
	if err != nil && log != nil {
		log.Warn("notify failed", "event", event, "err", err)
	}
}
