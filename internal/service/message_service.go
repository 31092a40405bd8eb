package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"seniorweb/internal/domain"
)

// MaxContentRunes caps the length of a message body.
const MaxContentRunes = 5000

// MessageService sends direct messages and keeps read state. It is the only
// write path for messages apart from the match seed.
type MessageService struct {
	users    domain.UserRepository
	messages domain.MessageRepository
	notifier Notifier
	log      *slog.Logger

	HistoryLimit int
}

func NewMessageService(
	users domain.UserRepository,
	messages domain.MessageRepository,
	notifier Notifier,
	log *slog.Logger,
	historyLimit int,
) *MessageService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &MessageService{
		users:        users,
		messages:     messages,
		notifier:     notifier,
		log:          log,
		HistoryLimit: historyLimit,
	}
}

type SendInput struct {
	SenderID   string
	ReceiverID string
	Content    string
	ImageURL   *string
	AudioURL   *string
	// Source is coerced to nil when it is not a known tag.
	Source string
}

// Send validates and stores a message, then notifies. The notification is
// emitted only after the store acknowledged the write.
func (s *MessageService) Send(ctx context.Context, in SendInput) (*domain.Message, error) {
	sender, receiver := strings.TrimSpace(in.SenderID), strings.TrimSpace(in.ReceiverID)
	if sender == "" || receiver == "" {
		return nil, fmt.Errorf("%w: sender and receiver are required", domain.ErrInvalidOperation)
	}
	if sender == receiver {
		return nil, fmt.Errorf("%w: cannot message yourself", domain.ErrInvalidOperation)
	}

	content := strings.TrimSpace(in.Content)
	image, audio := nonEmpty(in.ImageURL), nonEmpty(in.AudioURL)
	if content == "" && image == nil && audio == nil {
		return nil, fmt.Errorf("%w: message content cannot be empty", domain.ErrInvalidOperation)
	}
	if len([]rune(content)) > MaxContentRunes {
		return nil, fmt.Errorf("%w: message content exceeds %d characters", domain.ErrInvalidOperation, MaxContentRunes)
	}

	if _, err := s.users.GetByID(ctx, receiver); err != nil {
		return nil, fmt.Errorf("get receiver: %w", err)
	}

	msg := &domain.Message{
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    content,
		ImageURL:   image,
		AudioURL:   audio,
		Source:     domain.ParseSource(in.Source),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	logNotifyErr(s.log, "message-created", s.notifier.MessageCreated(context.WithoutCancel(ctx), msg))
	return msg, nil
}

// Conversation is the opened history between the viewer and a counterpart.
type Conversation struct {
	Messages []*domain.Message `json:"messages"`
	Other    *domain.User      `json:"other"`
	Me       *domain.User      `json:"me"`
	// Source is the latest categorized origin found in the history.
	Source *domain.Source `json:"source"`
}

// OpenConversation flips every unread message from otherID to viewerID and
// then loads the history. Messages stored after the flip stay unread.
func (s *MessageService) OpenConversation(ctx context.Context, viewerID, otherID string) (*Conversation, error) {
	viewerID, otherID = strings.TrimSpace(viewerID), strings.TrimSpace(otherID)
	if err := validatePair(viewerID, otherID); err != nil {
		return nil, err
	}

	other, err := s.users.GetByID(ctx, otherID)
	if err != nil {
		return nil, fmt.Errorf("get counterpart: %w", err)
	}
	me, err := s.users.GetByID(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("get viewer: %w", err)
	}

	if _, err := s.markRead(ctx, viewerID, otherID); err != nil {
		return nil, err
	}

	limit := s.HistoryLimit
	if limit <= 0 {
		limit = 200
	}
	msgs, err := s.messages.ListBetween(ctx, viewerID, otherID, limit)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*domain.Message{}
	}

	conv := &Conversation{Messages: msgs, Other: other, Me: me}
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Source != nil {
			conv.Source = msgs[i].Source
			break
		}
	}
	return conv, nil
}

// MarkRead flips unread messages from otherID to viewerID without loading
// history and reports how many changed.
func (s *MessageService) MarkRead(ctx context.Context, viewerID, otherID string) (int64, error) {
	viewerID, otherID = strings.TrimSpace(viewerID), strings.TrimSpace(otherID)
	if err := validatePair(viewerID, otherID); err != nil {
		return 0, err
	}
	return s.markRead(ctx, viewerID, otherID)
}

func (s *MessageService) markRead(ctx context.Context, viewerID, otherID string) (int64, error) {
	n, err := s.messages.MarkRead(ctx, viewerID, otherID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logNotifyErr(s.log, "conversation-read", s.notifier.ConversationRead(context.WithoutCancel(ctx), viewerID, otherID))
	}
	return n, nil
}

// UnreadCount is the number of unread messages from otherID to viewerID.
func (s *MessageService) UnreadCount(ctx context.Context, viewerID, otherID string) (int, error) {
	return s.messages.CountUnread(ctx, viewerID, otherID)
}

func validatePair(viewerID, otherID string) error {
	if viewerID == "" || otherID == "" {
		return fmt.Errorf("%w: both user ids are required", domain.ErrInvalidOperation)
	}
	if viewerID == otherID {
		return fmt.Errorf("%w: cannot open a conversation with yourself", domain.ErrInvalidOperation)
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
