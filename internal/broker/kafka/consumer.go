package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"seniorweb/internal/service"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// Dispatcher replays consumed envelopes into a local Notifier, normally the
// process's websocket hub.
type Dispatcher struct {
	Local service.Notifier
	Log   *slog.Logger
}

var errUnknownEvent = errors.New("unknown event type")

func (d Dispatcher) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	switch env.Type {
	case EventMessageCreated:
		if env.Message == nil {
			return fmt.Errorf("%s without message", env.Type)
		}
		return d.Local.MessageCreated(ctx, env.Message)
	case EventConversationRead:
		if env.ReaderID == "" || env.OtherID == "" {
			return fmt.Errorf("%s without participants", env.Type)
		}
		return d.Local.ConversationRead(ctx, env.ReaderID, env.OtherID)
	case EventMutualMatch:
		if env.Match == nil {
			return fmt.Errorf("%s without match", env.Type)
		}
		return d.Local.MutualMatch(ctx, env.Match)
	default:
		return fmt.Errorf("%w: %q", errUnknownEvent, env.Type)
	}
}

type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	log     *slog.Logger
}

// NewConsumer joins a consumer group unique to this process, so every
// instance sees every event. Only events published after start are read.
func NewConsumer(brokers []string, groupPrefix string, cfg *sarama.Config, handler MessageHandler, log *slog.Logger) (*Consumer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	g, err := sarama.NewConsumerGroup(brokers, GroupID(groupPrefix), cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer group: %w", err)
	}
	return &Consumer{group: g, handler: handler, log: log}, nil
}

// GroupID returns a fresh per-instance group id.
func GroupID(prefix string) string {
	if prefix == "" {
		prefix = "seniorweb-hub"
	}
	return prefix + "-" + uuid.NewString()
}

func (c *Consumer) Run(ctx context.Context, topics []string) error {
	for {
		if err := c.group.Consume(ctx, topics, consumerGroupHandler{handler: c.handler, log: c.log}); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type consumerGroupHandler struct {
	handler MessageHandler
	log     *slog.Logger
}

func (h consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks every record, handled or not: fan-out is at-most-once.
func (h consumerGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := h.handler.Handle(sess.Context(), message); err != nil && h.log != nil {
			h.log.Warn("kafka: drop event", "topic", message.Topic, "offset", message.Offset, "err", err)
		}
		sess.MarkMessage(message, "")
	}
	return nil
}
