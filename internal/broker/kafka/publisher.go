package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"seniorweb/internal/domain"
	"seniorweb/internal/service"
)

// Publisher writes fan-out events to Kafka so every instance can deliver
// them to its own connections. Records are keyed by pair so one pair's
// events stay ordered within a partition.
type Publisher struct {
	sync  sarama.SyncProducer
	topic string
}

var _ service.Notifier = (*Publisher)(nil)

func NewPublisher(brokers []string, topic string, cfg *sarama.Config) (*Publisher, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1
	sync, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return newPublisher(sync, topic), nil
}

func newPublisher(sync sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{sync: sync, topic: topic}
}

func (p *Publisher) MessageCreated(ctx context.Context, m *domain.Message) error {
	return p.publish(ctx, domain.PairKey(m.SenderID, m.ReceiverID), Envelope{
		Type:    EventMessageCreated,
		Message: m,
	})
}

func (p *Publisher) ConversationRead(ctx context.Context, readerID, otherID string) error {
	return p.publish(ctx, domain.PairKey(readerID, otherID), Envelope{
		Type:     EventConversationRead,
		ReaderID: readerID,
		OtherID:  otherID,
	})
}

func (p *Publisher) MutualMatch(ctx context.Context, m *domain.Match) error {
	return p.publish(ctx, domain.PairKey(m.LikerID, m.LikedID), Envelope{
		Type:  EventMutualMatch,
		Match: m,
	})
}

// publish sends even when ctx is already done: the event describes a write
// that has been committed.
func (p *Publisher) publish(_ context.Context, key string, env Envelope) error {
	env.OccurredAt = time.Now().UTC()
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s: %w", env.Type, err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(env.Type)},
		},
	}
	if _, _, err := p.sync.SendMessage(msg); err != nil {
		return fmt.Errorf("publish %s: %w", env.Type, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}
