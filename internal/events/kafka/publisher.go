package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	interfaces "github.com/sheikh-saqib/statement-ledger-api/internal/interfaces"
	"github.com/sheikh-saqib/statement-ledger-api/internal/models/events"
)

// Publisher writes JSON events to <prefix>.<topic>. Messages are keyed by the
// owning user so one user's events stay ordered within a partition.
// Writes are async: Publish only enqueues, and delivery failures are logged.
type Publisher struct {
	writer *kafka.Writer
	prefix string
	logger *slog.Logger
}

func NewPublisher(brokers []string, topicPrefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{prefix: topicPrefix, logger: logger}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion:             p.completed,
	}
	return p
}

func (p *Publisher) completed(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range messages {
		p.logger.Error("deliver event failed", "topic", m.Topic, "key", string(m.Key), "error", err)
	}
}

func (p *Publisher) Publish(ctx context.Context, topic string, event any) error {
	msg, err := p.message(topic, event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", msg.Topic, err)
	}
	return nil
}

func (p *Publisher) message(topic string, event any) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}
	full := topic
	if p.prefix != "" {
		full = p.prefix + "." + topic
	}
	return kafka.Message{
		Topic: full,
		Key:   []byte(eventKey(event)),
		Value: data,
	}, nil
}

func eventKey(event any) string {
	switch e := event.(type) {
	case events.StatementCreated:
		return e.UserID
	case events.TransferCompleted:
		return e.FromUser
	default:
		return ""
	}
}

// Close flushes queued messages
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
