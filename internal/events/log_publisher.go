// Package events holds the EventPublisher used when no broker is configured.
package events

import (
	"context"
	"log/slog"

	interfaces "github.com/sheikh-saqib/statement-ledger-api/internal/interfaces"
)

// LogPublisher writes events to the logger at debug level
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, event any) error {
	p.logger.DebugContext(ctx, "event", "topic", topic, "payload", event)
	return nil
}

var _ interfaces.EventPublisher = (*LogPublisher)(nil)
