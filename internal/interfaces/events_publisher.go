package interfaces

import "context"

// EventPublisher delivers integration events for committed statements
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
}
