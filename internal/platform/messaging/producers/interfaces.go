package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaClient wraps the kgo.Client methods used for publishing, for testing
type KafkaClient interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// DeadLetterPublisher handles publishing failed deliveries to a Dead Letter Queue.
// All letters of one call are written together.
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, letters ...DeadLetter) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
