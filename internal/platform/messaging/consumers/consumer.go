package consumers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/banking-txn-simulator/internal/config"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one fetched message; a non-nil error leaves its offset uncommitted
type MessageHandler func(ctx context.Context, topic string, key []byte, value []byte) error

// KafkaReader wraps the kafka.Reader methods used by the consumer, for testing
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer reads every routed topic within one consumer group
type KafkaConsumer struct {
	reader       KafkaReader
	logger       *slog.Logger
	topics       []string
	groupID      string
	retryBackoff time.Duration
}

func NewKafkaConsumer(logger *slog.Logger, cfg *config.KafkaConfig, topics []string) *KafkaConsumer {
	return &KafkaConsumer{
		logger:       logger,
		topics:       topics,
		groupID:      cfg.ConsumerGroup,
		retryBackoff: time.Second,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.BrokerList(),
			GroupID:     cfg.ConsumerGroup,
			GroupTopics: topics,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: kafka.FirstOffset,
		}),
	}
}

// Run fetches and handles messages until ctx is done
func (c *KafkaConsumer) Run(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("Subscribed to Kafka topics",
		"topics", c.topics,
		"group_id", c.groupID,
	)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("Context canceled, stopping consumer", "group_id", c.groupID)
				return nil
			}
			c.logger.Error("Failed to fetch message from Kafka",
				"group_id", c.groupID,
				"error", err,
			)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryBackoff):
			}
			continue
		}

		c.logger.Debug("Received message from Kafka",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
		)

		if err := handler(ctx, msg.Topic, msg.Key, msg.Value); err != nil {
			c.logger.Error("Failed to process message, will not commit offset",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"key", string(msg.Key),
				"error", err,
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("Failed to commit message after successful processing",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
