package producers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/banking-txn-simulator/internal/config"
	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"
)

var dlqCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrDLQDisabled is returned when publishing through a producer without a writer
var ErrDLQDisabled = errors.New("DLQ producer not initialized")

// DeadLetterMessage wraps a transaction whose delivery was rejected
type DeadLetterMessage struct {
	OriginalKey   string `json:"original_key"`
	OriginalValue string `json:"original_value"`
	DLQReason     string `json:"dlq_reason"`
	Timestamp     string `json:"timestamp"`
}

// DeadLetter is one rejected message bound for the dead-letter topic
type DeadLetter struct {
	Key    string
	Value  []byte
	Reason string
}

// DLQProducer writes failed deliveries to the dead-letter topic through kafka-go
type DLQProducer struct {
	logger   *slog.Logger
	writer   KafkaWriter
	dlqTopic string
}

// NewDLQProducer returns a nil producer if cfg.DLQTopic is empty (DLQ disabled).
// The topic itself is provisioned by EnsureTopics.
func NewDLQProducer(logger *slog.Logger, cfg *config.KafkaConfig) *DLQProducer {
	if cfg.DLQTopic == "" {
		logger.Info("DLQ topic is not configured. DLQProducer will not be initialized.")
		return nil
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.BrokerList()...),
		Topic:        cfg.DLQTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  cfg.ProducerRetries + 1,
		WriteTimeout: cfg.FlushTimeout,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write DLQ messages", "topic", cfg.DLQTopic, "error", err, "count", len(messages))
			}
		},
	}

	return &DLQProducer{
		logger:   logger,
		writer:   writer,
		dlqTopic: cfg.DLQTopic,
	}
}

// PublishToDLQ writes every letter in a single WriteMessages call, so one
// deadline on ctx bounds the whole forward
func (p *DLQProducer) PublishToDLQ(ctx context.Context, letters ...DeadLetter) error {
	if p == nil || p.writer == nil {
		return ErrDLQDisabled
	}
	if len(letters) == 0 {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	msgs := make([]kafka.Message, 0, len(letters))
	for _, letter := range letters {
		payload, err := dlqCodec.Marshal(DeadLetterMessage{
			OriginalKey:   letter.Key,
			OriginalValue: string(letter.Value),
			DLQReason:     letter.Reason,
			Timestamp:     now,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal DLQ message for key %s: %w", letter.Key, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(letter.Key),
			Value: payload,
			Headers: []kafka.Header{
				{Key: "dlq-reason", Value: []byte(letter.Reason)},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error("Failed to publish messages to DLQ",
			"topic", p.dlqTopic,
			"count", len(msgs),
			"error", err,
		)
		return fmt.Errorf("failed to publish %d messages to DLQ %s: %w", len(msgs), p.dlqTopic, err)
	}

	p.logger.Warn("Published failed deliveries to DLQ",
		"topic", p.dlqTopic,
		"count", len(msgs),
	)
	return nil
}

func (p *DLQProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	p.logger.Info("Closing DLQ Kafka message producer", "topic", p.dlqTopic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close dlq kafka writer for topic %s: %w", p.dlqTopic, err)
	}
	return nil
}
