package producers

import (
	"context"
	"io"
	"log/slog"

	"github.com/banking-txn-simulator/internal/config"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
	"github.com/twmb/franz-go/pkg/kgo"
)

// produceFunc decides what happens to a produced record; it may call promise
// synchronously, from another goroutine, or never
type produceFunc func(r *kgo.Record, promise func(*kgo.Record, error))

// MockKafkaClient mocks KafkaClient interface
type MockKafkaClient struct {
	mock.Mock
}

func (m *MockKafkaClient) Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	args := m.Called(ctx, r)
	if fn, ok := args.Get(0).(produceFunc); ok && fn != nil {
		fn(r, promise)
	}
}

func (m *MockKafkaClient) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockKafkaClient) Close() {
	m.Called()
}

// MockKafkaWriter mocks KafkaWriter interface
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockDeadLetterPublisher mocks DeadLetterPublisher interface
type MockDeadLetterPublisher struct {
	mock.Mock
}

func (m *MockDeadLetterPublisher) PublishToDLQ(ctx context.Context, letters ...DeadLetter) error {
	args := m.Called(ctx, letters)
	return args.Error(0)
}

func (m *MockDeadLetterPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockTopicAdmin mocks TopicAdmin interface
type MockTopicAdmin struct {
	mock.Mock
}

func (m *MockTopicAdmin) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	args := m.Called(topics)
	partitions, _ := args.Get(0).([]kafka.Partition)
	return partitions, args.Error(1)
}

func (m *MockTopicAdmin) CreateTopics(topics ...kafka.TopicConfig) error {
	args := m.Called(topics)
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func defaultTopics() config.TopicsConfig {
	return config.TopicsConfig{IBFT: "IBFT", QR: "qr_payments", TopUp: "topup_wallet"}
}

// ackAsync acknowledges every record from a separate goroutine, like the real client
func ackAsync() produceFunc {
	return func(r *kgo.Record, promise func(*kgo.Record, error)) {
		go promise(r, nil)
	}
}
