package producers

import (
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateMissingTopics(t *testing.T) {
	topics := []string{"IBFT", "qr_payments", "topup_wallet"}

	t.Run("CreatesOnlyMissing", func(t *testing.T) {
		admin := new(MockTopicAdmin)
		admin.On("ReadPartitions", []string(nil)).Return([]kafka.Partition{
			{Topic: "IBFT", ID: 0},
			{Topic: "IBFT", ID: 1},
			{Topic: "__consumer_offsets", ID: 0},
		}, nil).Once()
		admin.On("CreateTopics", []kafka.TopicConfig{
			{Topic: "qr_payments", NumPartitions: 3, ReplicationFactor: 1},
			{Topic: "topup_wallet", NumPartitions: 3, ReplicationFactor: 1},
		}).Return(nil).Once()

		err := createMissingTopics(admin, topics, 3, 1, newTestLogger())
		require.NoError(t, err)
		admin.AssertExpectations(t)
	})

	t.Run("NothingMissing", func(t *testing.T) {
		admin := new(MockTopicAdmin)
		admin.On("ReadPartitions", []string(nil)).Return([]kafka.Partition{
			{Topic: "IBFT"}, {Topic: "qr_payments"}, {Topic: "topup_wallet"},
		}, nil).Once()

		err := createMissingTopics(admin, topics, 3, 1, newTestLogger())
		require.NoError(t, err)
		admin.AssertNotCalled(t, "CreateTopics", mock.Anything)
	})

	t.Run("DefaultsNonPositiveSizing", func(t *testing.T) {
		admin := new(MockTopicAdmin)
		admin.On("ReadPartitions", []string(nil)).Return([]kafka.Partition{}, nil).Once()
		admin.On("CreateTopics", []kafka.TopicConfig{
			{Topic: "dlq", NumPartitions: 1, ReplicationFactor: 1},
		}).Return(nil).Once()

		err := createMissingTopics(admin, []string{"dlq"}, 0, 0, newTestLogger())
		require.NoError(t, err)
		admin.AssertExpectations(t)
	})

	t.Run("ReadError", func(t *testing.T) {
		admin := new(MockTopicAdmin)
		admin.On("ReadPartitions", []string(nil)).Return(nil, errors.New("connection reset")).Once()

		err := createMissingTopics(admin, topics, 3, 1, newTestLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("CreateError", func(t *testing.T) {
		admin := new(MockTopicAdmin)
		admin.On("ReadPartitions", []string(nil)).Return([]kafka.Partition{}, nil).Once()
		admin.On("CreateTopics", mock.Anything).Return(errors.New("not controller")).Once()

		err := createMissingTopics(admin, topics, 3, 1, newTestLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not controller")
	})
}
