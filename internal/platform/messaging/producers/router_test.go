package producers

import (
	"errors"
	"testing"

	"github.com/banking-txn-simulator/internal/config"
	"github.com/banking-txn-simulator/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRouter(t *testing.T) {
	t.Run("DefaultTable", func(t *testing.T) {
		router, err := NewRouter(defaultTopics())
		require.NoError(t, err)
		assert.Equal(t, []string{"IBFT", "qr_payments", "topup_wallet"}, router.Topics())
	})

	t.Run("MissingTopic", func(t *testing.T) {
		topics := defaultTopics()
		topics.TopUp = ""
		router, err := NewRouter(topics)
		require.Error(t, err)
		assert.Nil(t, router)
		assert.Contains(t, err.Error(), "TOPUP")
	})

	t.Run("SharedTopic", func(t *testing.T) {
		router, err := NewRouter(config.TopicsConfig{IBFT: "all", QR: "all", TopUp: "topup_wallet"})
		require.Error(t, err)
		assert.Nil(t, router)
		assert.Contains(t, err.Error(), "routed for both")
	})
}

func TestRouter_Route(t *testing.T) {
	router, err := NewRouter(defaultTopics())
	require.NoError(t, err)

	testCases := []struct {
		txType shared.TransactionType
		topic  string
	}{
		{shared.TransactionTypeIBFT, "IBFT"},
		{shared.TransactionTypeQR, "qr_payments"},
		{shared.TransactionTypeTopUp, "topup_wallet"},
	}
	for _, tc := range testCases {
		t.Run(string(tc.txType), func(t *testing.T) {
			topic, err := router.Route(tc.txType)
			require.NoError(t, err)
			assert.Equal(t, tc.topic, topic)

			back, err := router.TypeForTopic(tc.topic)
			require.NoError(t, err)
			assert.Equal(t, tc.txType, back)
		})
	}

	t.Run("UnknownType", func(t *testing.T) {
		topic, err := router.Route("CARD")
		require.Error(t, err)
		assert.Empty(t, topic)
		assert.True(t, errors.Is(err, shared.ErrUnknownTransactionType))

		var unknown *UnknownTransactionTypeError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, shared.TransactionType("CARD"), unknown.Type)
	})

	t.Run("UnknownTopic", func(t *testing.T) {
		_, err := router.TypeForTopic("card_payments")
		assert.Error(t, err)
	})
}
