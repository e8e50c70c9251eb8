package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionType(t *testing.T) {
	for _, want := range AllTransactionTypes {
		got, err := ParseTransactionType(string(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseTransactionType("BOGUS")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTransactionType))

	_, err = ParseTransactionType("ibft")
	assert.Error(t, err, "type tags are case sensitive")
}

func TestTransactionType_IsValid(t *testing.T) {
	assert.True(t, TransactionTypeIBFT.IsValid())
	assert.True(t, TransactionTypeQR.IsValid())
	assert.True(t, TransactionTypeTopUp.IsValid())
	assert.False(t, TransactionType("").IsValid())
	assert.False(t, TransactionType("BOGUS").IsValid())
	assert.Len(t, AllTransactionTypes, 3)
}
