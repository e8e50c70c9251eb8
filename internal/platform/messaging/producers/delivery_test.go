package producers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelivery(t *testing.T) {
	t.Run("PendingUntilCompleted", func(t *testing.T) {
		d := newDelivery("tx-1", "IBFT")
		_, err := d.Result()
		assert.ErrorIs(t, err, ErrDeliveryPending)

		d.complete(Ack{TransactionID: "tx-1", Topic: "IBFT", Partition: 2, Offset: 41}, nil)

		select {
		case <-d.Done():
		default:
			t.Fatal("Done must be closed after completion")
		}
		ack, err := d.Result()
		require.NoError(t, err)
		assert.Equal(t, int32(2), ack.Partition)
		assert.Equal(t, int64(41), ack.Offset)
	})

	t.Run("WaitReturnsTransportError", func(t *testing.T) {
		d := newDelivery("tx-2", "qr_payments")
		cause := errors.New("broker rejected record")
		go d.complete(Ack{}, &DeliveryError{TransactionID: "tx-2", Topic: "qr_payments", Err: cause})

		_, err := d.Wait(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)

		var deliveryErr *DeliveryError
		require.True(t, errors.As(err, &deliveryErr))
		assert.Equal(t, "tx-2", deliveryErr.TransactionID)
		assert.Contains(t, err.Error(), "qr_payments")
	})

	t.Run("WaitGivesUpWhenContextEnds", func(t *testing.T) {
		d := newDelivery("tx-3", "topup_wallet")
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := d.Wait(ctx)
		assert.ErrorIs(t, err, ErrDeliveryPending)
	})

	t.Run("CompletedBeatsExpiredContext", func(t *testing.T) {
		d := newDelivery("tx-4", "IBFT")
		d.complete(Ack{TransactionID: "tx-4"}, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ack, err := d.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, "tx-4", ack.TransactionID)
	})
}
