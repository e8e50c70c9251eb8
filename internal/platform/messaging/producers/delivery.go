package producers

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrFlushTimeout    = errors.New("flush did not complete within the timeout")
	ErrPublisherClosed = errors.New("publisher is closed")
	ErrDeliveryPending = errors.New("delivery not acknowledged yet")
	ErrStartup         = errors.New("transport connection could not be established")
)

// DeliveryError reports a transport-level failure for a single message
type DeliveryError struct {
	TransactionID string
	Topic         string
	Err           error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery of transaction %s to topic %s failed: %v", e.TransactionID, e.Topic, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Ack is the transport confirmation for one message
type Ack struct {
	TransactionID string
	Topic         string
	Partition     int32
	Offset        int64
}

// Delivery is the pending outcome of one Publish call.
// It is completed exactly once by the transport's delivery callback.
type Delivery struct {
	TransactionID string
	Topic         string

	done chan struct{}
	ack  Ack
	err  error
}

func newDelivery(transactionID, topic string) *Delivery {
	return &Delivery{
		TransactionID: transactionID,
		Topic:         topic,
		done:          make(chan struct{}),
	}
}

func (d *Delivery) complete(ack Ack, err error) {
	d.ack = ack
	d.err = err
	close(d.done)
}

// Done is closed once the transport has acknowledged or rejected the message
func (d *Delivery) Done() <-chan struct{} {
	return d.done
}

// Result returns the outcome without blocking; ErrDeliveryPending if there is none yet
func (d *Delivery) Result() (Ack, error) {
	select {
	case <-d.done:
		return d.ack, d.err
	default:
		return Ack{}, ErrDeliveryPending
	}
}

// Wait blocks until the outcome is known or ctx is done
func (d *Delivery) Wait(ctx context.Context) (Ack, error) {
	select {
	case <-d.done:
		return d.ack, d.err
	default:
	}

	select {
	case <-d.done:
		return d.ack, d.err
	case <-ctx.Done():
		return Ack{}, ErrDeliveryPending
	}
}
