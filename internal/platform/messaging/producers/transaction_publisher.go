package producers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banking-txn-simulator/internal/domain/transaction"
	"github.com/panjf2000/ants/v2"
	"github.com/twmb/franz-go/pkg/kgo"
)

// DefaultFlushTimeout bounds the end-of-batch flush and the flush on Close
const DefaultFlushTimeout = 10 * time.Second

// TransactionTypeHeader carries the transaction type next to the payload
const TransactionTypeHeader = "transaction_type"

// BatchResult summarizes one PublishBatch call
type BatchResult struct {
	Attempted int
	Succeeded int   // Acknowledged by the transport before the flush deadline
	Failed    int   // Rejected by routing, encoding or the transport
	Pending   int   // Accepted by the transport but unacknowledged when the flush deadline hit
	FlushErr  error // Non-nil when the flush did not complete, wraps ErrFlushTimeout on timeout
	Duration  time.Duration
}

// PublisherOptions tunes a TransactionPublisher
type PublisherOptions struct {
	FlushTimeout   time.Duration
	WorkerPoolSize int                 // >1 hands the publish calls of a batch to a worker pool
	DeadLetter     DeadLetterPublisher // Optional, receives messages whose delivery failed
}

// TransactionPublisher routes transactions to their topic and publishes them
// keyed by transaction id
type TransactionPublisher struct {
	logger       *slog.Logger
	client       KafkaClient // Interface for testability
	router       *Router
	deadLetter   DeadLetterPublisher
	pool         *ants.Pool
	flushTimeout time.Duration
	closed       atomic.Bool
}

// NewTransactionPublisher creates a publisher on top of an existing client
func NewTransactionPublisher(logger *slog.Logger, client KafkaClient, router *Router, opts PublisherOptions) (*TransactionPublisher, error) {
	if client == nil {
		return nil, fmt.Errorf("kafka client is required")
	}
	if router == nil {
		return nil, fmt.Errorf("router is required")
	}

	flushTimeout := opts.FlushTimeout
	if flushTimeout <= 0 {
		flushTimeout = DefaultFlushTimeout
	}

	p := &TransactionPublisher{
		logger:       logger,
		client:       client,
		router:       router,
		deadLetter:   opts.DeadLetter,
		flushTimeout: flushTimeout,
	}

	if opts.WorkerPoolSize > 1 {
		pool, err := ants.NewPool(opts.WorkerPoolSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create publish worker pool: %w", err)
		}
		p.pool = pool
	}

	return p, nil
}

// Publish routes and serializes tx and hands it to the transport.
// Routing, encoding and closed-publisher errors are returned immediately;
// transport outcomes arrive through the returned Delivery.
func (p *TransactionPublisher) Publish(ctx context.Context, tx *transaction.Transaction) (*Delivery, error) {
	if p.closed.Load() {
		return nil, ErrPublisherClosed
	}

	topic, err := p.router.Route(tx.TransactionType)
	if err != nil {
		p.logger.Error("Unknown transaction type, message not sent",
			"transaction_id", tx.TransactionID,
			"transaction_type", string(tx.TransactionType),
			"available_topics", p.router.Topics(),
		)
		return nil, err
	}

	value, err := transaction.Encode(tx)
	if err != nil {
		return nil, &DeliveryError{TransactionID: tx.TransactionID, Topic: topic, Err: err}
	}

	delivery := newDelivery(tx.TransactionID, topic)
	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(tx.TransactionID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: TransactionTypeHeader, Value: []byte(tx.TransactionType)},
		},
	}

	p.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("Message delivery failed",
				"topic", topic,
				"transaction_id", tx.TransactionID,
				"error", err,
			)
			delivery.complete(Ack{}, &DeliveryError{TransactionID: tx.TransactionID, Topic: topic, Err: err})
			return
		}
		p.logger.Debug("Message delivered",
			"topic", r.Topic,
			"partition", r.Partition,
			"offset", r.Offset,
			"transaction_id", tx.TransactionID,
		)
		delivery.complete(Ack{
			TransactionID: tx.TransactionID,
			Topic:         r.Topic,
			Partition:     r.Partition,
			Offset:        r.Offset,
		}, nil)
	})

	return delivery, nil
}

// PublishBatch publishes every transaction, then flushes once and waits for
// the outstanding deliveries until the flush deadline.
func (p *TransactionPublisher) PublishBatch(ctx context.Context, txs []*transaction.Transaction) BatchResult {
	start := time.Now()
	result := BatchResult{Attempted: len(txs)}

	deliveries := make([]*Delivery, len(txs))
	publishErrs := make([]error, len(txs))
	publishOne := func(i int) {
		deliveries[i], publishErrs[i] = p.Publish(ctx, txs[i])
	}

	if p.pool != nil {
		var wg sync.WaitGroup
		for i := range txs {
			i := i
			wg.Add(1)
			if err := p.pool.Submit(func() {
				defer wg.Done()
				publishOne(i)
			}); err != nil {
				wg.Done()
				publishErrs[i] = fmt.Errorf("failed to submit publish task: %w", err)
			}
		}
		wg.Wait()
	} else {
		for i := range txs {
			publishOne(i)
		}
	}

	flushCtx, cancel := context.WithTimeout(ctx, p.flushTimeout)
	defer cancel()
	result.FlushErr = p.flush(flushCtx)

	var letters []DeadLetter
	for i, delivery := range deliveries {
		if publishErrs[i] != nil {
			result.Failed++
			p.logger.Error("Error sending transaction",
				"transaction_id", txs[i].TransactionID,
				"error", publishErrs[i],
			)
			continue
		}

		_, err := delivery.Wait(flushCtx)
		switch {
		case err == nil:
			result.Succeeded++
		case errors.Is(err, ErrDeliveryPending):
			result.Pending++
		default:
			result.Failed++
			if letter, ok := p.deadLetterFor(txs[i], err); ok {
				letters = append(letters, letter)
			}
		}
	}
	p.forwardToDeadLetter(ctx, letters)

	result.Duration = time.Since(start)

	if result.Pending > 0 {
		p.logger.Warn("Batch flush incomplete, messages still in flight",
			"pending", result.Pending,
			"flush_timeout", p.flushTimeout.String(),
		)
	}
	p.logger.Info(fmt.Sprintf("Successfully sent %d/%d transactions", result.Succeeded, result.Attempted),
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"pending", result.Pending,
		"duration", result.Duration.String(),
	)

	return result
}

// Close flushes pending sends within the flush timeout and releases the client.
// Publishing after Close returns ErrPublisherClosed; repeated calls are no-ops.
func (p *TransactionPublisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	p.logger.Info("Closing Kafka transaction publisher", "topics", p.router.Topics())

	ctx, cancel := context.WithTimeout(context.Background(), p.flushTimeout)
	defer cancel()
	flushErr := p.flush(ctx)
	if flushErr != nil {
		p.logger.Error("Error flushing producer on close", "error", flushErr)
	}

	if p.pool != nil {
		p.pool.Release()
	}
	p.client.Close()

	var dlqErr error
	if p.deadLetter != nil {
		dlqErr = p.deadLetter.Close()
	}

	p.logger.Info("Kafka producer connection closed")
	return errors.Join(flushErr, dlqErr)
}

func (p *TransactionPublisher) flush(ctx context.Context) error {
	err := p.client.Flush(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrFlushTimeout, p.flushTimeout)
	}
	return fmt.Errorf("failed to flush producer: %w", err)
}

func (p *TransactionPublisher) deadLetterFor(tx *transaction.Transaction, cause error) (DeadLetter, bool) {
	if p.deadLetter == nil {
		return DeadLetter{}, false
	}
	value, err := transaction.Encode(tx)
	if err != nil {
		p.logger.Error("Failed to encode transaction for DLQ", "transaction_id", tx.TransactionID, "error", err)
		return DeadLetter{}, false
	}
	return DeadLetter{Key: tx.TransactionID, Value: value, Reason: cause.Error()}, true
}

// forwardToDeadLetter writes the rejected messages of a batch in one call,
// bounded by the flush timeout
func (p *TransactionPublisher) forwardToDeadLetter(ctx context.Context, letters []DeadLetter) {
	if p.deadLetter == nil || len(letters) == 0 {
		return
	}
	dlqCtx, cancel := context.WithTimeout(ctx, p.flushTimeout)
	defer cancel()
	if err := p.deadLetter.PublishToDLQ(dlqCtx, letters...); err != nil {
		p.logger.Error("Failed to forward failed deliveries to DLQ", "count", len(letters), "error", err)
	}
}
