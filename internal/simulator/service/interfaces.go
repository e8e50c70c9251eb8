package service

import (
	"context"

	"github.com/banking-txn-simulator/internal/domain/transaction"
	"github.com/banking-txn-simulator/internal/platform/messaging/producers"
)

// BatchGenerator produces the transactions of one batch
type BatchGenerator interface {
	GenerateBatch(n int) []*transaction.Transaction
}

// BatchPublisher publishes a batch and owns the transport connection
type BatchPublisher interface {
	PublishBatch(ctx context.Context, txs []*transaction.Transaction) producers.BatchResult
	Close() error
}
