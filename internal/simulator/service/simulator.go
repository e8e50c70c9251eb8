package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banking-txn-simulator/internal/config"
	"github.com/banking-txn-simulator/internal/platform/messaging/producers"
)

// ErrAlreadyStarted is returned by Start on a simulator that has run before
var ErrAlreadyStarted = errors.New("simulator already started")

// previewSize is how many transactions of each batch are logged at debug level
const previewSize = 3

// State of the simulation loop
type State int32

const (
	StateStopped State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Stats are the counters of the current run
type Stats struct {
	State         string     `json:"state"`
	Batches       uint64     `json:"batches"`
	Attempted     uint64     `json:"attempted"`
	Succeeded     uint64     `json:"succeeded"`
	Failed        uint64     `json:"failed"`
	Pending       uint64     `json:"pending"`
	FlushTimeouts uint64     `json:"flush_timeouts"`
	StartedAt     *time.Time `json:"started_at,omitempty"`    // nil until Start
	LastBatchAt   *time.Time `json:"last_batch_at,omitempty"` // nil until the first batch
}

// Simulator drives the generate, publish, sleep loop
type Simulator struct {
	logger    *slog.Logger
	generator BatchGenerator
	publisher BatchPublisher
	interval  func() time.Duration

	batchSize  int
	maxBatches int

	state    atomic.Int32
	used     atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once

	batches       atomic.Uint64
	attempted     atomic.Uint64
	succeeded     atomic.Uint64
	failed        atomic.Uint64
	pending       atomic.Uint64
	flushTimeouts atomic.Uint64
	startedAt     atomic.Int64
	lastBatchAt   atomic.Int64
}

// NewSimulator wires a loop around a generator and a publisher. interval is
// drawn before every sleep and must stay within the configured bounds.
func NewSimulator(
	cfg *config.SimulationConfig,
	generator BatchGenerator,
	publisher BatchPublisher,
	interval func() time.Duration,
	logger *slog.Logger,
) *Simulator {
	return &Simulator{
		logger:     logger,
		generator:  generator,
		publisher:  publisher,
		interval:   interval,
		batchSize:  cfg.BatchSize,
		maxBatches: cfg.MaxBatches,
		stopCh:     make(chan struct{}),
	}
}

// Start runs the loop until ctx is done, Stop is called or the batch limit is
// reached, then closes the publisher. A batch in flight is always completed.
func (s *Simulator) Start(ctx context.Context) error {
	if !s.used.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	s.state.Store(int32(StateRunning))
	s.startedAt.Store(time.Now().UnixNano())

	s.logger.Info("Starting transaction simulation",
		"batch_size", s.batchSize,
		"max_batches", s.maxBatches,
	)

	s.run(ctx)

	s.state.Store(int32(StateStopping))
	s.logger.Info("Stopping transaction simulation", "batches", s.batches.Load())

	err := s.publisher.Close()
	s.state.Store(int32(StateStopped))

	stats := s.Stats()
	s.logger.Info("Transaction simulation stopped",
		"batches", stats.Batches,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"pending", stats.Pending,
	)

	if err != nil {
		return fmt.Errorf("failed to close publisher: %w", err)
	}
	return nil
}

func (s *Simulator) run(ctx context.Context) {
	// batches are published on a context that ignores cancellation so a
	// shutdown never abandons a batch between publish and flush
	publishCtx := context.WithoutCancel(ctx)

	for s.running(ctx) {
		batchNo := s.batches.Load() + 1
		batch := s.generator.GenerateBatch(s.batchSize)
		for i := 0; i < len(batch) && i < previewSize; i++ {
			s.logger.Debug("Generated transaction",
				"batch", batchNo,
				"transaction_type", string(batch[i].TransactionType),
				"transaction_id", batch[i].TransactionID,
			)
		}

		result := s.publisher.PublishBatch(publishCtx, batch)
		s.record(result)

		s.logger.Info(fmt.Sprintf("Batch %d: sent %d/%d transactions", batchNo, result.Succeeded, result.Attempted),
			"failed", result.Failed,
			"pending", result.Pending,
			"duration", result.Duration.String(),
		)

		if s.maxBatches > 0 && int(s.batches.Load()) >= s.maxBatches {
			s.logger.Info("Batch limit reached", "max_batches", s.maxBatches)
			return
		}

		wait := s.interval()
		s.logger.Debug("Waiting before next batch", "interval", wait.String())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (s *Simulator) running(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-s.stopCh:
		return false
	default:
		return State(s.state.Load()) == StateRunning
	}
}

func (s *Simulator) record(result producers.BatchResult) {
	s.batches.Add(1)
	s.attempted.Add(uint64(result.Attempted))
	s.succeeded.Add(uint64(result.Succeeded))
	s.failed.Add(uint64(result.Failed))
	s.pending.Add(uint64(result.Pending))
	if errors.Is(result.FlushErr, producers.ErrFlushTimeout) {
		s.flushTimeouts.Add(1)
	}
	s.lastBatchAt.Store(time.Now().UnixNano())
}

// Stop asks a running loop to finish its current batch and shut down.
// It does not wait; Start returns once the publisher is closed.
func (s *Simulator) Stop() {
	if s.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		s.logger.Info("Stop requested, finishing current batch")
	}
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *Simulator) State() State {
	return State(s.state.Load())
}

func (s *Simulator) Stats() Stats {
	stats := Stats{
		State:         s.State().String(),
		Batches:       s.batches.Load(),
		Attempted:     s.attempted.Load(),
		Succeeded:     s.succeeded.Load(),
		Failed:        s.failed.Load(),
		Pending:       s.pending.Load(),
		FlushTimeouts: s.flushTimeouts.Load(),
	}
	if ns := s.startedAt.Load(); ns != 0 {
		startedAt := time.Unix(0, ns).UTC()
		stats.StartedAt = &startedAt
	}
	if ns := s.lastBatchAt.Load(); ns != 0 {
		lastBatchAt := time.Unix(0, ns).UTC()
		stats.LastBatchAt = &lastBatchAt
	}
	return stats
}
