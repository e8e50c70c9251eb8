package producers

import (
	"context"
	"fmt"
	"time"

	"github.com/banking-txn-simulator/internal/config"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"
)

// NewKafkaClient creates the franz-go client and verifies the brokers are reachable.
// Failures wrap ErrStartup.
func NewKafkaClient(ctx context.Context, cfg *config.KafkaConfig, metrics *kprom.Metrics) (*kgo.Client, error) {
	retryBackoff := cfg.RetryBackoff
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.BrokerList()...),
		kgo.ClientID(cfg.ClientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordRetries(cfg.ProducerRetries),
		kgo.RetryBackoffFn(func(int) time.Duration { return retryBackoff }),
		kgo.ProducerLinger(cfg.Linger),
		kgo.ProducerBatchCompression(kgo.NoCompression()),
	}
	if metrics != nil {
		opts = append(opts, kgo.WithHooks(metrics))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create kafka client: %v", ErrStartup, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: brokers %s unreachable: %v", ErrStartup, cfg.Brokers, err)
	}

	return client, nil
}
