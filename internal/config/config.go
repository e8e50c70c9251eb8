// Package config provides configuration structures and validation for the simulator.
// It handles environment-based configuration for the message transport, the
// transaction generator, the simulation loop and the monitoring server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all components.
// Each field represents a major subsystem's configuration and is validated during
// application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Simulation  SimulationConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains monitoring HTTP server configuration settings
type ServerConfig struct {
	Enabled         bool          // Serve /health, /metrics and /api/v1/stats
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// TopicsConfig names the channel each transaction type is routed to
type TopicsConfig struct {
	IBFT  string
	QR    string
	TopUp string
}

// Names returns the three channel names in routing-table order
func (t TopicsConfig) Names() []string {
	return []string{t.IBFT, t.QR, t.TopUp}
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string // Comma separated list of seed brokers
	ClientID          string
	Topics            TopicsConfig
	DLQTopic          string // Optional topic for failed deliveries, empty disables it
	CreateTopics      bool   // Provision the topics at startup
	NumPartitions     int    // Number of partitions for topics
	ReplicationFactor int    // Replication factor for topics
	ProducerRetries   int
	RetryBackoff      time.Duration
	Linger            time.Duration
	ConnectTimeout    time.Duration // Bound on the startup reachability check
	FlushTimeout      time.Duration // Bound on batch flush and close flush
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
}

// BrokerList splits Brokers into individual seed addresses
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// SimulationConfig contains generator and simulation loop settings
type SimulationConfig struct {
	MinInterval    time.Duration // Lower bound of the sleep between batches
	MaxInterval    time.Duration // Upper bound of the sleep between batches
	BatchSize      int
	EntityPoolSize int
	Seed           uint64 // 0 picks a random seed
	MaxBatches     int    // 0 runs until cancelled
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Publish calls in flight per batch, 1 publishes sequentially
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Enabled {
		if c.Server.Port <= 0 {
			validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
		}
		if c.Server.ShutdownTimeout <= 0 {
			validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
		}
		if c.Server.ReadTimeout <= 0 {
			validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
		}
		if c.Server.WriteTimeout <= 0 {
			validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
		}
		if c.Server.IdleTimeout <= 0 {
			validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
		}
	}

	// Validate Kafka config
	if len(c.Kafka.BrokerList()) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.ClientID == "" {
		validationErrors = append(validationErrors, "KAFKA_CLIENT_ID is required")
	}
	if c.Kafka.Topics.IBFT == "" {
		validationErrors = append(validationErrors, "KAFKA_TOPIC_IBFT is required")
	}
	if c.Kafka.Topics.QR == "" {
		validationErrors = append(validationErrors, "KAFKA_TOPIC_QR is required")
	}
	if c.Kafka.Topics.TopUp == "" {
		validationErrors = append(validationErrors, "KAFKA_TOPIC_TOPUP is required")
	}
	seen := make(map[string]bool, 4)
	for _, topic := range c.Kafka.Topics.Names() {
		if topic != "" && seen[topic] {
			validationErrors = append(validationErrors, fmt.Sprintf("topic %q is assigned to more than one transaction type", topic))
		}
		seen[topic] = true
	}
	if c.Kafka.DLQTopic != "" && seen[c.Kafka.DLQTopic] {
		validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC must differ from the transaction topics")
	}
	if c.Kafka.ProducerRetries < 0 {
		validationErrors = append(validationErrors, "KAFKA_PRODUCER_RETRIES cannot be negative")
	}
	if c.Kafka.ConnectTimeout <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONNECT_TIMEOUT must be greater than 0")
	}
	if c.Kafka.FlushTimeout <= 0 {
		validationErrors = append(validationErrors, "KAFKA_FLUSH_TIMEOUT must be greater than 0")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}

	// Validate Simulation config
	if c.Simulation.MinInterval < 0 {
		validationErrors = append(validationErrors, "MIN_INTERVAL cannot be negative")
	}
	if c.Simulation.MaxInterval < c.Simulation.MinInterval {
		validationErrors = append(validationErrors, "MAX_INTERVAL must be greater than or equal to MIN_INTERVAL")
	}
	if c.Simulation.BatchSize <= 0 {
		validationErrors = append(validationErrors, "BATCH_SIZE must be greater than 0")
	}
	if c.Simulation.EntityPoolSize <= 0 {
		validationErrors = append(validationErrors, "ENTITY_POOL_SIZE must be greater than 0")
	}
	if c.Simulation.MaxBatches < 0 {
		validationErrors = append(validationErrors, "MAX_BATCHES cannot be negative")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
