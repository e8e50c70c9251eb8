package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from a .env file using the provided base name
// This is the preferred method for loading environment-specific configurations
func LoadConfig(configName string) (*Config, error) {
	configFileName := fmt.Sprintf("%s.env", configName)
	return loadConfig(configFileName, "env")
}

// loadConfig handles configuration loading from files and environment variables.
// It implements a layered approach to configuration:
// 1. Load defaults
// 2. Override with config file values (if found)
// 3. Override with environment variables
// 4. Validate the final configuration
func loadConfig(configName, configType string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(configName)
	if configType != "" {
		v.SetConfigType(configType)
	}

	// Add config paths in order of priority
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Printf("INFO: No config file '%s' found, relying on environment variables and defaults.\n", configName)
		} else {
			fmt.Printf("WARNING: Error reading config file (%s): %v\n", v.ConfigFileUsed(), err)
		}
	} else {
		fmt.Printf("INFO: Config loaded from file: %s\n", v.ConfigFileUsed())
	}

	v.AutomaticEnv()

	config := fromViper(v)

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// fromViper builds the config struct from the resolved viper keys
func fromViper(v *viper.Viper) *Config {
	return &Config{
		Application: ApplicationConfig{
			Env:  v.GetString("APP_ENV"),
			Name: v.GetString("APP_NAME"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Server: ServerConfig{
			Enabled:         v.GetBool("SERVER_ENABLED"),
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
		},
		Kafka: KafkaConfig{
			Brokers:  v.GetString("KAFKA_BROKERS"),
			ClientID: v.GetString("KAFKA_CLIENT_ID"),
			Topics: TopicsConfig{
				IBFT:  v.GetString("KAFKA_TOPIC_IBFT"),
				QR:    v.GetString("KAFKA_TOPIC_QR"),
				TopUp: v.GetString("KAFKA_TOPIC_TOPUP"),
			},
			DLQTopic:          v.GetString("KAFKA_DLQ_TOPIC"),
			CreateTopics:      v.GetBool("KAFKA_CREATE_TOPICS"),
			NumPartitions:     v.GetInt("KAFKA_NUM_PARTITIONS"),
			ReplicationFactor: v.GetInt("KAFKA_REPLICATION_FACTOR"),
			ProducerRetries:   v.GetInt("KAFKA_PRODUCER_RETRIES"),
			RetryBackoff:      v.GetDuration("KAFKA_PRODUCER_RETRY_BACKOFF"),
			Linger:            v.GetDuration("KAFKA_PRODUCER_LINGER"),
			ConnectTimeout:    v.GetDuration("KAFKA_CONNECT_TIMEOUT"),
			FlushTimeout:      v.GetDuration("KAFKA_FLUSH_TIMEOUT"),
			ConsumerGroup:     v.GetString("KAFKA_CONSUMER_GROUP"),
			MinBytes:          v.GetInt("KAFKA_CONSUMER_MIN_BYTES"),
			MaxBytes:          v.GetInt("KAFKA_CONSUMER_MAX_BYTES"),
			MaxWait:           v.GetDuration("KAFKA_CONSUMER_MAX_WAIT"),
		},
		Simulation: SimulationConfig{
			MinInterval:    secondsToDuration(v.GetFloat64("MIN_INTERVAL")),
			MaxInterval:    secondsToDuration(v.GetFloat64("MAX_INTERVAL")),
			BatchSize:      v.GetInt("BATCH_SIZE"),
			EntityPoolSize: v.GetInt("ENTITY_POOL_SIZE"),
			Seed:           v.GetUint64("GENERATOR_SEED"),
			MaxBatches:     v.GetInt("MAX_BATCHES"),
		},
		WorkerPool: WorkerPoolConfig{
			Size: v.GetInt("WORKER_POOL_SIZE"),
		},
	}
}

// secondsToDuration converts fractional seconds (e.g. 0.1) into a duration
func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// setDefaults initializes configuration with sensible default values.
// These values are used when no configuration file or environment variables are present.
func setDefaults(v *viper.Viper) {
	// Monitoring server defaults
	v.SetDefault("SERVER_ENABLED", true)
	v.SetDefault("SERVER_PORT", 9100)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("SERVER_READ_TIMEOUT", 5*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 10*time.Second)
	v.SetDefault("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Kafka defaults - configured for development environment
	// Production environments should override these with appropriate values
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_CLIENT_ID", "vpbank-transaction-simulator")
	v.SetDefault("KAFKA_TOPIC_IBFT", "IBFT")
	v.SetDefault("KAFKA_TOPIC_QR", "qr_payments")
	v.SetDefault("KAFKA_TOPIC_TOPUP", "topup_wallet")
	v.SetDefault("KAFKA_DLQ_TOPIC", "") // Dead-letter forwarding disabled
	v.SetDefault("KAFKA_CREATE_TOPICS", true)
	v.SetDefault("KAFKA_NUM_PARTITIONS", 3)
	v.SetDefault("KAFKA_REPLICATION_FACTOR", 1)
	v.SetDefault("KAFKA_PRODUCER_RETRIES", 3)
	v.SetDefault("KAFKA_PRODUCER_RETRY_BACKOFF", 100*time.Millisecond)
	v.SetDefault("KAFKA_PRODUCER_LINGER", time.Millisecond)
	v.SetDefault("KAFKA_CONNECT_TIMEOUT", 10*time.Second)
	v.SetDefault("KAFKA_FLUSH_TIMEOUT", 10*time.Second)
	v.SetDefault("KAFKA_CONSUMER_GROUP", "simple_test_consumer")
	v.SetDefault("KAFKA_CONSUMER_MIN_BYTES", 1)
	v.SetDefault("KAFKA_CONSUMER_MAX_BYTES", 10485760)
	v.SetDefault("KAFKA_CONSUMER_MAX_WAIT", time.Second)

	// Simulation defaults - one batch of 100 every 0.1s to 5s
	v.SetDefault("MIN_INTERVAL", 0.1)
	v.SetDefault("MAX_INTERVAL", 5.0)
	v.SetDefault("BATCH_SIZE", 100)
	v.SetDefault("ENTITY_POOL_SIZE", 100)
	v.SetDefault("GENERATOR_SEED", 0)
	v.SetDefault("MAX_BATCHES", 0)

	// Logging defaults - 'info' provides good balance of information vs noise
	v.SetDefault("LOG_LEVEL", "info")

	// Application defaults
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "banking-txn-simulator")

	// Sequential publishing unless a pool is requested
	v.SetDefault("WORKER_POOL_SIZE", 1)
}
