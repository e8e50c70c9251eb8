package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

func TestLoadConfig_HappyPath(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	tempConfigsSubDir := filepath.Join(tempDir, "configs")
	err = os.Mkdir(tempConfigsSubDir, 0755)
	require.NoError(t, err)

	testAppName := "TestSimulator"
	testLogLevel := "debug"
	testKafkaBrokers := "kafka1:9092,kafka2:9092"
	testBatchSize := 25

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nLOG_LEVEL=%s\nKAFKA_BROKERS=%s\nBATCH_SIZE=%d\nMIN_INTERVAL=0.5\nMAX_INTERVAL=1.5\n",
		testAppName, testLogLevel, testKafkaBrokers, testBatchSize,
	)
	envFilePath := filepath.Join(tempConfigsSubDir, "test_happy.env")
	err = os.WriteFile(envFilePath, []byte(envContent), 0644)
	require.NoError(t, err)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	cfg, err := LoadConfig("test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, testAppName, cfg.Application.Name)
	assert.Equal(t, testLogLevel, cfg.Logging.Level)
	assert.Equal(t, testKafkaBrokers, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"kafka1:9092", "kafka2:9092"}, cfg.Kafka.BrokerList())
	assert.Equal(t, testBatchSize, cfg.Simulation.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Simulation.MinInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.Simulation.MaxInterval)

	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, "IBFT", cfg.Kafka.Topics.IBFT)
	assert.Equal(t, "qr_payments", cfg.Kafka.Topics.QR)
	assert.Equal(t, "topup_wallet", cfg.Kafka.Topics.TopUp)
	assert.Equal(t, 10*time.Second, cfg.Kafka.FlushTimeout)
	assert.Equal(t, 100, cfg.Simulation.EntityPoolSize)
}

func TestLoadConfig_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("KAFKA_TOPIC_QR", "qr_payments_v2")
	t.Setenv("WORKER_POOL_SIZE", "4")

	cfg, err := LoadConfig("does_not_exist")
	require.NoError(t, err)
	assert.Equal(t, "qr_payments_v2", cfg.Kafka.Topics.QR)
	assert.Equal(t, 4, cfg.WorkerPool.Size)
}

func TestConfig_Validate_HappyPath(t *testing.T) {
	cfg := defaultConfig()
	err := cfg.validate()
	assert.NoError(t, err, "Default config should be valid")

	assert.Equal(t, 100*time.Millisecond, cfg.Simulation.MinInterval)
	assert.Equal(t, 5*time.Second, cfg.Simulation.MaxInterval)
	assert.Equal(t, 100, cfg.Simulation.BatchSize)
	assert.Equal(t, "localhost:9092", cfg.Kafka.Brokers)
}

func TestConfig_Validate_Violations(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantMsg string
	}{
		{"EmptyBrokers", func(c *Config) { c.Kafka.Brokers = " , " }, "KAFKA_BROKERS is required"},
		{"MissingQRTopic", func(c *Config) { c.Kafka.Topics.QR = "" }, "KAFKA_TOPIC_QR is required"},
		{"DuplicateTopic", func(c *Config) { c.Kafka.Topics.TopUp = c.Kafka.Topics.IBFT }, "assigned to more than one transaction type"},
		{"DLQCollidesWithTopic", func(c *Config) { c.Kafka.DLQTopic = "qr_payments" }, "KAFKA_DLQ_TOPIC must differ"},
		{"IntervalInverted", func(c *Config) { c.Simulation.MaxInterval = c.Simulation.MinInterval / 2 }, "MAX_INTERVAL must be greater than or equal to MIN_INTERVAL"},
		{"ZeroBatch", func(c *Config) { c.Simulation.BatchSize = 0 }, "BATCH_SIZE must be greater than 0"},
		{"ZeroPool", func(c *Config) { c.Simulation.EntityPoolSize = 0 }, "ENTITY_POOL_SIZE must be greater than 0"},
		{"ZeroFlushTimeout", func(c *Config) { c.Kafka.FlushTimeout = 0 }, "KAFKA_FLUSH_TIMEOUT must be greater than 0"},
		{"ZeroWorkers", func(c *Config) { c.WorkerPool.Size = 0 }, "WORKER_POOL_SIZE must be greater than 0"},
		{"ServerPortWhenEnabled", func(c *Config) { c.Server.Port = 0 }, "SERVER_PORT must be greater than 0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}

	t.Run("ServerPortIgnoredWhenDisabled", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Server.Enabled = false
		cfg.Server.Port = 0
		assert.NoError(t, cfg.validate())
	})
}
