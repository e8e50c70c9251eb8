package producers

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/banking-txn-simulator/internal/config"
	"github.com/segmentio/kafka-go"
)

// TopicAdmin is the subset of kafka.Conn used to provision topics
type TopicAdmin interface {
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	CreateTopics(topics ...kafka.TopicConfig) error
}

// EnsureTopics creates every routed topic (and the DLQ topic, if set) that the
// cluster does not have yet. Topic creation is issued against the controller.
func EnsureTopics(logger *slog.Logger, cfg *config.KafkaConfig) error {
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		return fmt.Errorf("%w: no kafka brokers configured", ErrStartup)
	}

	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("%w: failed to dial kafka broker %s: %v", ErrStartup, brokers[0], err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to find kafka controller: %w", err)
	}

	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("failed to dial kafka controller: %w", err)
	}
	defer controllerConn.Close()

	topics := cfg.Topics.Names()
	if cfg.DLQTopic != "" {
		topics = append(topics, cfg.DLQTopic)
	}

	return createMissingTopics(controllerConn, topics, cfg.NumPartitions, cfg.ReplicationFactor, logger)
}

// createMissingTopics reads the cluster's partitions once and creates the topics not present
func createMissingTopics(admin TopicAdmin, topics []string, numPartitions, replicationFactor int, log *slog.Logger) error {
	partitions, err := admin.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read kafka partitions: %w", err)
	}

	existing := make(map[string]bool, len(partitions))
	for _, p := range partitions {
		existing[p.Topic] = true
	}

	if numPartitions <= 0 {
		numPartitions = 1
	}
	if replicationFactor <= 0 {
		replicationFactor = 1
	}

	var missing []kafka.TopicConfig
	for _, topic := range topics {
		if existing[topic] {
			log.Info("Kafka topic already exists", "topic", topic)
			continue
		}
		missing = append(missing, kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     numPartitions,
			ReplicationFactor: replicationFactor,
		})
	}

	if len(missing) == 0 {
		return nil
	}

	if err := admin.CreateTopics(missing...); err != nil {
		return fmt.Errorf("failed to create kafka topics: %w", err)
	}
	for _, tc := range missing {
		log.Info("Successfully created Kafka topic", "topic", tc.Topic, "partitions", tc.NumPartitions)
	}
	return nil
}
