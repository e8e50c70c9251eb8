package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/banking-txn-simulator/internal/config"
	"github.com/banking-txn-simulator/internal/inspector"
	"github.com/banking-txn-simulator/internal/logger"
	"github.com/banking-txn-simulator/internal/platform/messaging/consumers"
	"github.com/banking-txn-simulator/internal/platform/messaging/producers"
)

func main() {
	configName := kingpin.Flag("config", "base name of the .env file looked up in ./configs and .").Short('c').Default("simulator").String()
	duration := kingpin.Flag("duration", "how long to listen").Short('d').Default("30s").Duration()
	topics := kingpin.Flag("topic", "topic to listen on, repeatable; defaults to every routed topic").Short('t').Strings()
	maxMessages := kingpin.Flag("max-messages", "stop after this many messages, 0 for no limit").Default("0").Int()
	kingpin.Parse()

	cfg, err := config.LoadConfig(*configName)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	router, err := producers.NewRouter(cfg.Kafka.Topics)
	if err != nil {
		log.Error("Invalid topic routing table", "error", err)
		os.Exit(1)
	}
	if len(*topics) == 0 {
		*topics = router.Topics()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	insp := inspector.New(log, router)
	consumer := consumers.NewKafkaConsumer(log, &cfg.Kafka, *topics)

	log.Info("Starting topic inspector",
		"topics", *topics,
		"duration", duration.String(),
		"group_id", cfg.Kafka.ConsumerGroup,
	)

	err = consumer.Run(ctx, func(ctx context.Context, topic string, key, value []byte) error {
		err := insp.Handle(ctx, topic, key, value)
		if *maxMessages > 0 && insp.Total() >= *maxMessages {
			cancel()
		}
		return err
	})
	if err != nil {
		log.Error("Consumer error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	report := insp.LogReport()
	if report.Violations() > 0 {
		log.Error("Topic contract violated", "violations", report.Violations())
		os.Exit(1)
	}
}
