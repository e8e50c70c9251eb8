package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/banking-txn-simulator/internal/config"
	"github.com/banking-txn-simulator/internal/logger"
	"github.com/banking-txn-simulator/internal/monitoring"
	"github.com/banking-txn-simulator/internal/platform/messaging/producers"
	"github.com/banking-txn-simulator/internal/simulator/generator"
	"github.com/banking-txn-simulator/internal/simulator/service"
	"github.com/twmb/franz-go/plugin/kprom"
)

func main() {
	configName := kingpin.Flag("config", "base name of the .env file looked up in ./configs and .").Short('c').Default("simulator").String()
	seed := kingpin.Flag("seed", "seed for synthetic data, 0 keeps the configured GENERATOR_SEED").Default("0").Uint64()
	batches := kingpin.Flag("batches", "stop after this many batches, 0 runs until signalled, -1 keeps MAX_BATCHES").Default("-1").Int()
	kingpin.Parse()

	// Initialize configuration
	cfg, err := config.LoadConfig(*configName)
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *batches >= 0 {
		cfg.Simulation.MaxBatches = *batches
	}

	log := logger.NewLogger(cfg)

	// SIGINT/SIGTERM cancel the loop, which finishes its batch and closes the publisher
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router, err := producers.NewRouter(cfg.Kafka.Topics)
	if err != nil {
		log.Error("Invalid topic routing table", "error", err)
		os.Exit(1)
	}

	if cfg.Kafka.CreateTopics {
		if err := producers.EnsureTopics(log, &cfg.Kafka); err != nil {
			log.Error("Failed to provision Kafka topics", "error", err)
			os.Exit(1)
		}
	}

	metrics := kprom.NewMetrics("simulator")
	client, err := producers.NewKafkaClient(ctx, &cfg.Kafka, metrics)
	if err != nil {
		log.Error("Failed to connect to Kafka", "brokers", cfg.Kafka.Brokers, "error", err)
		os.Exit(1)
	}

	opts := producers.PublisherOptions{
		FlushTimeout:   cfg.Kafka.FlushTimeout,
		WorkerPoolSize: cfg.WorkerPool.Size,
	}
	// a nil *DLQProducer must not end up in the interface
	if dlq := producers.NewDLQProducer(log, &cfg.Kafka); dlq != nil {
		opts.DeadLetter = dlq
	}

	publisher, err := producers.NewTransactionPublisher(log, client, router, opts)
	if err != nil {
		client.Close()
		log.Error("Failed to initialize transaction publisher", "error", err)
		os.Exit(1)
	}

	gen, err := generator.NewGenerator(cfg.Simulation.EntityPoolSize, cfg.Simulation.Seed)
	if err != nil {
		_ = publisher.Close()
		log.Error("Failed to initialize transaction generator", "error", err)
		os.Exit(1)
	}
	interval := generator.UniformStep(generator.NewStreamFaker(cfg.Simulation.Seed, generator.IntervalStream), cfg.Simulation.MinInterval, cfg.Simulation.MaxInterval)

	simulator := service.NewSimulator(&cfg.Simulation, gen, publisher, interval, log)

	var server *monitoring.Server
	if cfg.Server.Enabled {
		server = monitoring.NewServer(log, cfg, simulator, metrics.Handler())
		go func() {
			if err := server.Start(); err != nil {
				log.Error("Monitoring server error", "error", err)
			}
		}()
	}

	log.Info("Transaction simulator started",
		"brokers", cfg.Kafka.Brokers,
		"topics", router.Topics(),
		"batch_size", cfg.Simulation.BatchSize,
		"min_interval", cfg.Simulation.MinInterval.String(),
		"max_interval", cfg.Simulation.MaxInterval.String(),
		"entity_pool_size", gen.Pool().Size(),
	)

	if err := simulator.Start(ctx); err != nil {
		log.Error("Simulation stopped with errors", "error", err)
	}

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		if err := server.Stop(shutdownCtx); err != nil {
			log.Error("Error during server shutdown", "error", err)
		}
		cancel()
	}

	stats := simulator.Stats()
	log.Info("Simulator shutdown completed",
		"batches", stats.Batches,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"pending", stats.Pending,
	)
}
