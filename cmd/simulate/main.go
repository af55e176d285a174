package main

import (
	"context"
	"flag"
	"log"

	"audiolytics/infrastructure/config"
	"audiolytics/infrastructure/di"
	kinesispub "audiolytics/infrastructure/messaging/kinesis"

	"go.uber.org/zap"
)

func main() {
	var (
		totalEvents = flag.Int("events", 0, "total number of events to generate (overrides TOTAL_EVENTS)")
		numUsers    = flag.Int("users", 0, "number of simulated users (overrides NUM_USERS)")
		numBooks    = flag.Int("books", 0, "number of simulated books (overrides NUM_BOOKS)")
		outputFile  = flag.String("output", "", "path for the JSON output file (overrides OUTPUT_FILE)")
		seed        = flag.Int64("seed", 0, "random seed for reproducible runs (overrides RANDOM_SEED)")
		send        = flag.Bool("send", false, "publish the generated events to Kinesis")
		ensure      = flag.Bool("ensure-resources", false, "create the Kinesis stream and DynamoDB table if missing")
	)
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags win over environment
	if *totalEvents > 0 {
		cfg.TotalEvents = *totalEvents
	}
	if *numUsers > 0 {
		cfg.NumUsers = *numUsers
	}
	if *numBooks > 0 {
		cfg.NumBooks = *numBooks
	}
	if *outputFile != "" {
		cfg.OutputFile = *outputFile
	}
	if *seed != 0 {
		cfg.RandomSeed = *seed
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	logger := container.Logger
	defer logger.Sync()

	if *ensure {
		if publisher, ok := container.Publisher.(*kinesispub.Publisher); ok {
			if err := publisher.EnsureStream(ctx, int32(cfg.ShardCount)); err != nil {
				logger.Fatal("Failed to ensure Kinesis stream", zap.Error(err))
			}
		}
		if err := container.EventRepo.EnsureTable(ctx); err != nil {
			logger.Fatal("Failed to ensure DynamoDB table", zap.Error(err))
		}
	}

	records, err := container.SimulationService.GenerateRecords(cfg.TotalEvents)
	if err != nil {
		logger.Fatal("Failed to generate events", zap.Error(err))
	}

	if err := container.SimulationService.SaveToFile(records, cfg.OutputFile); err != nil {
		logger.Fatal("Failed to save events", zap.Error(err))
	}

	if *send {
		logger.Info("Publishing events to Kinesis",
			zap.String("stream", cfg.StreamName),
			zap.Int("count", len(records)),
		)
		if err := container.SimulationService.Publish(ctx, records); err != nil {
			logger.Fatal("Failed to publish events", zap.Error(err))
		}
		logger.Info("All events published")
	}
}
