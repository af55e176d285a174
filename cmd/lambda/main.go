package main

import (
	"context"
	"log"
	"time"

	"audiolytics/infrastructure/config"
	"audiolytics/infrastructure/di"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

// Global variables for Lambda lifecycle management
var (
	// container holds the dependency injection container
	container *di.Container

	// coldStartTime records when the cold start began
	coldStartTime time.Time
)

// init runs during cold start
func init() {
	coldStartTime = time.Now()
	log.Println("Lambda cold start initiated")

	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container
	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
	)
}

// Handler processes a batch of Kinesis records: each record's payload is
// parsed, stored, archived, and counted. Per-record failures are skipped
// so one bad payload cannot poison the batch.
func Handler(ctx context.Context, event events.KinesisEvent) (map[string]interface{}, error) {
	payloads := make([][]byte, 0, len(event.Records))
	for _, record := range event.Records {
		// aws-lambda-go delivers Kinesis data base64-decoded already.
		payloads = append(payloads, record.Kinesis.Data)
	}

	container.Logger.Info("Processing Kinesis batch",
		zap.Int("records", len(payloads)),
	)

	stats := container.IngestService.ProcessBatch(ctx, payloads)

	container.Logger.Info("Batch complete",
		zap.Int("processed", stats.Processed),
		zap.Int("failed", stats.Failed),
	)

	return map[string]interface{}{
		"statusCode": 200,
		"body":       stats,
	}, nil
}

func main() {
	lambda.Start(Handler)
}
