package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"audiolytics/application/ports"
	"audiolytics/domain/core/entities"
	"audiolytics/domain/core/valueobjects"
	pkgerrors "audiolytics/pkg/errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const functionDimension = "ProcessAudiobookEvents"

// IngestService consumes raw event payloads from the stream, validates
// them, and fans them out to the row store and the archive. Individual
// bad records are counted and skipped; they never fail the batch.
type IngestService struct {
	repository ports.EventRepository
	archive    ports.ArchiveStore
	metrics    ports.MetricsPublisher
	validate   *validator.Validate
	logger     *zap.Logger
}

// IngestStats summarizes one batch run.
type IngestStats struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// NewIngestService creates an ingest service.
func NewIngestService(
	repository ports.EventRepository,
	archive ports.ArchiveStore,
	metrics ports.MetricsPublisher,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		repository: repository,
		archive:    archive,
		metrics:    metrics,
		validate:   validator.New(),
		logger:     logger,
	}
}

// ParseRecord decodes and validates one raw stream payload.
func (s *IngestService) ParseRecord(data []byte) (entities.EventRecord, error) {
	var record entities.EventRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return entities.EventRecord{}, pkgerrors.NewValidationError(fmt.Sprintf("invalid JSON in record data: %v", err))
	}

	if err := s.validate.Struct(record); err != nil {
		return entities.EventRecord{}, pkgerrors.NewValidationError(fmt.Sprintf("record is missing required fields: %v", err))
	}

	if _, err := valueobjects.ParseEventType(record.EventType); err != nil {
		return entities.EventRecord{}, pkgerrors.NewValidationError(err.Error())
	}

	// Upstream producers may omit the event ID; derive a stable fallback
	// so the row store still has a key.
	if record.EventID == "" {
		record.EventID = fmt.Sprintf("%s_%s", record.UserID, record.Timestamp)
	}

	return record, nil
}

// ProcessBatch ingests a batch of raw payloads: each record is parsed,
// stored in the row store, and the survivors are archived together.
func (s *IngestService) ProcessBatch(ctx context.Context, payloads [][]byte) IngestStats {
	stats := IngestStats{}
	processed := make([]entities.EventRecord, 0, len(payloads))
	start := time.Now()

	for _, payload := range payloads {
		record, err := s.ParseRecord(payload)
		if err != nil {
			stats.Failed++
			s.logger.Error("Failed to parse record", zap.Error(err))
			continue
		}

		writeStart := time.Now()
		if err := s.repository.SaveEvent(ctx, record); err != nil {
			stats.Failed++
			s.logger.Error("Failed to store event",
				zap.String("event_id", record.EventID),
				zap.Error(err),
			)
			continue
		}
		s.metrics.Duration(ctx, "DynamoDBWriteLatency", time.Since(writeStart), map[string]string{
			"Function": functionDimension,
		})

		processed = append(processed, record)
		stats.Processed++
		s.logger.Info("Processed event",
			zap.String("user_id", record.UserID),
			zap.String("book_id", record.BookID),
			zap.String("event_type", record.EventType),
		)
	}

	if len(processed) > 0 {
		archiveStart := time.Now()
		if err := s.archive.StoreEvents(ctx, processed); err != nil {
			s.logger.Error("Failed to archive events", zap.Error(err))
		}
		s.metrics.Duration(ctx, "S3WriteLatency", time.Since(archiveStart), map[string]string{
			"Function": functionDimension,
		})
	}

	dimensions := map[string]string{"Function": functionDimension}
	if minutes := time.Since(start).Minutes(); minutes > 0 {
		s.metrics.Count(ctx, "EventsProcessedPerMinute", float64(stats.Processed)/minutes, dimensions)
	}
	s.metrics.Count(ctx, "ProcessedEvents", float64(stats.Processed), dimensions)
	s.metrics.Count(ctx, "FailedEvents", float64(stats.Failed), dimensions)

	return stats
}
