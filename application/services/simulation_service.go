package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"audiolytics/application/ports"
	"audiolytics/application/simulation"
	"audiolytics/domain/core/entities"

	"go.uber.org/zap"
)

// SimulationService orchestrates the event generator: produce a batch,
// optionally write it to disk, optionally push it onto the stream.
type SimulationService struct {
	generator *simulation.EventGenerator
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewSimulationService creates a simulation service. The publisher may be
// nil for offline runs that only write files.
func NewSimulationService(generator *simulation.EventGenerator, publisher ports.EventPublisher, logger *zap.Logger) *SimulationService {
	return &SimulationService{
		generator: generator,
		publisher: publisher,
		logger:    logger,
	}
}

// GenerateRecords produces exactly n event records.
func (s *SimulationService) GenerateRecords(n int) ([]entities.EventRecord, error) {
	events, err := s.generator.GenerateEvents(n)
	if err != nil {
		return nil, err
	}

	records := make([]entities.EventRecord, 0, len(events))
	for _, event := range events {
		records = append(records, event.Record())
	}
	return records, nil
}

// SaveToFile writes records as pretty-printed JSON, creating parent
// directories as needed.
func (s *SimulationService) SaveToFile(records []entities.EventRecord, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write events file: %w", err)
	}

	s.logger.Info("Saved events",
		zap.Int("count", len(records)),
		zap.String("path", path),
	)
	return nil
}

// Publish pushes records onto the configured stream.
func (s *SimulationService) Publish(ctx context.Context, records []entities.EventRecord) error {
	if s.publisher == nil {
		return fmt.Errorf("no publisher configured")
	}
	return s.publisher.PublishBatch(ctx, records)
}
