package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"audiolytics/domain/core/entities"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPrefix = "audiobook-events"

// API is the subset of the S3 client the archive store uses.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ArchiveStore writes event batches to S3, partitioned by calendar date
// so Athena-style consumers can prune by year/month/day.
type ArchiveStore struct {
	client API
	bucket string
	prefix string
	logger *zap.Logger
}

// NewArchiveStore creates an S3-backed archive store.
func NewArchiveStore(client API, bucket string, logger *zap.Logger) *ArchiveStore {
	return &ArchiveStore{
		client: client,
		bucket: bucket,
		prefix: defaultPrefix,
		logger: logger,
	}
}

// StoreEvents groups records by calendar date and writes one JSON object
// per group.
func (s *ArchiveStore) StoreEvents(ctx context.Context, records []entities.EventRecord) error {
	if len(records) == 0 {
		return nil
	}

	groups := make(map[string][]entities.EventRecord)
	for _, record := range records {
		path := s.datePath(record.Timestamp)
		groups[path] = append(groups[path], record)
	}

	for path, group := range groups {
		key := fmt.Sprintf("%s%s.json", path, uuid.New().String())
		body, err := json.MarshalIndent(group, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal event group: %w", err)
		}

		if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String("application/json"),
		}); err != nil {
			s.logger.Error("Failed to archive events",
				zap.String("bucket", s.bucket),
				zap.String("key", key),
				zap.Error(err),
			)
			return fmt.Errorf("failed to archive events to %s: %w", key, err)
		}

		s.logger.Info("Archived events",
			zap.String("bucket", s.bucket),
			zap.String("key", key),
			zap.Int("event_count", len(group)),
		)
	}

	return nil
}

// datePath derives the date-partitioned key prefix for an event timestamp.
// Unparseable timestamps fall back to the current date under an error_
// marker so bad records stay findable.
func (s *ArchiveStore) datePath(timestamp string) string {
	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		now := time.Now().UTC()
		s.logger.Warn("Invalid event timestamp, archiving under current date",
			zap.String("timestamp", timestamp),
		)
		return fmt.Sprintf("%s/%04d/%02d/%02d/error_",
			s.prefix, now.Year(), now.Month(), now.Day())
	}

	return fmt.Sprintf("%s/%04d/%02d/%02d/",
		s.prefix, ts.Year(), ts.Month(), ts.Day())
}
