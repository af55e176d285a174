package ports

import (
	"context"

	"audiolytics/domain/core/entities"
)

// EventPublisher pushes event records onto the streaming ingestion
// endpoint. Records are partitioned by user ID so one user's session
// stays in order on a single shard.
type EventPublisher interface {
	// PublishEvent sends a single record.
	PublishEvent(ctx context.Context, record entities.EventRecord) error

	// PublishBatch sends records in batches, retrying failed subsets.
	PublishBatch(ctx context.Context, records []entities.EventRecord) error
}
