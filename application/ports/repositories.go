package ports

import (
	"context"

	"audiolytics/domain/core/entities"
)

// EventRepository persists playback event records in the row-oriented
// store, keyed by event ID with secondary lookups by user and book.
type EventRepository interface {
	// SaveEvent writes a single event record.
	SaveEvent(ctx context.Context, record entities.EventRecord) error

	// SaveEvents writes a batch of event records.
	SaveEvents(ctx context.Context, records []entities.EventRecord) error

	// GetEventsByUser returns a user's events ordered by timestamp.
	GetEventsByUser(ctx context.Context, userID string, limit int) ([]entities.EventRecord, error)

	// GetEventsByBook returns a book's events ordered by timestamp.
	GetEventsByBook(ctx context.Context, bookID string, limit int) ([]entities.EventRecord, error)

	// EnsureTable creates the backing table and its indexes if missing.
	EnsureTable(ctx context.Context) error
}

// ArchiveStore persists event batches in the date-partitioned object
// store for downstream batch analytics.
type ArchiveStore interface {
	// StoreEvents groups records by calendar date and writes one object
	// per group.
	StoreEvents(ctx context.Context, records []entities.EventRecord) error
}
