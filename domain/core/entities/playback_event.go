package entities

import (
	"fmt"
	"time"

	"audiolytics/domain/core/valueobjects"
	pkgerrors "audiolytics/pkg/errors"
)

// EventMetadata carries descriptive, non-authoritative context about the
// device that produced an event.
type EventMetadata struct {
	DeviceType  string `json:"device_type"`
	AppVersion  string `json:"app_version"`
	NetworkType string `json:"network_type"`
}

// PlaybackEvent is a single point in a listening session's lifecycle.
// Events are immutable: they are constructed fully validated, serialized
// or transmitted, and never retained by the generator afterwards.
type PlaybackEvent struct {
	id        valueobjects.EventID
	userID    valueobjects.UserID
	bookID    valueobjects.BookID
	eventType valueobjects.EventType
	timestamp time.Time
	position  int // seconds into the book
	chapter   int
	metadata  EventMetadata
}

// EventRecord is the external shape of a playback event, as written to
// files, Kinesis records, and downstream stores.
type EventRecord struct {
	EventID   string        `json:"event_id" dynamodbav:"event_id"`
	UserID    string        `json:"user_id" dynamodbav:"user_id" validate:"required"`
	BookID    string        `json:"book_id" dynamodbav:"book_id" validate:"required"`
	EventType string        `json:"event_type" dynamodbav:"event_type" validate:"required"`
	Timestamp string        `json:"timestamp" dynamodbav:"timestamp" validate:"required"`
	Position  int           `json:"position" dynamodbav:"position" validate:"min=0"`
	Chapter   int           `json:"chapter" dynamodbav:"chapter" validate:"min=1"`
	Metadata  EventMetadata `json:"metadata" dynamodbav:"metadata"`
}

// NewPlaybackEvent creates a playback event with full validation. An
// event type outside the five-value enumeration fails immediately; no
// partially constructed event is observable.
func NewPlaybackEvent(
	userID valueobjects.UserID,
	bookID valueobjects.BookID,
	rawEventType string,
	timestamp time.Time,
	position int,
	chapter int,
	metadata EventMetadata,
) (*PlaybackEvent, error) {
	eventType, err := valueobjects.ParseEventType(rawEventType)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	if userID.IsZero() {
		return nil, pkgerrors.NewValidationError("user ID cannot be empty")
	}
	if bookID.IsZero() {
		return nil, pkgerrors.NewValidationError("book ID cannot be empty")
	}
	if timestamp.IsZero() {
		return nil, pkgerrors.NewValidationError("timestamp cannot be zero")
	}
	if position < 0 {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("position cannot be negative, got %d", position))
	}
	if chapter < 1 {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("chapter must be at least 1, got %d", chapter))
	}

	return &PlaybackEvent{
		id:        valueobjects.NewEventID(),
		userID:    userID,
		bookID:    bookID,
		eventType: eventType,
		timestamp: timestamp,
		position:  position,
		chapter:   chapter,
		metadata:  metadata,
	}, nil
}

// ID returns the event's unique identifier.
func (e *PlaybackEvent) ID() valueobjects.EventID {
	return e.id
}

// UserID returns the user the event belongs to.
func (e *PlaybackEvent) UserID() valueobjects.UserID {
	return e.userID
}

// BookID returns the book the event belongs to.
func (e *PlaybackEvent) BookID() valueobjects.BookID {
	return e.bookID
}

// EventType returns the event's lifecycle type.
func (e *PlaybackEvent) EventType() valueobjects.EventType {
	return e.eventType
}

// Timestamp returns when the event occurred.
func (e *PlaybackEvent) Timestamp() time.Time {
	return e.timestamp
}

// Position returns the playback position in seconds.
func (e *PlaybackEvent) Position() int {
	return e.position
}

// Chapter returns the chapter the position falls into.
func (e *PlaybackEvent) Chapter() int {
	return e.chapter
}

// Metadata returns the event's device metadata.
func (e *PlaybackEvent) Metadata() EventMetadata {
	return e.metadata
}

// Record converts the event into its external representation. Timestamps
// are emitted as ISO-8601 strings.
func (e *PlaybackEvent) Record() EventRecord {
	return EventRecord{
		EventID:   e.id.String(),
		UserID:    e.userID.String(),
		BookID:    e.bookID.String(),
		EventType: e.eventType.String(),
		Timestamp: e.timestamp.Format(time.RFC3339),
		Position:  e.position,
		Chapter:   e.chapter,
		Metadata:  e.metadata,
	}
}
