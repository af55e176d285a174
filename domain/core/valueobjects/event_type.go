package valueobjects

import (
	"fmt"
)

// EventType is a value object representing the kind of playback event.
// Only the five enumerated values are valid; anything else is rejected
// at construction time.
type EventType string

const (
	EventTypeStartPlayback EventType = "START_PLAYBACK"
	EventTypePause         EventType = "PAUSE"
	EventTypeResume        EventType = "RESUME"
	EventTypeSeek          EventType = "SEEK"
	EventTypeEndPlayback   EventType = "END_PLAYBACK"
)

// ValidEventTypes lists every accepted event type in wire order.
var ValidEventTypes = []EventType{
	EventTypeStartPlayback,
	EventTypePause,
	EventTypeResume,
	EventTypeSeek,
	EventTypeEndPlayback,
}

// ParseEventType validates a raw string and returns the corresponding
// EventType. Unknown values fail; events are never constructed with a
// coerced or defaulted type.
func ParseEventType(raw string) (EventType, error) {
	switch EventType(raw) {
	case EventTypeStartPlayback, EventTypePause, EventTypeResume, EventTypeSeek, EventTypeEndPlayback:
		return EventType(raw), nil
	default:
		return "", fmt.Errorf("invalid event type: %q, must be one of %v", raw, ValidEventTypes)
	}
}

// IsValid reports whether the event type is one of the five known values.
func (t EventType) IsValid() bool {
	_, err := ParseEventType(string(t))
	return err == nil
}

// IsTerminal reports whether the event type ends a session.
func (t EventType) IsTerminal() bool {
	return t == EventTypeEndPlayback
}

// String returns the wire representation of the event type.
func (t EventType) String() string {
	return string(t)
}
