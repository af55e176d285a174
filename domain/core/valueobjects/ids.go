package valueobjects

import (
	"strings"

	"github.com/google/uuid"
)

// Identifiers follow the wire shapes the pipeline emits: short hex-suffixed
// prefixes for users and books, a full hex suffix for events. Value objects
// are immutable and have no identity beyond their value.

// EventID uniquely identifies a playback event.
type EventID struct {
	value string
}

// NewEventID creates a new random EventID of the form event_<32 hex chars>.
func NewEventID() EventID {
	return EventID{value: "event_" + hexString(uuid.New())}
}

// String returns the string representation of the EventID.
func (id EventID) String() string {
	return id.value
}

// Equals checks if two EventIDs are equal.
func (id EventID) Equals(other EventID) bool {
	return id.value == other.value
}

// IsZero checks if the EventID is the zero value.
func (id EventID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler.
func (id EventID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UserID uniquely identifies a simulated user.
type UserID struct {
	value string
}

// NewUserID creates a new random UserID of the form user_<8 hex chars>.
func NewUserID() UserID {
	return UserID{value: "user_" + hexString(uuid.New())[:8]}
}

// String returns the string representation of the UserID.
func (id UserID) String() string {
	return id.value
}

// Equals checks if two UserIDs are equal.
func (id UserID) Equals(other UserID) bool {
	return id.value == other.value
}

// IsZero checks if the UserID is the zero value.
func (id UserID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler.
func (id UserID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// BookID uniquely identifies an audiobook.
type BookID struct {
	value string
}

// NewBookID creates a new random BookID of the form book_<8 hex chars>.
func NewBookID() BookID {
	return BookID{value: "book_" + hexString(uuid.New())[:8]}
}

// String returns the string representation of the BookID.
func (id BookID) String() string {
	return id.value
}

// Equals checks if two BookIDs are equal.
func (id BookID) Equals(other BookID) bool {
	return id.value == other.value
}

// IsZero checks if the BookID is the zero value.
func (id BookID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler.
func (id BookID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// hexString renders a UUID as 32 lowercase hex characters without dashes.
func hexString(u uuid.UUID) string {
	return strings.ReplaceAll(u.String(), "-", "")
}
