package simulation

import (
	"fmt"
	"time"

	pkgerrors "audiolytics/pkg/errors"
)

// Config holds the tunable ranges for the event generator. All ranges are
// inclusive on both ends.
type Config struct {
	NumUsers  int
	NumBooks  int
	StartDate time.Time
	EndDate   time.Time

	// Session shape: planned number of events beyond START_PLAYBACK, the
	// random gap between consecutive events, and how far the playback
	// position advances on non-seek events.
	MinSessionEvents int
	MaxSessionEvents int
	MinTimeStep      time.Duration
	MaxTimeStep      time.Duration
	MinPositionStep  int
	MaxPositionStep  int

	// Catalog shape.
	MinBookDuration int
	MaxBookDuration int
	MinChapters     int
	MaxChapters     int
}

// DefaultConfig returns the standard simulation parameters: 1-10 hour
// books with 5-30 chapters, sessions of 2-5 planned events spaced 30-300
// seconds apart.
func DefaultConfig(numUsers, numBooks int, startDate, endDate time.Time) Config {
	return Config{
		NumUsers:         numUsers,
		NumBooks:         numBooks,
		StartDate:        startDate,
		EndDate:          endDate,
		MinSessionEvents: 2,
		MaxSessionEvents: 5,
		MinTimeStep:      30 * time.Second,
		MaxTimeStep:      300 * time.Second,
		MinPositionStep:  30,
		MaxPositionStep:  300,
		MinBookDuration:  3600,
		MaxBookDuration:  36000,
		MinChapters:      5,
		MaxChapters:      30,
	}
}

// Validate checks that the configuration describes a generatable
// population and session shape.
func (c Config) Validate() error {
	if c.NumUsers < 1 {
		return pkgerrors.NewValidationError(fmt.Sprintf("num users must be at least 1, got %d", c.NumUsers))
	}
	if c.NumBooks < 1 {
		return pkgerrors.NewValidationError(fmt.Sprintf("num books must be at least 1, got %d", c.NumBooks))
	}
	if !c.EndDate.After(c.StartDate) {
		return pkgerrors.NewValidationError("end date must be after start date")
	}
	if c.MinSessionEvents < 2 {
		return pkgerrors.NewValidationError(fmt.Sprintf("min session events must be at least 2, got %d", c.MinSessionEvents))
	}
	if c.MaxSessionEvents < c.MinSessionEvents {
		return pkgerrors.NewValidationError("max session events cannot be below min session events")
	}
	if c.MinTimeStep <= 0 || c.MaxTimeStep < c.MinTimeStep {
		return pkgerrors.NewValidationError("time step range must be positive and ordered")
	}
	if c.MinPositionStep <= 0 || c.MaxPositionStep < c.MinPositionStep {
		return pkgerrors.NewValidationError("position step range must be positive and ordered")
	}
	if c.MinBookDuration <= 0 || c.MaxBookDuration < c.MinBookDuration {
		return pkgerrors.NewValidationError("book duration range must be positive and ordered")
	}
	// The shortest book must outlast a single position step, otherwise a
	// session could be clamped to START -> END on its first step.
	if c.MinBookDuration <= c.MaxPositionStep {
		return pkgerrors.NewValidationError(fmt.Sprintf(
			"min book duration %d must exceed max position step %d", c.MinBookDuration, c.MaxPositionStep))
	}
	if c.MinChapters < 1 || c.MaxChapters < c.MinChapters {
		return pkgerrors.NewValidationError("chapter range must be at least 1 and ordered")
	}
	return nil
}

// MinSessionSize returns the smallest session the configuration can
// produce: START_PLAYBACK, the minimum planned events minus one, and the
// closing END_PLAYBACK.
func (c Config) MinSessionSize() int {
	return c.MinSessionEvents + 1
}
