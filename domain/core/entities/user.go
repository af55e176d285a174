package entities

import (
	"audiolytics/domain/core/valueobjects"
	pkgerrors "audiolytics/pkg/errors"
)

// PlaybackSpeeds is the fixed set of speeds a user preference may take.
var PlaybackSpeeds = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0}

// Preferences captures a user's listening preferences. Descriptive only;
// the generator does not condition session shape on them.
type Preferences struct {
	PreferredSpeed  float64  `json:"preferred_speed"`
	PreferredGenres []string `json:"preferred_genres"`
}

// User is an immutable member of the simulated listener population.
type User struct {
	id          valueobjects.UserID
	preferences Preferences
}

// NewUser creates a user with the given preferences.
func NewUser(prefs Preferences) (*User, error) {
	if prefs.PreferredSpeed != 0 && !isKnownSpeed(prefs.PreferredSpeed) {
		return nil, pkgerrors.NewValidationError("preferred speed is not a supported playback speed")
	}

	return &User{
		id:          valueobjects.NewUserID(),
		preferences: prefs,
	}, nil
}

// ID returns the user's unique identifier.
func (u *User) ID() valueobjects.UserID {
	return u.id
}

// Preferences returns a copy of the user's preferences.
func (u *User) Preferences() Preferences {
	genres := make([]string, len(u.preferences.PreferredGenres))
	copy(genres, u.preferences.PreferredGenres)
	return Preferences{
		PreferredSpeed:  u.preferences.PreferredSpeed,
		PreferredGenres: genres,
	}
}

func isKnownSpeed(speed float64) bool {
	for _, s := range PlaybackSpeeds {
		if s == speed {
			return true
		}
	}
	return false
}
