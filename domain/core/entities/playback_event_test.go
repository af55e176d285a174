package entities

import (
	"encoding/json"
	"testing"
	"time"

	"audiolytics/domain/core/valueobjects"
	pkgerrors "audiolytics/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMetadata() EventMetadata {
	return EventMetadata{
		DeviceType:  "mobile",
		AppVersion:  "1.0.0",
		NetworkType: "wifi",
	}
}

func TestNewPlaybackEvent(t *testing.T) {
	userID := valueobjects.NewUserID()
	bookID := valueobjects.NewBookID()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		eventType string
		position  int
		chapter   int
		wantErr   string
	}{
		{
			name:      "valid start event",
			eventType: "START_PLAYBACK",
			position:  0,
			chapter:   1,
		},
		{
			name:      "valid seek event",
			eventType: "SEEK",
			position:  1234,
			chapter:   3,
		},
		{
			name:      "invalid event type",
			eventType: "INVALID",
			position:  0,
			chapter:   1,
			wantErr:   "invalid event type",
		},
		{
			name:      "negative position",
			eventType: "PAUSE",
			position:  -1,
			chapter:   1,
			wantErr:   "position cannot be negative",
		},
		{
			name:      "chapter below one",
			eventType: "PAUSE",
			position:  10,
			chapter:   0,
			wantErr:   "chapter must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := NewPlaybackEvent(userID, bookID, tt.eventType, now, tt.position, tt.chapter, testMetadata())

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, event)
				assert.True(t, pkgerrors.IsValidation(err))
				return
			}

			require.NoError(t, err)
			require.NotNil(t, event)
			assert.Equal(t, tt.eventType, event.EventType().String())
			assert.Equal(t, tt.position, event.Position())
			assert.Equal(t, tt.chapter, event.Chapter())
			assert.False(t, event.ID().IsZero())
		})
	}
}

func TestPlaybackEvent_Record(t *testing.T) {
	userID := valueobjects.NewUserID()
	bookID := valueobjects.NewBookID()
	ts := time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC)

	event, err := NewPlaybackEvent(userID, bookID, "PAUSE", ts, 900, 2, testMetadata())
	require.NoError(t, err)

	record := event.Record()
	assert.Equal(t, event.ID().String(), record.EventID)
	assert.Equal(t, userID.String(), record.UserID)
	assert.Equal(t, bookID.String(), record.BookID)
	assert.Equal(t, "PAUSE", record.EventType)
	assert.Equal(t, "2024-06-01T12:30:45Z", record.Timestamp)
	assert.Equal(t, 900, record.Position)
	assert.Equal(t, 2, record.Chapter)
	assert.Equal(t, "mobile", record.Metadata.DeviceType)
}

func TestPlaybackEvent_IDs(t *testing.T) {
	userID := valueobjects.NewUserID()
	bookID := valueobjects.NewBookID()
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	first, err := NewPlaybackEvent(userID, bookID, "PAUSE", ts, 10, 1, testMetadata())
	require.NoError(t, err)
	second, err := NewPlaybackEvent(userID, bookID, "RESUME", ts, 20, 1, testMetadata())
	require.NoError(t, err)

	assert.False(t, first.ID().Equals(second.ID()), "every event gets its own identifier")

	data, err := json.Marshal(first.ID())
	require.NoError(t, err)
	assert.Equal(t, `"`+first.ID().String()+`"`, string(data))
}

func TestNewAudioBook(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		duration int
		chapters int
		wantErr  string
	}{
		{
			name:     "valid book",
			title:    "Book abc",
			duration: 7200,
			chapters: 10,
		},
		{
			name:     "empty title",
			title:    "",
			duration: 7200,
			chapters: 10,
			wantErr:  "title cannot be empty",
		},
		{
			name:     "zero duration",
			title:    "Book abc",
			duration: 0,
			chapters: 10,
			wantErr:  "duration must be positive",
		},
		{
			name:     "zero chapters",
			title:    "Book abc",
			duration: 7200,
			chapters: 0,
			wantErr:  "chapters must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, err := NewAudioBook(tt.title, "Author x", tt.duration, tt.chapters, "Fiction")

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, book)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.duration, book.Duration())
			assert.Equal(t, tt.chapters, book.Chapters())
			assert.False(t, book.ID().IsZero())
		})
	}
}

func TestAudioBook_ChapterAt(t *testing.T) {
	book, err := NewAudioBook("Book abc", "Author x", 1000, 10, "Fiction")
	require.NoError(t, err)

	tests := []struct {
		name     string
		position int
		want     int
	}{
		{name: "start of book", position: 0, want: 1},
		{name: "middle of first chapter", position: 99, want: 1},
		{name: "start of second chapter", position: 100, want: 2},
		{name: "middle of book", position: 550, want: 6},
		{name: "end of book clamps to last chapter", position: 1000, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, book.ChapterAt(tt.position))
		})
	}
}

func TestAudioBook_ChapterAt_MoreChaptersThanSeconds(t *testing.T) {
	book, err := NewAudioBook("Tiny", "Author x", 5, 10, "Fiction")
	require.NoError(t, err)

	// Integer division yields zero seconds per chapter; the guard pins the
	// result to the final chapter instead of dividing by zero.
	assert.Equal(t, 10, book.ChapterAt(3))
}

func TestNewUser(t *testing.T) {
	user, err := NewUser(Preferences{
		PreferredSpeed:  1.25,
		PreferredGenres: []string{"Fiction", "Mystery"},
	})
	require.NoError(t, err)
	assert.False(t, user.ID().IsZero())
	assert.Equal(t, 1.25, user.Preferences().PreferredSpeed)

	_, err = NewUser(Preferences{PreferredSpeed: 3.5})
	assert.Error(t, err)
}
