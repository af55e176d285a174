package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventType(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    EventType
		wantErr bool
	}{
		{
			name: "start playback",
			raw:  "START_PLAYBACK",
			want: EventTypeStartPlayback,
		},
		{
			name: "pause",
			raw:  "PAUSE",
			want: EventTypePause,
		},
		{
			name: "resume",
			raw:  "RESUME",
			want: EventTypeResume,
		},
		{
			name: "seek",
			raw:  "SEEK",
			want: EventTypeSeek,
		},
		{
			name: "end playback",
			raw:  "END_PLAYBACK",
			want: EventTypeEndPlayback,
		},
		{
			name:    "unknown value",
			raw:     "INVALID",
			wantErr: true,
		},
		{
			name:    "lowercase is rejected",
			raw:     "pause",
			wantErr: true,
		},
		{
			name:    "empty string",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEventType(tt.raw)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid event type")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEventType_IsTerminal(t *testing.T) {
	assert.True(t, EventTypeEndPlayback.IsTerminal())

	for _, et := range []EventType{EventTypeStartPlayback, EventTypePause, EventTypeResume, EventTypeSeek} {
		assert.False(t, et.IsTerminal(), "%s should not be terminal", et)
	}
}

func TestEventType_IsValid(t *testing.T) {
	for _, et := range ValidEventTypes {
		assert.True(t, et.IsValid(), "%s should be valid", et)
	}
	assert.False(t, EventType("REWIND").IsValid())
}
