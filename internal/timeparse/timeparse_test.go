package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"8:00AM", "8:00 AM"},
		{"8:00 AM", "8:00 AM"},
		{"2:00PM", "2:00 PM"},
		{"12:30 PM", "12:30 PM"},
		{"  9:15am  ", "9:15 AM"},
		{"14:00", "14:00"}, // no suffix, passes through
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.in), "Normalize(%q)", tc.in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, raw := range []string{"8:00AM", "8:00 AM", "11:45pm", "3:30 PM"} {
		once := Normalize(raw)
		assert.Equal(t, once, Normalize(once), "Normalize(%q) not idempotent", raw)
	}
}

func TestCombineDateAndTime(t *testing.T) {
	got, err := CombineDateAndTime("2025-11-12", "2:00PM")
	require.NoError(t, err)

	want := time.Date(2025, 11, 12, 14, 0, 0, 0, time.Local)
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)
}

func TestCombineDateAndTimeMalformed(t *testing.T) {
	cases := []struct {
		date string
		time string
	}{
		{"2025-11-12", "no digits"},
		{"2025-11-12", "14:00"}, // missing AM/PM
		{"not-a-date", "8:00 AM"},
		{"", ""},
		{"2025-13-40", "8:00 AM"},
	}

	for _, tc := range cases {
		_, err := CombineDateAndTime(tc.date, tc.time)
		assert.ErrorIs(t, err, ErrInvalidTimeFormat, "CombineDateAndTime(%q, %q)", tc.date, tc.time)
	}
}

// Re-parsing the computed end time must land exactly duration minutes after
// the start across a range of inputs.
func TestComputeEndTimeRoundTrip(t *testing.T) {
	cases := []struct {
		date     string
		start    string
		duration time.Duration
	}{
		{"2025-11-12", "2:00PM", 45 * time.Minute},
		{"2025-11-12", "8:00 AM", 30 * time.Minute},
		{"2025-01-01", "11:40 AM", 20 * time.Minute},
		{"2026-06-30", "11:30 PM", 25 * time.Minute},
	}

	for _, tc := range cases {
		endStr, err := ComputeEndTime(tc.date, tc.start, tc.duration)
		require.NoError(t, err)

		startTS, err := CombineDateAndTime(tc.date, Normalize(tc.start))
		require.NoError(t, err)

		endTS, err := CombineDateAndTime(tc.date, endStr)
		require.NoError(t, err)

		// End times past midnight wrap around on the clock face.
		diff := endTS.Sub(startTS)
		if diff < 0 {
			diff += 24 * time.Hour
		}
		assert.Equal(t, tc.duration, diff, "ComputeEndTime(%q, %q, %s) = %q", tc.date, tc.start, tc.duration, endStr)
	}
}

func TestComputeEndTimeMalformed(t *testing.T) {
	_, err := ComputeEndTime("2025-11-12", "bogus", 30*time.Minute)
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)
}
