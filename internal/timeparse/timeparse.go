// Package timeparse handles the clinic's 12-hour appointment time strings:
// normalizing the AM/PM suffix, combining a date with a time-of-day, and
// deriving a formatted end time from a consultation duration.
//
// All parsing happens in the server's local timezone.
package timeparse

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTimeFormat = errors.New("invalid date/time format")

const (
	combinedLayout = "2006-01-02 3:04 PM"
	clockLayout    = "3:04 PM"
)

// Normalize inserts a separating space before a trailing AM/PM suffix when it
// is missing, so "8:00AM" becomes "8:00 AM". Already-normalized input passes
// through unchanged (idempotent).
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	upper := strings.ToUpper(trimmed)

	for _, suffix := range []string{"AM", "PM"} {
		if !strings.HasSuffix(upper, suffix) {
			continue
		}
		head := trimmed[:len(trimmed)-len(suffix)]
		if strings.HasSuffix(head, " ") {
			return head + suffix
		}
		return head + " " + suffix
	}
	return trimmed
}

// CombineDateAndTime parses a "YYYY-MM-DD" date and a 12-hour clock time into
// a single timestamp in the server's local zone. The time string is normalized
// first, so both "8:00AM" and "8:00 AM" are accepted.
func CombineDateAndTime(dateStr, timeStr string) (time.Time, error) {
	combined := dateStr + " " + Normalize(timeStr)

	t, err := time.ParseInLocation(combinedLayout, combined, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, combined)
	}
	return t, nil
}

// ComputeEndTime returns the 12-hour clock string that lies duration after the
// given start time on the given date, e.g. ("2025-11-12", "2:00PM", 45m) ->
// "2:45 PM". It fails exactly when CombineDateAndTime fails.
func ComputeEndTime(dateStr, startRaw string, duration time.Duration) (string, error) {
	start, err := CombineDateAndTime(dateStr, startRaw)
	if err != nil {
		return "", err
	}
	return start.Add(duration).Format(clockLayout), nil
}
