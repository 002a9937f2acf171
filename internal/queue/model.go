// Package queue implements the walk-in check-in queue: admission, the status
// lifecycle of a waiting patient, FIFO ordering, and the display position
// heuristic used by patient dashboards.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Status is the canonical queue-entry state. The accepted update set is
// exactly {waiting, pending, met}: waiting entries have checked in, a pending
// entry has been called, met entries are done.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPending Status = "pending"
	StatusMet     Status = "met"
)

// legacyStatuses maps the status vocabulary of older rows and clients onto
// the canonical set.
var legacyStatuses = map[string]Status{
	"in-progress": StatusPending,
	"attended":    StatusMet,
	"completed":   StatusMet,
}

// ParseStatus resolves a raw status string against the canonical update set.
func ParseStatus(raw string) (Status, bool) {
	switch s := Status(raw); s {
	case StatusWaiting, StatusPending, StatusMet:
		return s, true
	}
	if s, ok := legacyStatuses[raw]; ok {
		return s, true
	}
	return "", false
}

// Entry is one checked-in patient. PatientID stays nil when identity
// resolution failed at check-in; admission is never blocked on it.
type Entry struct {
	ID          uuid.UUID
	PatientID   *uuid.UUID
	PatientName string
	DoctorName  string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Position computes a viewer's 1-based place in an ascending-ordered queue:
// the index of the first pending entry, or the total count when nobody has
// been called yet. It is a display heuristic recomputed on every read, not a
// stored field.
func Position(entries []Entry) int {
	for i, e := range entries {
		if e.Status == StatusPending {
			return i + 1
		}
	}
	return len(entries)
}
