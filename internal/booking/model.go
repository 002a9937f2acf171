package booking

import (
	"time"

	"github.com/google/uuid"
)

// Status is the canonical appointment lifecycle state. Legacy call sites used
// "booked" for an accepted appointment; ParseStatus maps it to confirmed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusAttended  Status = "attended"
	StatusRejected  Status = "rejected"
)

// validTransitions encodes the lifecycle: pending can be confirmed or
// rejected, a confirmed appointment can be marked attended. Attended and
// rejected are terminal.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusRejected},
	StatusConfirmed: {StatusAttended},
}

// legacyStatuses maps status strings still sent by older clients onto the
// canonical enumeration.
var legacyStatuses = map[string]Status{
	"booked": StatusConfirmed,
}

// ParseStatus resolves a raw status string, accepting legacy aliases.
func ParseStatus(raw string) (Status, bool) {
	switch s := Status(raw); s {
	case StatusPending, StatusConfirmed, StatusAttended, StatusRejected:
		return s, true
	}
	if s, ok := legacyStatuses[raw]; ok {
		return s, true
	}
	return "", false
}

// CanTransition reports whether moving from one status to another is a defined
// lifecycle step.
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Doctor struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Appointment is the persistable record built by Build. Identity and contact
// fields are denormalized copies for display and are immutable after creation;
// only Status is ever mutated, through Service.SetStatus.
type Appointment struct {
	ID           uuid.UUID
	DoctorID     uuid.UUID
	DoctorName   string
	PatientID    *uuid.UUID
	PatientName  string
	PatientEmail *string
	PatientPhone *string
	ServiceName  string
	StartTime    time.Time
	EndTime      time.Time
	Status       Status
	VideoLink    string
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
