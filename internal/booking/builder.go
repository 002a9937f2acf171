package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-scheduling/internal/timeparse"
)

var (
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidTimeFormat = timeparse.ErrInvalidTimeFormat
)

// BookingRequest carries the raw client input for a new appointment.
type BookingRequest struct {
	DoctorID     uuid.UUID
	DoctorName   string
	PatientID    *uuid.UUID
	PatientName  string
	PatientEmail *string
	PatientPhone *string
	SelectedDate string // YYYY-MM-DD
	SelectedTime string // 12-hour clock, AM/PM suffix
	ServiceName  string
	Notes        *string
}

// Builder assembles persistable appointments. MeetingBaseURL is the host used
// for placeholder video links; real meeting issuance is a collaborator's job.
type Builder struct {
	MeetingBaseURL string
}

func NewBuilder(meetingBaseURL string) *Builder {
	return &Builder{MeetingBaseURL: meetingBaseURL}
}

// Build validates the request, derives start and end timestamps from the
// service duration, and assembles the appointment record. Nothing is
// persisted here; a validation or time-parse failure aborts construction with
// no partial record.
func (b *Builder) Build(req BookingRequest) (*Appointment, error) {
	if req.DoctorID == uuid.Nil {
		return nil, fmt.Errorf("%w: doctorId", ErrMissingField)
	}
	if req.PatientName == "" {
		return nil, fmt.Errorf("%w: patientName", ErrMissingField)
	}
	if req.SelectedDate == "" {
		return nil, fmt.Errorf("%w: selectedDate", ErrMissingField)
	}
	if req.SelectedTime == "" {
		return nil, fmt.Errorf("%w: selectedTime", ErrMissingField)
	}

	duration := DurationFor(req.ServiceName)

	start, err := timeparse.CombineDateAndTime(req.SelectedDate, req.SelectedTime)
	if err != nil {
		return nil, err
	}

	endRaw, err := timeparse.ComputeEndTime(req.SelectedDate, req.SelectedTime, duration)
	if err != nil {
		return nil, err
	}
	end, err := timeparse.CombineDateAndTime(req.SelectedDate, endRaw)
	if err != nil {
		return nil, err
	}
	// An appointment crossing midnight wraps when re-parsed on the same date.
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}

	id := uuid.New()
	now := time.Now()

	return &Appointment{
		ID:           id,
		DoctorID:     req.DoctorID,
		DoctorName:   req.DoctorName,
		PatientID:    req.PatientID,
		PatientName:  req.PatientName,
		PatientEmail: req.PatientEmail,
		PatientPhone: req.PatientPhone,
		ServiceName:  req.ServiceName,
		StartTime:    start,
		EndTime:      end,
		Status:       StatusPending,
		VideoLink:    fmt.Sprintf("%s/meeting/%s", b.MeetingBaseURL, id),
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
