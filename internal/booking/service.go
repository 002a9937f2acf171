package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-scheduling/internal/feed"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Notifier receives every appointment status change. Delivery is best effort;
// the collaborator decides whether anything is actually sent.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, old, updated *Appointment) error
}

// NopNotifier discards status-change events.
type NopNotifier struct{}

func (NopNotifier) NotifyStatusChange(context.Context, *Appointment, *Appointment) error {
	return nil
}

type Service struct {
	repo     Repository
	builder  *Builder
	pub      feed.Publisher
	notifier Notifier
}

func NewService(repo Repository, builder *Builder, pub feed.Publisher, notifier Notifier) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{
		repo:     repo,
		builder:  builder,
		pub:      pub,
		notifier: notifier,
	}
}

// Book validates and derives a new appointment, persists it, and announces
// the insert on the change feed. Overlapping bookings for the same doctor are
// not arbitrated here; that is left to the storage layer's constraints, which
// currently do not enforce it either.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if req.DoctorName == "" && req.DoctorID != uuid.Nil {
		doctor, err := s.repo.GetDoctorByID(ctx, req.DoctorID)
		if err != nil {
			if errors.Is(err, ErrDoctorNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("load doctor: %w", err)
		}
		req.DoctorName = doctor.Name
	}

	// A supplied patient id must reference a known patient; the record also
	// backfills contact fields the request left out.
	if req.PatientID != nil {
		patient, err := s.repo.GetPatientByID(ctx, *req.PatientID)
		if err != nil {
			if errors.Is(err, ErrPatientNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("load patient: %w", err)
		}
		if req.PatientEmail == nil {
			req.PatientEmail = patient.Email
		}
		if req.PatientPhone == nil {
			req.PatientPhone = patient.Phone
		}
	}

	appt, err := s.builder.Build(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateAppointment(ctx, appt); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.publish(ctx, feed.OpInsert, appt)
	return appt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Appointment, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	appts, err := s.repo.ListAppointments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// SetStatus moves an appointment through its lifecycle. Only the status
// column is touched. Every transition raises a status-changed event toward
// the notification collaborator; a delivery failure is logged and never rolls
// the transition back.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, rawStatus string) (*Appointment, error) {
	to, ok := ParseStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, rawStatus)
	}

	old, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if old.Status != to && !CanTransition(old.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, old.Status, to)
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, id, to)
	if err != nil {
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	s.publish(ctx, feed.OpUpdate, updated)

	if err := s.notifier.NotifyStatusChange(ctx, old, updated); err != nil {
		log.Printf("status-change notification failed for appointment %s: %v", id, err)
	}

	return updated, nil
}

func (s *Service) publish(ctx context.Context, op feed.Op, appt *Appointment) {
	row, err := json.Marshal(map[string]any{
		"id":           appt.ID.String(),
		"doctor_id":    appt.DoctorID.String(),
		"patient_name": appt.PatientName,
		"status":       string(appt.Status),
		"start_time":   appt.StartTime,
		"end_time":     appt.EndTime,
	})
	if err != nil {
		log.Printf("marshal feed row for appointment %s: %v", appt.ID, err)
		return
	}

	ev := feed.Event{
		Table:  "appointments",
		Op:     op,
		Doctor: appt.DoctorID.String(),
		Row:    row,
		At:     time.Now(),
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		log.Printf("publish feed event for appointment %s: %v", appt.ID, err)
	}
}
