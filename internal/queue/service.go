package queue

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

// Policy holds the named admission rules for check-in.
type Policy struct {
	// AllowUnmatchedPatient keeps admission open when patient identity
	// resolution fails: the entry is created with a nil patient id instead
	// of rejecting the check-in.
	AllowUnmatchedPatient bool
}

type Service struct {
	repo   Repository
	pub    feed.Publisher
	policy Policy
}

func NewService(repo Repository, pub feed.Publisher, policy Policy) *Service {
	return &Service{
		repo:   repo,
		pub:    pub,
		policy: policy,
	}
}

// CheckIn admits a walk-in patient with status waiting. Patient identity is
// resolved by name; under AllowUnmatchedPatient a lookup failure is logged
// and the entry is still created with no patient id.
func (s *Service) CheckIn(ctx context.Context, patientName, doctorName string) (*Entry, error) {
	if patientName == "" {
		return nil, fmt.Errorf("%w: patientName", ErrMissingField)
	}
	if doctorName == "" {
		return nil, fmt.Errorf("%w: doctorName", ErrMissingField)
	}

	var patientID *uuid.UUID
	id, err := s.repo.FindPatientIDByName(ctx, patientName)
	switch {
	case err == nil:
		patientID = &id
	case s.policy.AllowUnmatchedPatient:
		log.Printf("check-in: patient lookup failed for %q, admitting unmatched: %v", patientName, err)
	case errors.Is(err, ErrPatientNotFound):
		return nil, err
	default:
		return nil, fmt.Errorf("resolve patient: %w", err)
	}

	now := time.Now()
	entry := &Entry{
		ID:          uuid.New(),
		PatientID:   patientID,
		PatientName: patientName,
		DoctorName:  doctorName,
		Status:      StatusWaiting,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("create queue entry: %w", err)
	}

	s.publish(ctx, feed.OpInsert, entry)
	return entry, nil
}

// UpdateStatus moves a queue entry to a new state. Values outside the
// canonical set are rejected before any storage call is made.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, rawStatus string) (*Entry, error) {
	to, ok := ParseStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, rawStatus)
	}

	entry, err := s.repo.UpdateEntryStatus(ctx, id, to)
	if err != nil {
		return nil, fmt.Errorf("update queue status: %w", err)
	}

	s.publish(ctx, feed.OpUpdate, entry)
	return entry, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	entry, err := s.repo.GetEntryByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get queue entry: %w", err)
	}
	return entry, nil
}

// List returns the queue in check-in order, first-checked-in first.
func (s *Service) List(ctx context.Context, doctorName string, status Status) ([]Entry, error) {
	entries, err := s.repo.ListEntries(ctx, doctorName, status)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	return entries, nil
}

// PositionFor returns the display position for a doctor's queue plus the
// total number of entries.
func (s *Service) PositionFor(ctx context.Context, doctorName string) (position, total int, err error) {
	entries, err := s.List(ctx, doctorName, "")
	if err != nil {
		return 0, 0, err
	}
	return Position(entries), len(entries), nil
}

func (s *Service) publish(ctx context.Context, op feed.Op, e *Entry) {
	row, err := json.Marshal(map[string]any{
		"id":           e.ID.String(),
		"patient_name": e.PatientName,
		"doctor_name":  e.DoctorName,
		"status":       string(e.Status),
		"created_at":   e.CreatedAt,
	})
	if err != nil {
		log.Printf("marshal feed row for queue entry %s: %v", e.ID, err)
		return
	}

	ev := feed.Event{
		Table:  "patients_queue",
		Op:     op,
		Doctor: e.DoctorName,
		Row:    row,
		At:     time.Now(),
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		log.Printf("publish feed event for queue entry %s: %v", e.ID, err)
	}
}
