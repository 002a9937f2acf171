package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-scheduling/internal/feed"
)

// -- Mocks --

type mockRepo struct {
	doctors      map[uuid.UUID]*Doctor
	patients     map[uuid.UUID]*Patient
	appointments map[uuid.UUID]*Appointment

	createCalls int
	updateCalls int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		doctors:      make(map[uuid.UUID]*Doctor),
		patients:     make(map[uuid.UUID]*Patient),
		appointments: make(map[uuid.UUID]*Appointment),
	}
}

func (m *mockRepo) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return p, nil
}

func (m *mockRepo) GetDoctorByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return d, nil
}

func (m *mockRepo) CreateAppointment(_ context.Context, a *Appointment) error {
	m.createCalls++
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) ListAppointments(_ context.Context, f ListFilter) ([]Appointment, error) {
	var out []Appointment
	for _, a := range m.appointments {
		if f.DoctorID != uuid.Nil && a.DoctorID != f.DoctorID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockRepo) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, to Status) (*Appointment, error) {
	m.updateCalls++
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

func (m *mockRepo) FindStartingBetween(_ context.Context, from, to time.Time) ([]Appointment, error) {
	var out []Appointment
	for _, a := range m.appointments {
		if a.Status == StatusConfirmed && !a.StartTime.Before(from) && a.StartTime.Before(to) {
			out = append(out, *a)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	calls []struct{ old, new Status }
	err   error
}

func (n *recordingNotifier) NotifyStatusChange(_ context.Context, old, updated *Appointment) error {
	n.calls = append(n.calls, struct{ old, new Status }{old.Status, updated.Status})
	return n.err
}

func newTestService(repo *mockRepo, notifier Notifier) (*Service, *feed.MemoryFeed) {
	bus := feed.NewMemoryFeed()
	builder := NewBuilder("https://meet.example.org")
	return NewService(repo, builder, bus, notifier), bus
}

// -- Tests --

func TestBookPersistsAndPublishes(t *testing.T) {
	repo := newMockRepo()
	svc, bus := newTestService(repo, nil)

	req := validRequest()
	events, stop, err := bus.Subscribe(context.Background(), "appointments", req.DoctorID.String())
	require.NoError(t, err)
	defer stop()

	appt, err := svc.Book(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.createCalls)
	assert.Equal(t, StatusPending, appt.Status)

	select {
	case ev := <-events:
		assert.Equal(t, "appointments", ev.Table)
		assert.Equal(t, feed.OpInsert, ev.Op)
	case <-time.After(time.Second):
		t.Fatal("no feed event published for booking")
	}
}

func TestBookResolvesDoctorName(t *testing.T) {
	repo := newMockRepo()
	doctorID := uuid.New()
	repo.doctors[doctorID] = &Doctor{ID: doctorID, Name: "Dr. Adams"}

	svc, _ := newTestService(repo, nil)

	req := validRequest()
	req.DoctorID = doctorID
	req.DoctorName = ""

	appt, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Adams", appt.DoctorName)
}

func TestBookUnknownDoctor(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, nil)

	req := validRequest()
	req.DoctorName = ""

	_, err := svc.Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
	assert.Zero(t, repo.createCalls)
}

func TestBookBackfillsPatientContact(t *testing.T) {
	repo := newMockRepo()
	patientID := uuid.New()
	email := "jane@example.org"
	phone := "555-0199"
	repo.patients[patientID] = &Patient{ID: patientID, Name: "Jane Doe", Email: &email, Phone: &phone}

	svc, _ := newTestService(repo, nil)

	req := validRequest()
	req.PatientID = &patientID

	appt, err := svc.Book(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, appt.PatientEmail)
	assert.Equal(t, email, *appt.PatientEmail)
	require.NotNil(t, appt.PatientPhone)
	assert.Equal(t, phone, *appt.PatientPhone)
}

func TestBookContactFromRequestWins(t *testing.T) {
	repo := newMockRepo()
	patientID := uuid.New()
	stored := "old@example.org"
	repo.patients[patientID] = &Patient{ID: patientID, Name: "Jane Doe", Email: &stored}

	svc, _ := newTestService(repo, nil)

	supplied := "new@example.org"
	req := validRequest()
	req.PatientID = &patientID
	req.PatientEmail = &supplied

	appt, err := svc.Book(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, appt.PatientEmail)
	assert.Equal(t, supplied, *appt.PatientEmail)
}

func TestBookUnknownPatient(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, nil)

	unknown := uuid.New()
	req := validRequest()
	req.PatientID = &unknown

	_, err := svc.Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrPatientNotFound)
	assert.Zero(t, repo.createCalls)
}

func TestBookInvalidTimeCreatesNothing(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, nil)

	req := validRequest()
	req.SelectedTime = "garbage"

	_, err := svc.Book(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)
	assert.Zero(t, repo.createCalls, "storage must record zero calls on a failed build")
}

func TestSetStatusValidTransition(t *testing.T) {
	repo := newMockRepo()
	notifier := &recordingNotifier{}
	svc, _ := newTestService(repo, notifier)

	appt, err := svc.Book(context.Background(), validRequest())
	require.NoError(t, err)

	updated, err := svc.SetStatus(context.Background(), appt.ID, "confirmed")
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, updated.Status)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, StatusPending, notifier.calls[0].old)
	assert.Equal(t, StatusConfirmed, notifier.calls[0].new)
}

func TestSetStatusLegacyBooked(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, nil)

	appt, err := svc.Book(context.Background(), validRequest())
	require.NoError(t, err)

	updated, err := svc.SetStatus(context.Background(), appt.ID, "booked")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)
}

func TestSetStatusInvalidValueNeverReachesStorage(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, nil)

	appt, err := svc.Book(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), appt.ID, "invalid-value")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Zero(t, repo.updateCalls)
}

func TestSetStatusInvalidTransition(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, nil)

	appt, err := svc.Book(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), appt.ID, "attended")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Zero(t, repo.updateCalls)
}

func TestSetStatusNotFound(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo, nil)

	_, err := svc.SetStatus(context.Background(), uuid.New(), "confirmed")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

// A same-status update is allowed through: the notifier still receives the
// event and is the one deciding to suppress delivery.
func TestSetStatusSameStatusStillNotifies(t *testing.T) {
	repo := newMockRepo()
	notifier := &recordingNotifier{}
	svc, _ := newTestService(repo, notifier)

	appt, err := svc.Book(context.Background(), validRequest())
	require.NoError(t, err)

	updated, err := svc.SetStatus(context.Background(), appt.ID, "pending")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, updated.Status)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, notifier.calls[0].old, notifier.calls[0].new)
}

// A failing notification collaborator must never roll back the transition.
func TestSetStatusNotifierFailureIsSwallowed(t *testing.T) {
	repo := newMockRepo()
	notifier := &recordingNotifier{err: errors.New("smtp on fire")}
	svc, _ := newTestService(repo, notifier)

	appt, err := svc.Book(context.Background(), validRequest())
	require.NoError(t, err)

	updated, err := svc.SetStatus(context.Background(), appt.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)

	stored, err := repo.GetAppointmentByID(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, stored.Status)
}
