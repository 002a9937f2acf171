package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-scheduling/internal/booking"
)

func sampleAppointment(status booking.Status) *booking.Appointment {
	email := "jane@example.org"
	return &booking.Appointment{
		ID:           uuid.New(),
		DoctorName:   "Dr. Smith",
		PatientName:  "Jane Doe",
		PatientEmail: &email,
		StartTime:    time.Date(2025, 11, 12, 14, 0, 0, 0, time.Local),
		Status:       status,
	}
}

func TestHookNotifierPostsPayload(t *testing.T) {
	var got StatusChange
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewHookNotifier(srv.URL)

	old := sampleAppointment(booking.StatusPending)
	updated := *old
	updated.Status = booking.StatusConfirmed

	err := n.NotifyStatusChange(context.Background(), old, &updated)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "pending", got.OldRecord.Status)
	assert.Equal(t, "confirmed", got.Record.Status)
	assert.Equal(t, "jane@example.org", got.Record.PatientEmail)
}

func TestHookNotifierErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewHookNotifier(srv.URL)
	old := sampleAppointment(booking.StatusPending)
	assert.Error(t, n.NotifyStatusChange(context.Background(), old, old))
}

// Same-status events reach the notifier but produce no send.
func TestMailerNotifierSuppressesSameStatus(t *testing.T) {
	mailer := &countingMailer{}
	n := NewMailerNotifier(mailer, "clinic@example.org")

	appt := sampleAppointment(booking.StatusPending)
	require.NoError(t, n.NotifyStatusChange(context.Background(), appt, appt))
	assert.Zero(t, atomic.LoadInt32(&mailer.sends))
}

func TestMailerNotifierSendsOnChange(t *testing.T) {
	mailer := &countingMailer{}
	n := NewMailerNotifier(mailer, "clinic@example.org")

	old := sampleAppointment(booking.StatusPending)
	updated := *old
	updated.Status = booking.StatusConfirmed

	require.NoError(t, n.NotifyStatusChange(context.Background(), old, &updated))
	assert.Equal(t, int32(1), atomic.LoadInt32(&mailer.sends))
	assert.Equal(t, "jane@example.org", mailer.last.To)
}
