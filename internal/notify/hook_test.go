package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMailer struct {
	sends int32
	last  Email
	err   error
}

func (m *countingMailer) Send(_ context.Context, email Email) error {
	atomic.AddInt32(&m.sends, 1)
	m.last = email
	return m.err
}

func postChange(t *testing.T, h http.Handler, change StatusChange) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(change)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/status-changed", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sampleChange(oldStatus, newStatus string) StatusChange {
	start := time.Date(2025, 11, 12, 14, 0, 0, 0, time.Local)
	return StatusChange{
		Record: Record{
			ID:           "appt-1",
			Status:       newStatus,
			DoctorName:   "Dr. Smith",
			PatientName:  "Jane Doe",
			PatientEmail: "jane@example.org",
			StartTime:    &start,
		},
		OldRecord: Record{
			ID:     "appt-1",
			Status: oldStatus,
		},
	}
}

// An unchanged status responds 200 with zero sends: duplicate triggers must
// not produce duplicate email.
func TestHandlerSameStatusNoSend(t *testing.T) {
	mailer := &countingMailer{}
	h := NewHandler(mailer, "clinic@example.org")

	rec := postChange(t, h, sampleChange("pending", "pending"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, atomic.LoadInt32(&mailer.sends))
}

func TestHandlerChangedStatusSends(t *testing.T) {
	mailer := &countingMailer{}
	h := NewHandler(mailer, "clinic@example.org")

	rec := postChange(t, h, sampleChange("pending", "confirmed"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&mailer.sends))

	assert.Equal(t, "clinic@example.org", mailer.last.From)
	assert.Equal(t, "jane@example.org", mailer.last.To)
	assert.Contains(t, mailer.last.Subject, "confirmed")
	assert.Contains(t, mailer.last.HTML, "Dr. Smith")
	assert.Contains(t, mailer.last.HTML, "pending")
}

func TestHandlerMissingAPIKeyIs500(t *testing.T) {
	mailer := &countingMailer{err: ErrAPIKeyUnset}
	h := NewHandler(mailer, "clinic@example.org")

	rec := postChange(t, h, sampleChange("pending", "confirmed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// Downstream email failure is fire-and-forget: the hook still answers 200.
func TestHandlerDownstreamFailureStill200(t *testing.T) {
	mailer := &countingMailer{err: assert.AnError}
	h := NewHandler(mailer, "clinic@example.org")

	rec := postChange(t, h, sampleChange("pending", "confirmed"))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerNoPatientEmailSkips(t *testing.T) {
	mailer := &countingMailer{}
	h := NewHandler(mailer, "clinic@example.org")

	change := sampleChange("pending", "confirmed")
	change.Record.PatientEmail = ""
	rec := postChange(t, h, change)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, atomic.LoadInt32(&mailer.sends))
}

func TestHandlerBadPayload(t *testing.T) {
	h := NewHandler(&countingMailer{}, "clinic@example.org")

	req := httptest.NewRequest(http.MethodPost, "/status-changed", bytes.NewReader([]byte("{nope")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPMailerPostsEmail(t *testing.T) {
	var calls int32
	var got Email
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	mailer := NewHTTPMailer(srv.URL, "test-key")
	err := mailer.Send(context.Background(), Email{
		From:    "clinic@example.org",
		To:      "jane@example.org",
		Subject: "hello",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "jane@example.org", got.To)
}

func TestHTTPMailerUnsetKey(t *testing.T) {
	mailer := NewHTTPMailer("http://localhost:0", "")
	err := mailer.Send(context.Background(), Email{To: "jane@example.org"})
	assert.ErrorIs(t, err, ErrAPIKeyUnset)
}

func TestHTTPMailerRetryPolicy(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	mailer := NewHTTPMailer(srv.URL, "test-key")
	mailer.Retry = RetryPolicy{MaxAttempts: 3}

	err := mailer.Send(context.Background(), Email{To: "jane@example.org"})
	assert.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
