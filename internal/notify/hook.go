package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Record is the appointment projection carried in the webhook payload.
type Record struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	DoctorName   string     `json:"doctor_name"`
	PatientName  string     `json:"patient_name"`
	PatientEmail string     `json:"patient_email,omitempty"`
	StartTime    *time.Time `json:"start_time,omitempty"`
}

// StatusChange is the payload raised on every appointment status update,
// carrying the row before and after the write.
type StatusChange struct {
	Record    Record `json:"record"`
	OldRecord Record `json:"old_record"`
}

// Handler receives StatusChange payloads and decides whether to email the
// patient. When old and new status are identical it responds 200 without
// action, guarding against duplicate-trigger delivery. A downstream email
// failure is logged and still answered 200; only a missing API key is a 500.
type Handler struct {
	Mailer Mailer
	From   string
}

func NewHandler(mailer Mailer, from string) *Handler {
	return &Handler{Mailer: mailer, From: from}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var change StatusChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		http.Error(w, "could not parse payload", http.StatusBadRequest)
		return
	}

	if change.Record.Status == change.OldRecord.Status {
		w.WriteHeader(http.StatusOK)
		return
	}

	if change.Record.PatientEmail == "" {
		log.Printf("notify: appointment %s has no patient email, skipping", change.Record.ID)
		w.WriteHeader(http.StatusOK)
		return
	}

	email := ComposeEmail(h.From, change)
	if err := h.Mailer.Send(r.Context(), email); err != nil {
		if errors.Is(err, ErrAPIKeyUnset) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("notify: email send failed for appointment %s: %v", change.Record.ID, err)
	}

	w.WriteHeader(http.StatusOK)
}

// ComposeEmail renders the status-change message for the patient.
func ComposeEmail(from string, change StatusChange) Email {
	rec := change.Record

	when := "your scheduled time"
	if rec.StartTime != nil {
		when = rec.StartTime.Format("Monday, Jan 2 2006 at 3:04 PM")
	}

	subject := fmt.Sprintf("Your appointment is now %s", rec.Status)
	html := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your appointment with %s on %s changed from <b>%s</b> to <b>%s</b>.</p>",
		rec.PatientName, rec.DoctorName, when, change.OldRecord.Status, rec.Status,
	)

	return Email{
		From:    from,
		To:      rec.PatientEmail,
		Subject: subject,
		HTML:    html,
	}
}
