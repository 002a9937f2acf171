package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/clinicore/clinic-scheduling/internal/booking"
)

// HookNotifier forwards appointment status changes to the notification hook
// as a StatusChange payload. It satisfies booking.Notifier.
type HookNotifier struct {
	HookURL string
	Client  *http.Client
}

func NewHookNotifier(hookURL string) *HookNotifier {
	return &HookNotifier{
		HookURL: hookURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *HookNotifier) NotifyStatusChange(ctx context.Context, old, updated *booking.Appointment) error {
	payload := StatusChange{
		Record:    recordOf(updated),
		OldRecord: recordOf(old),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal status change: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.HookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build hook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post status change: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification hook responded %d", resp.StatusCode)
	}
	return nil
}

// MailerNotifier hands status changes straight to a Handler-equivalent path
// in process, for deployments that run without the standalone hook.
type MailerNotifier struct {
	Mailer Mailer
	From   string
}

func NewMailerNotifier(mailer Mailer, from string) *MailerNotifier {
	return &MailerNotifier{Mailer: mailer, From: from}
}

func (n *MailerNotifier) NotifyStatusChange(ctx context.Context, old, updated *booking.Appointment) error {
	if old.Status == updated.Status {
		return nil
	}
	change := StatusChange{
		Record:    recordOf(updated),
		OldRecord: recordOf(old),
	}
	if change.Record.PatientEmail == "" {
		return nil
	}
	return n.Mailer.Send(ctx, ComposeEmail(n.From, change))
}

func recordOf(a *booking.Appointment) Record {
	rec := Record{
		ID:          a.ID.String(),
		Status:      string(a.Status),
		DoctorName:  a.DoctorName,
		PatientName: a.PatientName,
	}
	if a.PatientEmail != nil {
		rec.PatientEmail = *a.PatientEmail
	}
	start := a.StartTime
	rec.StartTime = &start
	return rec
}
