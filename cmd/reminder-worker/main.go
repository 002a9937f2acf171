// The reminder-worker mails patients about next-day confirmed appointments.
// It runs on a cron schedule, one pass per firing, and is safe to restart:
// each pass only reads tomorrow's window and sends best-effort email.
package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/clinicore/clinic-scheduling/internal/booking"
	"github.com/clinicore/clinic-scheduling/internal/config"
	"github.com/clinicore/clinic-scheduling/internal/db"
	"github.com/clinicore/clinic-scheduling/internal/notify"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("reminder-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running reminder worker in env=%s schedule=%q", cfg.Env, cfg.ReminderCron)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.Connect(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	repo := booking.NewPgRepository(pgPool)
	mailer := notify.NewHTTPMailer(cfg.EmailAPIURL, cfg.EmailAPIKey)

	c := cron.New()
	_, err = c.AddFunc(cfg.ReminderCron, func() {
		runOnce(rootCtx, repo, mailer, cfg.EmailFrom)
	})
	if err != nil {
		log.Fatalf("invalid REMINDER_CRON %q: %v", cfg.ReminderCron, err)
	}
	c.Start()

	<-rootCtx.Done()
	log.Println("shutdown signal received, stopping reminder worker")
	<-c.Stop().Done()
}

func runOnce(ctx context.Context, repo *booking.PgRepository, mailer notify.Mailer, from string) {
	runCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	start := time.Now()

	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.Local).Add(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	appts, err := repo.FindStartingBetween(runCtx, dayStart, dayEnd)
	if err != nil {
		log.Printf("reminder run error: %v", err)
		return
	}

	sent := 0
	for i := range appts {
		a := &appts[i]
		if a.PatientEmail == nil || *a.PatientEmail == "" {
			continue
		}

		email := notify.Email{
			From:    from,
			To:      *a.PatientEmail,
			Subject: "Appointment reminder for tomorrow",
			HTML: fmt.Sprintf(
				"<p>Hello %s,</p><p>This is a reminder of your appointment with %s tomorrow at %s.</p>",
				a.PatientName, a.DoctorName, a.StartTime.Format("3:04 PM"),
			),
		}
		if err := mailer.Send(runCtx, email); err != nil {
			log.Printf("reminder email failed for appointment %s: %v", a.ID, err)
			continue
		}
		sent++
	}

	log.Printf("reminder run complete in %s appointments=%d sent=%d", time.Since(start), len(appts), sent)
}
