// The notify-hook service receives appointment status-change payloads from
// the api-server and emails the patient through a transactional-email API.
// It runs as its own process so email credentials never reach the api-server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicore/clinic-scheduling/internal/config"
	"github.com/clinicore/clinic-scheduling/internal/notify"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("notify-hook starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	if cfg.EmailAPIKey == "" {
		log.Println("EMAIL_API_KEY is unset; status-change requests will be answered 500")
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mailer := notify.NewHTTPMailer(cfg.EmailAPIURL, cfg.EmailAPIKey)
	handler := notify.NewHandler(mailer, cfg.EmailFrom)

	mux := http.NewServeMux()
	mux.Handle("POST /status-changed", handler)

	srv := &http.Server{
		Addr:              ":" + cfg.HookPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down notify-hook")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
