package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/clinicore/clinic-scheduling/internal/booking"
	"github.com/clinicore/clinic-scheduling/internal/queue"
	"github.com/clinicore/clinic-scheduling/internal/ws"
)

type RouterConfig struct {
	Booking *booking.Service
	Queue   *queue.Service
	Hub     *ws.Hub
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(PrincipalMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Appointment endpoints
	r.Post("/appointments", bookAppointmentHandler(cfg.Booking))
	r.Get("/appointments", listAppointmentsHandler(cfg.Booking))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Booking))
	r.Post("/appointments/{id}/status", setAppointmentStatusHandler(cfg.Booking))

	// Queue endpoints
	r.Post("/queue/check-in", checkInHandler(cfg.Queue))
	r.Get("/queue", listQueueHandler(cfg.Queue))
	r.Get("/queue/position", queuePositionHandler(cfg.Queue))
	r.Get("/queue/{id}", getQueueEntryHandler(cfg.Queue))
	r.Post("/queue/{id}/status", setQueueStatusHandler(cfg.Queue))

	// Dashboard change feed
	if cfg.Hub != nil {
		r.Get("/ws", cfg.Hub.Handler())
	}

	return r
}
