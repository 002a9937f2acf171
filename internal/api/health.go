package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	pgPool  *pgxpool.Pool
	redis   *redis.Client
	env     string
	version string
}

func NewHealthHandler(pgPool *pgxpool.Pool, redis *redis.Client, env, version string) *HealthHandler {
	return &HealthHandler{
		pgPool:  pgPool,
		redis:   redis,
		env:     env,
		version: version,
	}
}

type healthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	})
}

// Readiness pings each collaborator. Postgres down means the service cannot
// serve at all; Redis down only degrades the dashboard feed.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	type check struct {
		name     string
		ping     func(ctx context.Context) error
		critical bool
	}
	checks := []check{
		{"postgres", h.pgPool.Ping, true},
		{"redis", func(ctx context.Context) error { return h.redis.Ping(ctx).Err() }, false},
	}

	deps := make(map[string]string, len(checks))
	status := "ok"
	for _, c := range checks {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		err := c.ping(ctx)
		cancel()
		if err != nil {
			deps[c.name] = "down"
			if c.critical {
				status = "error"
			} else if status == "ok" {
				status = "degraded"
			}
			continue
		}
		deps[c.name] = "ok"
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{
		Status:       status,
		Version:      h.version,
		Env:          h.env,
		Dependencies: deps,
	})
}
