package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// PostgresCheck pings the pool.
func PostgresCheck(pool *pgxpool.Pool) Check {
	return pool.Ping
}

// RedisCheck pings the Redis server.
func RedisCheck(client *redis.Client) Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	checks map[string]Check
}

// NewHealthHandler creates a new HealthHandler. Only the named checks run on
// readiness; the memory store has none.
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if every dependency answers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	body := map[string]string{"status": "ready"}
	status := http.StatusOK

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			body[name] = "unhealthy: " + err.Error()
			body["status"] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		body[name] = "ok"
	}

	writeJSON(w, status, body)
}
