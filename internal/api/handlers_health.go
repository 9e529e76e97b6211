package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReadyResponse represents the readiness response with per-dependency detail
type ReadyResponse struct {
	Status string            `json:"status" example:"ready"`
	Checks map[string]string `json:"checks"`
}

// HandleHealthz godoc
// @Summary Liveness probe
// @Description Answers 200 OK whenever the process is up. Carries no dependency checks, so restart loops in one backend never fail liveness.
// @Tags health
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /healthz [get]
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// HandleReadyz godoc
// @Summary Readiness probe
// @Description Pings Postgres plus both Redis instances and reports a status line per dependency. Answers 200 only when every ping succeeds, 503 otherwise.
// @Tags health
// @Produce json
// @Success 200 {object} ReadyResponse "Every backend reachable"
// @Failure 503 {object} ReadyResponse "One or more backends unreachable"
// @Router /readyz [get]
func HandleReadyz(db *sql.DB, cache, asynqRedis *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := make(map[string]string, 3)
		ready := true

		if err := db.PingContext(ctx); err != nil {
			checks["postgres"] = err.Error()
			ready = false
		} else {
			checks["postgres"] = "ok"
		}

		if cache != nil {
			if err := cache.Ping(ctx).Err(); err != nil {
				checks["redis_cache"] = err.Error()
				ready = false
			} else {
				checks["redis_cache"] = "ok"
			}
		}

		if asynqRedis != nil {
			if err := asynqRedis.Ping(ctx).Err(); err != nil {
				checks["redis_asynq"] = err.Error()
				ready = false
			} else {
				checks["redis_asynq"] = "ok"
			}
		}

		if !ready {
			writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{Status: "unavailable", Checks: checks})
			return
		}
		writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready", Checks: checks})
	}
}
