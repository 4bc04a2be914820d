package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/eventura/server/internal/api/respond"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HealthHandler struct {
	Pool    *pgxpool.Pool
	Version string
	Commit  string
}

func NewHealthHandler(pool *pgxpool.Pool, version, commit string) *HealthHandler {
	return &HealthHandler{Pool: pool, Version: version, Commit: commit}
}

type healthResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
}

// Healthz is the liveness probe: the process is up and serving.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, healthResponse{
		Message: "ok",
		Status:  "healthy",
		Version: h.Version,
		Commit:  h.Commit,
	})
}

// Readyz is the readiness probe: the database must answer a ping.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.Pool == nil {
		respond.JSON(w, http.StatusServiceUnavailable, healthResponse{
			Message: "database pool not initialized",
			Status:  "unhealthy",
			Version: h.Version,
		})
		return
	}

	if err := h.Pool.Ping(ctx); err != nil {
		respond.JSON(w, http.StatusServiceUnavailable, healthResponse{
			Message: "database unreachable",
			Status:  "unhealthy",
			Version: h.Version,
		})
		return
	}

	respond.JSON(w, http.StatusOK, healthResponse{
		Message: "ready",
		Status:  "healthy",
		Version: h.Version,
	})
}
