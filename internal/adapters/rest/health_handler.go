package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Health status values
const (
	healthStatusHealthy   = "healthy"
	healthStatusUnhealthy = "unhealthy"
	checkStatusUp         = "up"
	checkStatusDown       = "down"
)

// HealthStatus is the response body of the health endpoints
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

type HealthHandler struct {
	*BaseHandler
	version string
	pool    *pgxpool.Pool // For readiness check
}

func NewHealthHandler(base *BaseHandler, version string, pool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{
		BaseHandler: base,
		version:     version,
		pool:        pool,
	}
}

// GetLiveness implements the liveness probe endpoint.
// This is a lightweight check with no external dependencies.
func (h *HealthHandler) GetLiveness(w http.ResponseWriter, r *http.Request) {
	response := HealthStatus{
		Status:    healthStatusHealthy,
		Timestamp: time.Now(),
		Version:   h.version,
	}

	h.WriteJSONResponse(w, r, response, http.StatusOK)
}

// GetReadiness implements the readiness probe endpoint.
// This checks all critical dependencies.
func (h *HealthHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	status := healthStatusHealthy
	httpStatus := http.StatusOK
	checks := map[string]string{}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		checks["database"] = checkStatusDown
		status = healthStatusUnhealthy
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["database"] = checkStatusUp
	}

	response := HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Version:   h.version,
		Checks:    checks,
	}

	h.WriteJSONResponse(w, r, response, httpStatus)
}
