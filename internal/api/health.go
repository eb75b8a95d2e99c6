package api

import (
	"net/http"
	"time"

	"github.com/invite-sh/server/internal/api/respond"
)

// HealthHandler reports cached service health.
type HealthHandler struct {
	isHealthy func() bool
}

// NewHealthHandler wires the aggregated health flag. A nil func means no
// monitor is running and health reports healthy (single-binary dev mode).
func NewHealthHandler(isHealthy func() bool) *HealthHandler {
	if isHealthy == nil {
		isHealthy = func() bool { return true }
	}
	return &HealthHandler{isHealthy: isHealthy}
}

// CheckHealth handles GET /api/health. Always 200; the body carries status.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	if h.isHealthy() {
		status = "healthy"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// CheckDependencies handles GET /api/health/deps. 503 until every dependency
// probe has succeeded.
func (h *HealthHandler) CheckDependencies(w http.ResponseWriter, r *http.Request) {
	if !h.isHealthy() {
		respond.WriteError(w, http.StatusServiceUnavailable, "dependencies unavailable")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
}
