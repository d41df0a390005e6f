package handlers

import (
	"net/http"
	"time"

	"storeplane/pkg/api"
)

// Health handles GET /api/health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, api.HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC(),
		Environment: h.nodeEnv,
	})
}

// Healthz is a Kubernetes liveness probe: 200 if the process is running.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Readyz is a Kubernetes readiness probe: 200 only if the database is
// reachable.
func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Ping(r.Context()); err != nil {
		h.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
