package handlers

import (
	"net/http"

	"quicky-client/internal/services"
)

type StatusHandler struct {
	health *services.HealthService
}

func NewStatusHandler(health *services.HealthService) *StatusHandler {
	return &StatusHandler{health: health}
}

// Get serves the latest observed backend status.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.health.Status())
}

// Wake probes the backend with the long timeout so a sleeping instance
// has time to boot, then serves the resulting status.
func (h *StatusHandler) Wake(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.health.Wake(r.Context()))
}
