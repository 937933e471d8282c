package handler

import (
	"net/http"
	"time"

	"fleettrack/internal/session"
)

// StatusHandler exposes server health and the live device session registry.
type StatusHandler struct {
	registry *session.Registry
}

func NewStatusHandler(registry *session.Registry) *StatusHandler {
	return &StatusHandler{registry: registry}
}

// Health handles GET /health.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Connected handles GET /devices/connected.
func (h *StatusHandler) Connected(w http.ResponseWriter, r *http.Request) {
	devices := h.registry.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}
