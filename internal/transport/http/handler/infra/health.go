package infra

import (
	"net/http"
	"time"

	"github.com/mandalnilabja/scenesculpt/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/scenesculpt/internal/version"
)

// RootStatus returns JSON status and version information at /.
func (h *Handlers) RootStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		shared.WriteJSONError(w, "no route for "+r.URL.Path, http.StatusNotFound)
		return
	}
	shared.WriteJSON(w, map[string]any{
		"name":    "scenesculpt",
		"version": version.Version,
		"status":  "running",
		"engine":  h.EngineID,
		"api":     "/api",
		"admin":   "/api/admin",
	}, http.StatusOK)
}

// HealthCheck handler returns the application health status.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, map[string]any{
		"status":      "active",
		"app":         "scenesculpt",
		"uptime_secs": int64(time.Since(h.StartTime).Seconds()),
	}, http.StatusOK)
}
