package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/samber/lo"

	"github.com/mandalnilabja/scenesculpt/internal/config"
	"github.com/mandalnilabja/scenesculpt/internal/storage"
	"github.com/mandalnilabja/scenesculpt/internal/storage/models"
	"github.com/mandalnilabja/scenesculpt/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/scenesculpt/internal/version"
)

// recentWindow is how many generations AdminInfo summarizes.
const recentWindow = 100

// AdminHealth handles GET /api/admin/health. The stored API key is reported
// as missing when no default stability credential exists; that only matters
// when the key source is the store.
func (h *Handlers) AdminHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	dbStatus := "connected"
	keyStatus := "configured"

	_, err := h.Storage.GetDefaultCredential(models.ProviderStability)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		keyStatus = "missing"
	case err != nil:
		status = "degraded"
		dbStatus = "error: " + err.Error()
		keyStatus = "unknown"
	}

	shared.WriteJSON(w, map[string]any{
		"status":         status,
		"database":       dbStatus,
		"stored_api_key": keyStatus,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// AdminInfo handles GET /api/admin/info.
func (h *Handlers) AdminInfo(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.StartTime)

	creds, _ := h.Storage.ListCredentials()
	recent, _ := h.Storage.ListGenerations(storage.GenerationFilter{Limit: recentWindow})

	failed := lo.Filter(recent, func(g *storage.GenerationLog, _ int) bool { return g.Status == models.GenerationFailed })
	byKind := lo.MapValues(
		lo.GroupBy(failed, func(g *storage.GenerationLog) string { return lo.Ternary(g.ErrorKind == "", "other", g.ErrorKind) }),
		func(logs []*storage.GenerationLog, _ string) int { return len(logs) },
	)

	generations := map[string]any{
		"window":        recentWindow,
		"succeeded":     lo.CountBy(recent, func(g *storage.GenerationLog) bool { return g.Status == models.GenerationSucceeded }),
		"failed":        len(failed),
		"by_error_kind": byKind,
	}
	if len(recent) > 0 {
		generations["last_at"] = recent[0].CreatedAt
		generations["last_status"] = recent[0].Status
	}

	shared.WriteJSON(w, map[string]any{
		"version":     version.Version,
		"go_version":  runtime.Version(),
		"uptime":      uptime.String(),
		"uptime_secs": int64(uptime.Seconds()),
		"data_dir":    config.DataDir(),
		"stats": map[string]any{
			"total_credentials": len(creds),
			"generations":       generations,
		},
	}, http.StatusOK)
}

// ChangePasswordRequest is the request body for changing admin password.
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// ChangeAdminPassword changes the admin password (PUT /api/admin/password).
// Cached verifications of the old password stop matching once the hash
// changes.
func (h *Handlers) ChangeAdminPassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if !shared.IsValidAdminPassword(req.NewPassword) {
		shared.WriteJSONError(w, "password needs 8+ characters with a letter and a digit and no spaces", http.StatusBadRequest)
		return
	}

	if current, err := h.Storage.GetAdminPasswordHash(); err == nil && current != "" {
		if same, _ := storage.VerifyPassword(req.NewPassword, current); same {
			shared.WriteJSONError(w, "new password must differ from the current one", http.StatusBadRequest)
			return
		}
	}

	hash, err := storage.HashPassword(req.NewPassword, storage.DefaultPasswordParams())
	if err != nil {
		shared.WriteJSONError(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	if err := h.Storage.SetAdminPasswordHash(hash); err != nil {
		shared.WriteJSONError(w, "failed to save password", http.StatusInternalServerError)
		return
	}

	shared.WriteJSON(w, map[string]string{"message": "password updated"}, http.StatusOK)
}
