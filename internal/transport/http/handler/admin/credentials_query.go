package admin

import (
	"net/http"

	"github.com/samber/lo"

	"github.com/mandalnilabja/scenesculpt/internal/storage"
	"github.com/mandalnilabja/scenesculpt/internal/transport/http/handler/shared"
)

// ListCredentials handles GET /api/admin/credentials. Keys are masked; the
// id of the credential generation uses by default is returned alongside.
func (h *Handlers) ListCredentials(w http.ResponseWriter, r *http.Request) {
	creds, err := h.Storage.ListCredentials()
	if err != nil {
		shared.WriteJSONError(w, "Failed to list credentials: "+err.Error(), http.StatusInternalServerError)
		return
	}

	previews := lo.Map(creds, func(c *storage.Credential, _ int) *storage.CredentialPreview {
		return c.ToPreview()
	})

	var defaultID string
	if c, ok := lo.Find(creds, func(c *storage.Credential) bool { return c.IsDefault }); ok {
		defaultID = c.ID
	}

	shared.WriteJSON(w, map[string]any{
		"credentials": previews,
		"default_id":  defaultID,
	}, http.StatusOK)
}

// GetCredential handles GET /api/admin/credentials/{id}.
func (h *Handlers) GetCredential(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		shared.WriteJSONError(w, "Credential ID is required", http.StatusBadRequest)
		return
	}

	cred, err := h.Storage.GetCredential(id)
	if err != nil {
		writeStorageError(w, "get credential", err)
		return
	}

	shared.WriteJSON(w, cred.ToPreview(), http.StatusOK)
}
