package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mandalnilabja/scenesculpt/internal/storage"
	"github.com/mandalnilabja/scenesculpt/internal/storage/models"
	"github.com/mandalnilabja/scenesculpt/internal/transport/http/handler/shared"
)

// CreateCredential handles POST /api/admin/credentials.
func (h *Handlers) CreateCredential(w http.ResponseWriter, r *http.Request) {
	var req CreateCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Provider == "" {
		req.Provider = models.ProviderStability
	}
	req.Name = strings.TrimSpace(req.Name)
	req.APIKey = strings.TrimSpace(req.APIKey)
	if req.Name == "" || req.APIKey == "" {
		shared.WriteJSONError(w, "name and api_key are required", http.StatusBadRequest)
		return
	}
	if req.Provider != models.ProviderStability {
		shared.WriteJSONError(w, "unsupported provider: "+req.Provider, http.StatusBadRequest)
		return
	}

	cred := &storage.Credential{
		Provider:  req.Provider,
		Name:      req.Name,
		APIKey:    req.APIKey,
		IsDefault: req.IsDefault,
	}

	if err := h.Storage.CreateCredential(cred); err != nil {
		writeStorageError(w, "create credential", err)
		return
	}
	h.invalidateKeys()

	shared.WriteJSON(w, cred.ToPreview(), http.StatusCreated)
}

// UpdateCredential handles PUT /api/admin/credentials/{id}.
func (h *Handlers) UpdateCredential(w http.ResponseWriter, r *http.Request) {
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

	var req UpdateCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name != nil {
		cred.Name = strings.TrimSpace(*req.Name)
	}
	if req.APIKey != nil {
		cred.APIKey = strings.TrimSpace(*req.APIKey)
	}
	if req.IsDefault != nil {
		cred.IsDefault = *req.IsDefault
	}
	if cred.Name == "" || cred.APIKey == "" {
		shared.WriteJSONError(w, "name and api_key must not be empty", http.StatusBadRequest)
		return
	}
	cred.UpdatedAt = time.Now().UTC()

	if err := h.Storage.UpdateCredential(cred); err != nil {
		writeStorageError(w, "update credential", err)
		return
	}
	h.invalidateKeys()

	shared.WriteJSON(w, cred.ToPreview(), http.StatusOK)
}

// DeleteCredential handles DELETE /api/admin/credentials/{id}.
func (h *Handlers) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		shared.WriteJSONError(w, "Credential ID is required", http.StatusBadRequest)
		return
	}

	if err := h.Storage.DeleteCredential(id); err != nil {
		writeStorageError(w, "delete credential", err)
		return
	}
	h.invalidateKeys()

	w.WriteHeader(http.StatusNoContent)
}

// SetDefaultCredential handles POST /api/admin/credentials/{id}/default.
func (h *Handlers) SetDefaultCredential(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		shared.WriteJSONError(w, "Credential ID is required", http.StatusBadRequest)
		return
	}

	if err := h.Storage.SetDefaultCredential(id); err != nil {
		writeStorageError(w, "set default credential", err)
		return
	}
	h.invalidateKeys()

	cred, err := h.Storage.GetCredential(id)
	if err != nil {
		writeStorageError(w, "get credential", err)
		return
	}
	shared.WriteJSON(w, cred.ToPreview(), http.StatusOK)
}

// writeStorageError maps storage sentinels to HTTP statuses.
func writeStorageError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		shared.WriteJSONError(w, "Credential not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrDuplicateKey):
		shared.WriteJSONError(w, "A credential with that name already exists", http.StatusConflict)
	case errors.Is(err, storage.ErrInvalidInput):
		shared.WriteJSONError(w, "name and api_key are required", http.StatusBadRequest)
	default:
		shared.WriteJSONError(w, "Failed to "+op+": "+err.Error(), http.StatusInternalServerError)
	}
}
