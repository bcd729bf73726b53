package studio

import (
	"net/http"

	"github.com/mandalnilabja/scenesculpt/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/scenesculpt/internal/types"
)

// Views handles GET /api/views.
func (h *Handlers) Views(w http.ResponseWriter, r *http.Request) {
	views := h.Studio.Views()
	if views == nil {
		views = []string{}
	}
	shared.WriteJSON(w, map[string]any{
		"views":         views,
		"name_required": len(views) > 1,
	}, http.StatusOK)
}

// Capture handles POST /api/image/capture.
func (h *Handlers) Capture(w http.ResponseWriter, r *http.Request) {
	var req types.ViewRequest
	if err := decodeOptionalJSON(r.Body, &req); err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("invalid request body: "+err.Error()))
		return
	}

	img, err := h.Studio.Capture(r.Context(), req.View)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, imageInfo(img), http.StatusOK)
}

// Background handles POST /api/image/background.
func (h *Handlers) Background(w http.ResponseWriter, r *http.Request) {
	var req types.ViewRequest
	if err := decodeOptionalJSON(r.Body, &req); err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("invalid request body: "+err.Error()))
		return
	}

	view, path, err := h.Studio.ApplyAsBackground(r.Context(), req.View)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, map[string]string{"view": view, "path": path}, http.StatusOK)
}
