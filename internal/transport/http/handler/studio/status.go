package studio

import (
	"net/http"

	"github.com/mandalnilabja/scenesculpt/internal/storage"
	"github.com/mandalnilabja/scenesculpt/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/scenesculpt/internal/types"
)

const maxHistoryLimit = 500

// Status handles GET /api/status.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	var info *types.ImageInfo
	if img, err := h.Studio.Current(); err == nil {
		i := imageInfo(img)
		info = &i
	}

	shared.WriteJSON(w, map[string]any{
		"generating": h.Studio.Busy(),
		"has_image":  info != nil,
		"image":      info,
	}, http.StatusOK)
}

// History handles GET /api/history?limit=&status=&mode=.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	limit := shared.QueryInt(r, "limit", 50)
	if limit <= 0 || limit > maxHistoryLimit {
		types.WriteError(w, http.StatusBadRequest, types.NewAPIErrorWithParam("limit must be between 1 and 500", types.ErrorTypeInvalidRequest, "limit"))
		return
	}

	q := r.URL.Query()
	entries, err := h.HistoryLog.ListGenerations(storage.GenerationFilter{
		Status: q.Get("status"),
		Mode:   q.Get("mode"),
		Limit:  limit,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*storage.GenerationLog{}
	}
	shared.WriteJSON(w, map[string]any{"generations": entries}, http.StatusOK)
}
