package studio

import (
	"encoding/json"
	"net/http"

	"github.com/mandalnilabja/scenesculpt/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/scenesculpt/internal/types"
)

// Options handles GET /api/options.
func (h *Handlers) Options(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, types.NewOptionsResponse(h.Defaults), http.StatusOK)
}

// Generate handles POST /api/generate.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("invalid request body: "+err.Error()))
		return
	}

	mode, err := types.ParseMode(req.Mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	params := req.Params.Apply(h.Defaults)
	if err := params.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.Studio.Generate(r.Context(), params, mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	shared.WriteJSON(w, types.GenerateResponse{
		RequestID:    result.RequestID,
		Mode:         result.Mode,
		Image:        imageInfo(result.Image),
		PromptTokens: result.PromptTokens,
		DurationMs:   result.Duration.Milliseconds(),
	}, http.StatusOK)
}
