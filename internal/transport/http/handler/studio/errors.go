package studio

import (
	"context"
	"errors"
	"net/http"

	"github.com/mandalnilabja/scenesculpt/internal/export"
	"github.com/mandalnilabja/scenesculpt/internal/imaging"
	"github.com/mandalnilabja/scenesculpt/internal/provider"
	"github.com/mandalnilabja/scenesculpt/internal/session"
	"github.com/mandalnilabja/scenesculpt/internal/types"
	"github.com/mandalnilabja/scenesculpt/internal/viewport"
)

// writeError maps domain errors to the JSON error envelope. Every failure is
// reported; none of them ends the session.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := classify(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Warn("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	types.WriteError(w, status, apiErr)
}

func classify(err error) (int, *types.APIError) {
	var ve *types.ValidationError
	var ge *types.GenerationError

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, types.NewAPIErrorWithParam(ve.Message, types.ErrorTypeInvalidRequest, ve.Field)
	case errors.Is(err, context.DeadlineExceeded):
		// Checked before the generation kinds: a timed out request is
		// also a network error.
		return http.StatusGatewayTimeout, types.ErrUpstream("generation timed out")
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict, types.ErrConflict(err.Error())
	case errors.Is(err, session.ErrNoImage):
		return http.StatusConflict, types.ErrConflict("no current image: generate, import or capture one first")
	case errors.Is(err, provider.ErrNoAPIKey):
		return http.StatusPreconditionFailed, types.ErrPrecondition("no API key configured for the generation service")
	case errors.As(err, &ge) && ge.Kind == types.KindAPI:
		return http.StatusBadGateway, types.ErrUpstream(ge.Error()).WithDetail(ge.Body)
	case errors.As(err, &ge):
		return http.StatusBadGateway, types.ErrUpstream(ge.Error())
	case errors.Is(err, viewport.ErrViewNotFound):
		return http.StatusNotFound, types.ErrNotFound(err.Error())
	case errors.Is(err, viewport.ErrViewRequired), errors.Is(err, viewport.ErrNoViews):
		return http.StatusBadRequest, types.NewAPIErrorWithParam(err.Error(), types.ErrorTypeInvalidRequest, "view")
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, types.ErrInvalidRequest("unsupported image format: use png, jpeg or bmp")
	case errors.Is(err, imaging.ErrInvalidSize), errors.Is(err, export.ErrInvalidName):
		return http.StatusBadRequest, types.ErrInvalidRequest(err.Error())
	}
	return http.StatusInternalServerError, types.ErrServer(err.Error())
}
