package studio

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mandalnilabja/scenesculpt/internal/imaging"
	"github.com/mandalnilabja/scenesculpt/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/scenesculpt/internal/types"
)

// Image handles GET /api/image and returns the current PNG.
func (h *Handlers) Image(w http.ResponseWriter, r *http.Request) {
	img, err := h.Studio.Current()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img.PNG)))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Image-Source", img.Source)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.PNG)
}

// Import handles POST /api/image/import with a multipart "image" file.
func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.MaxUploadBytes {
		types.WriteError(w, http.StatusRequestEntityTooLarge, types.ErrInvalidRequest("image is too large"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			types.WriteError(w, http.StatusRequestEntityTooLarge, types.ErrInvalidRequest("image is too large"))
			return
		}
		types.WriteError(w, http.StatusBadRequest, types.NewAPIErrorWithParam("multipart field \"image\" is required", types.ErrorTypeInvalidRequest, "image"))
		return
	}
	defer file.Close()

	if !imaging.SupportedFile(header.Filename) {
		h.writeError(w, r, imaging.ErrUnsupportedFormat)
		return
	}

	img, err := h.Studio.Import(file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, imageInfo(img), http.StatusOK)
}

// Export handles POST /api/image/export.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	var req types.ExportRequest
	if err := decodeOptionalJSON(r.Body, &req); err != nil {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest("invalid request body: "+err.Error()))
		return
	}

	location, err := h.Studio.Export(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shared.WriteJSON(w, map[string]string{"location": location}, http.StatusOK)
}
