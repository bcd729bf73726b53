// Package studio serves the interaction API: generation, the current image
// and viewport operations.
package studio

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/mandalnilabja/scenesculpt/internal/session"
	"github.com/mandalnilabja/scenesculpt/internal/storage"
	"github.com/mandalnilabja/scenesculpt/internal/types"
)

// DefaultMaxUpload bounds import uploads.
const DefaultMaxUpload = 32 << 20

// Studio is the session surface the handlers drive. *session.Controller
// implements it.
type Studio interface {
	Generate(ctx context.Context, params types.GenerationParameters, mode types.Mode) (*session.Result, error)
	Import(r io.Reader) (*session.Image, error)
	Capture(ctx context.Context, view string) (*session.Image, error)
	Export(ctx context.Context, name string) (string, error)
	ApplyAsBackground(ctx context.Context, view string) (string, string, error)
	Current() (*session.Image, error)
	Busy() bool
	Views() []string
}

var _ Studio = (*session.Controller)(nil)

// HistoryReader lists recorded generations.
type HistoryReader interface {
	ListGenerations(filter storage.GenerationFilter) ([]*storage.GenerationLog, error)
}

// Handlers holds the dependencies for studio HTTP handlers.
type Handlers struct {
	Studio     Studio
	HistoryLog HistoryReader

	// Defaults seed every generate request before overrides apply.
	Defaults types.GenerationParameters

	MaxUploadBytes int64
	Logger         *slog.Logger
}

// New creates studio handlers.
func New(studio Studio, history HistoryReader, defaults types.GenerationParameters, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		Studio:         studio,
		HistoryLog:     history,
		Defaults:       defaults,
		MaxUploadBytes: DefaultMaxUpload,
		Logger:         logger,
	}
}

// decodeOptionalJSON decodes r into v. An empty body leaves v untouched.
func decodeOptionalJSON(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func imageInfo(img *session.Image) types.ImageInfo {
	return types.ImageInfo{
		Width:     img.Width,
		Height:    img.Height,
		Source:    img.Source,
		Bytes:     len(img.PNG),
		UpdatedAt: img.UpdatedAt,
	}
}
