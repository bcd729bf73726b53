// Package session holds the studio's interaction state: the current image
// and whether a generation is in flight.
package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mandalnilabja/scenesculpt/internal/export"
	"github.com/mandalnilabja/scenesculpt/internal/imaging"
	"github.com/mandalnilabja/scenesculpt/internal/provider"
	"github.com/mandalnilabja/scenesculpt/internal/storage/models"
	"github.com/mandalnilabja/scenesculpt/internal/tokenizer"
	"github.com/mandalnilabja/scenesculpt/internal/viewport"
)

var (
	// ErrBusy is returned when a generation is requested while one runs.
	ErrBusy = errors.New("a generation is already in progress")

	// ErrNoImage is returned by operations that need a current image.
	ErrNoImage = errors.New("no current image")
)

// Image sources.
const (
	SourceGenerate = "generate"
	SourceIterate  = "iterate"
	SourceImport   = "import"
	SourceCapture  = "capture"
)

// Image is an encoded PNG with its dimensions.
type Image struct {
	PNG       []byte
	Width     int
	Height    int
	Source    string
	UpdatedAt time.Time
}

func (img *Image) clone() *Image {
	c := *img
	c.PNG = bytes.Clone(img.PNG)
	return &c
}

// HistoryRecorder stores one entry per generation attempt.
type HistoryRecorder interface {
	LogGeneration(entry *models.GenerationLog) error
}

// Options wires a Controller.
type Options struct {
	Provider provider.ImageProvider
	Views    viewport.Service
	Exporter export.Uploader

	// History and Tokens are optional.
	History HistoryRecorder
	Tokens  tokenizer.Counter

	// EngineID is recorded with each generation.
	EngineID string

	// ImportSize is the square size imported and captured images are fit to.
	ImportSize int
	CropAnchor imaging.Anchor

	// BackgroundsDir receives background.png on ApplyAsBackground.
	BackgroundsDir string

	// RequestID extracts a request id from ctx. A fresh UUID is used when
	// it is nil or returns "".
	RequestID func(ctx context.Context) string

	Logger *slog.Logger
	Now    func() time.Time
}

// Controller serializes generations and owns the current image.
type Controller struct {
	opts Options

	generating atomic.Bool

	mu      sync.RWMutex
	current *Image
}

// New creates a Controller.
func New(opts Options) (*Controller, error) {
	if opts.Provider == nil {
		return nil, errors.New("session: provider is required")
	}
	if opts.Views == nil {
		return nil, errors.New("session: viewport service is required")
	}
	if opts.Exporter == nil {
		return nil, errors.New("session: exporter is required")
	}
	if opts.ImportSize <= 0 {
		opts.ImportSize = 512
	}
	if opts.CropAnchor == "" {
		opts.CropAnchor = imaging.AnchorTopLeft
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{opts: opts}, nil
}

// Busy reports whether a generation is in flight.
func (c *Controller) Busy() bool {
	return c.generating.Load()
}

// Current returns a copy of the current image.
func (c *Controller) Current() (*Image, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return nil, ErrNoImage
	}
	return c.current.clone(), nil
}

// Views lists the available viewport views.
func (c *Controller) Views() []string {
	return c.opts.Views.Views()
}

// setCurrent replaces the current image with an encoded PNG.
func (c *Controller) setCurrent(data []byte, img image.Image, source string) *Image {
	b := img.Bounds()
	next := &Image{
		PNG:       data,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Source:    source,
		UpdatedAt: c.opts.Now().UTC(),
	}

	c.mu.Lock()
	c.current = next
	c.mu.Unlock()
	return next.clone()
}

func (c *Controller) requestID(ctx context.Context) string {
	if c.opts.RequestID != nil {
		if id := c.opts.RequestID(ctx); id != "" {
			return id
		}
	}
	return uuid.NewString()
}
