// Package viewport abstracts the host's named views: capturing what a view
// shows and setting its background image.
package viewport

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/samber/lo"

	"github.com/mandalnilabja/scenesculpt/internal/config"
	"github.com/mandalnilabja/scenesculpt/internal/imaging"
)

var (
	ErrNoViews       = errors.New("no views available")
	ErrViewRequired  = errors.New("several views available, a view name is required")
	ErrViewNotFound  = errors.New("view not found")
	ErrNoCaptureFile = errors.New("view has no capture source")
)

// Service is implemented by a viewport host.
type Service interface {
	// Views lists view names in a stable order.
	Views() []string

	// Capture renders the named view at w x h.
	Capture(ctx context.Context, name string, w, h int) (image.Image, error)

	// SetBackground shows the image at path behind the named view.
	SetBackground(ctx context.Context, name, path string) error
}

// Select picks the view to act on. With exactly one view and no name, that
// view is used; otherwise name must match a view.
func Select(views []string, name string) (string, error) {
	if len(views) == 0 {
		return "", ErrNoViews
	}
	if name == "" {
		if len(views) == 1 {
			return views[0], nil
		}
		return "", ErrViewRequired
	}
	if !lo.Contains(views, name) {
		return "", fmt.Errorf("%w: %q", ErrViewNotFound, name)
	}
	return name, nil
}

// FileService is a Service whose views are configured files: Capture reads
// the view's capture file and SetBackground records the background path.
type FileService struct {
	views map[string]config.ViewConfig
	order []string

	mu          sync.RWMutex
	backgrounds map[string]string
}

var _ Service = (*FileService)(nil)

// NewFileService builds a service over the configured views.
func NewFileService(views []config.ViewConfig) *FileService {
	s := &FileService{
		views:       make(map[string]config.ViewConfig, len(views)),
		backgrounds: make(map[string]string),
	}
	for _, v := range views {
		if _, dup := s.views[v.Name]; dup {
			continue
		}
		s.views[v.Name] = v
		s.order = append(s.order, v.Name)
	}
	return s
}

// Views returns view names in configuration order.
func (s *FileService) Views() []string {
	return append([]string(nil), s.order...)
}

// Capture decodes the view's capture file and fits it to w x h.
func (s *FileService) Capture(ctx context.Context, name string, w, h int) (image.Image, error) {
	v, ok := s.views[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrViewNotFound, name)
	}
	if v.CapturePath == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoCaptureFile, name)
	}

	f, err := os.Open(v.CapturePath)
	if err != nil {
		return nil, fmt.Errorf("capture %q: %w", name, err)
	}
	defer f.Close()

	img, _, err := imaging.DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("capture %q: %w", name, err)
	}
	if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
		return img, nil
	}
	return imaging.ResizeAndCrop(img, w, h)
}

// SetBackground records path as the view's background.
func (s *FileService) SetBackground(ctx context.Context, name, path string) error {
	if _, ok := s.views[name]; !ok {
		return fmt.Errorf("%w: %q", ErrViewNotFound, name)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("background %q: %w", name, err)
	}

	s.mu.Lock()
	s.backgrounds[name] = path
	s.mu.Unlock()
	return nil
}

// Background returns the background last set on a view.
func (s *FileService) Background(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	path, ok := s.backgrounds[name]
	return path, ok
}
