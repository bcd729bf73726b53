package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/mandalnilabja/scenesculpt/internal/export"
	"github.com/mandalnilabja/scenesculpt/internal/imaging"
	"github.com/mandalnilabja/scenesculpt/internal/viewport"
)

// BackgroundFile is the file name written by ApplyAsBackground.
const BackgroundFile = "background.png"

// Import decodes a png, jpeg or bmp image, fits it to the import size and
// makes it the current image.
func (c *Controller) Import(r io.Reader) (*Image, error) {
	img, format, err := imaging.DecodeImage(r)
	if err != nil {
		return nil, err
	}

	fitted, err := imaging.ResizeAndCropAnchored(img, c.opts.ImportSize, c.opts.ImportSize, c.opts.CropAnchor)
	if err != nil {
		return nil, err
	}
	data, err := imaging.EncodePNG(fitted)
	if err != nil {
		return nil, err
	}

	c.opts.Logger.Info("image imported",
		"format", format,
		"source_width", img.Bounds().Dx(),
		"source_height", img.Bounds().Dy(),
		"size", humanize.Bytes(uint64(len(data))),
	)
	return c.setCurrent(data, fitted, SourceImport), nil
}

// Capture renders a view and makes it the current image. An empty view
// name selects the only view.
func (c *Controller) Capture(ctx context.Context, view string) (*Image, error) {
	name, err := viewport.Select(c.opts.Views.Views(), view)
	if err != nil {
		return nil, err
	}

	img, err := c.opts.Views.Capture(ctx, name, c.opts.ImportSize, c.opts.ImportSize)
	if err != nil {
		return nil, err
	}
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	c.opts.Logger.Info("view captured", "view", name, "size", humanize.Bytes(uint64(len(data))))
	return c.setCurrent(data, img, SourceCapture), nil
}

// Export hands the current image to the exporter and returns its location.
func (c *Controller) Export(ctx context.Context, name string) (string, error) {
	cur, err := c.Current()
	if err != nil {
		return "", err
	}

	fileName, err := export.FileName(name, c.opts.Now())
	if err != nil {
		return "", err
	}
	return c.opts.Exporter.Upload(ctx, fileName, cur.PNG)
}

// ApplyAsBackground writes the current image to the backgrounds directory
// and sets it behind the selected view. It returns the view used and the
// file path.
func (c *Controller) ApplyAsBackground(ctx context.Context, view string) (string, string, error) {
	cur, err := c.Current()
	if err != nil {
		return "", "", err
	}

	name, err := viewport.Select(c.opts.Views.Views(), view)
	if err != nil {
		return "", "", err
	}

	if err := os.MkdirAll(c.opts.BackgroundsDir, 0755); err != nil {
		return "", "", fmt.Errorf("create backgrounds dir: %w", err)
	}
	path := filepath.Join(c.opts.BackgroundsDir, BackgroundFile)
	if err := os.WriteFile(path, cur.PNG, 0644); err != nil {
		return "", "", fmt.Errorf("write background: %w", err)
	}

	if err := c.opts.Views.SetBackground(ctx, name, path); err != nil {
		return "", "", err
	}

	c.opts.Logger.Info("background applied", "view", name, "path", path)
	return name, path, nil
}
