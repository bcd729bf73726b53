// Package export saves the current image to a directory or an S3 bucket.
package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidName is returned for names that do not reduce to a file name.
var ErrInvalidName = errors.New("invalid export name")

// Uploader stores an encoded PNG and returns where it went.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// FileName turns a user supplied name into a safe PNG file name. Directory
// components are dropped and a .png extension is enforced. An empty name
// yields a timestamped default.
func FileName(name string, now time.Time) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "scenesculpt-" + now.UTC().Format("20060102-150405") + ".png", nil
	}

	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, `\`, "/")))
	if base == "/" || base == "." || base == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !strings.EqualFold(filepath.Ext(base), ".png") {
		base += ".png"
	}
	return base, nil
}
