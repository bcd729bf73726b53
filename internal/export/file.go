package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// FileUploader writes exports into Dir.
type FileUploader struct {
	Dir    string
	Logger *slog.Logger
}

var _ Uploader = (*FileUploader)(nil)

// Upload writes data to Dir/name and returns the file path.
func (u *FileUploader) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(u.Dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(u.Dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}

	if u.Logger != nil {
		u.Logger.Info("image exported", "path", path, "size", humanize.Bytes(uint64(len(data))))
	}
	return path, nil
}
