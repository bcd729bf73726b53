package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	_ "golang.org/x/image/bmp"
)

// ImportExtensions lists the file types accepted for import.
var ImportExtensions = []string{".png", ".jpg", ".jpeg", ".bmp"}

// ErrUnsupportedFormat is returned for files that are not png, jpeg or bmp.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// SupportedFile reports whether name has an importable extension.
func SupportedFile(name string) bool {
	return lo.Contains(ImportExtensions, strings.ToLower(filepath.Ext(name)))
}

// DecodeImage decodes a png, jpeg or bmp stream.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupportedFormat
		}
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if !lo.Contains([]string{"png", "jpeg", "bmp"}, format) {
		return nil, "", ErrUnsupportedFormat
	}
	return img, format, nil
}

// DecodePNG decodes PNG bytes, e.g. a generated artifact.
func DecodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return img, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
