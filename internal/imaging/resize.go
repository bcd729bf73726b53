// Package imaging resizes, crops and encodes the studio's working image.
package imaging

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Anchor selects which part of the scaled image survives the crop.
type Anchor string

const (
	// AnchorTopLeft keeps the region starting at the scaled image's origin.
	AnchorTopLeft Anchor = "top-left"
	AnchorCenter  Anchor = "center"
)

// ErrInvalidSize is returned for empty sources or non-positive targets.
var ErrInvalidSize = errors.New("invalid image size")

// ResizeAndCrop scales src to cover a w x h box and crops the box from the
// top-left corner of the scaled image.
func ResizeAndCrop(src image.Image, w, h int) (*image.RGBA, error) {
	return ResizeAndCropAnchored(src, w, h, AnchorTopLeft)
}

// ResizeAndCropAnchored is ResizeAndCrop with a selectable crop anchor.
func ResizeAndCropAnchored(src image.Image, w, h int, anchor Anchor) (*image.RGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrInvalidSize)
	}
	sb := src.Bounds()
	if sb.Dx() <= 0 || sb.Dy() <= 0 || w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: source %dx%d, target %dx%d", ErrInvalidSize, sb.Dx(), sb.Dy(), w, h)
	}

	dw, dh := ScaledSize(sb.Dx(), sb.Dy(), w, h)

	var ox, oy int
	switch anchor {
	case AnchorTopLeft, "":
	case AnchorCenter:
		ox, oy = (dw-w)/2, (dh-h)/2
	default:
		return nil, fmt.Errorf("unknown crop anchor %q", anchor)
	}

	// Scale straight into the target: dr places the full scaled image so that
	// the crop window lands on dst's bounds, and the kernel only fills pixels
	// inside them.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	dr := image.Rect(-ox, -oy, dw-ox, dh-oy)
	draw.CatmullRom.Scale(dst, dr, src, sb, draw.Src, nil)
	return dst, nil
}

// ScaledSize returns the dimensions of a sw x sh image scaled uniformly to
// cover w x h. The factor is max(w/sw, h/sh), the products are truncated,
// and each side is held at no less than the target so truncation can never
// leave the crop window short.
func ScaledSize(sw, sh, w, h int) (int, int) {
	scale := max(float64(w)/float64(sw), float64(h)/float64(sh))
	dw := max(int(float64(sw)*scale), w)
	dh := max(int(float64(sh)*scale), h)
	return dw, dh
}
