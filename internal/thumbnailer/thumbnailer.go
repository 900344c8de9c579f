// Package thumbnailer turns an uploaded image into resized JPEG renditions.
// It is a pure transform: decoding, scaling and re-encoding happen in memory
// and persistence is left to the caller.
package thumbnailer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"

	"serwer-obrazow/internal/models"

	_ "image/gif"
	_ "image/png"
)

// ContentType is the fixed output format for originals and thumbnails alike.
const ContentType = "image/jpeg"

var ErrUnsupportedFormat = errors.New("unsupported image format")
var ErrImageTooLarge = errors.New("image dimensions exceed the allowed limit")

const jpegQuality = 85

// Deriver decodes uploads and derives bounded-box thumbnails from them.
// maxPixels caps width*height of the source so a pathological image fails
// fast instead of tying up a worker on decode.
type Deriver struct {
	maxPixels int
}

func NewDeriver(maxPixels int) *Deriver {
	return &Deriver{maxPixels: maxPixels}
}

// Decode validates that data is a well-formed image and returns the decoded
// pixels. The header is inspected first so oversized images are rejected
// before a full decode is attempted.
func (d *Deriver) Decode(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if d.maxPixels > 0 && cfg.Width*cfg.Height > d.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return img, nil
}

// Derive scales img to fit within the given bounding box, preserving aspect
// ratio and never upscaling, and returns the result encoded as JPEG.
func (d *Deriver) Derive(img image.Image, size models.ThumbnailSize) ([]byte, error) {
	fitted := imaging.Fit(img, size.Width, size.Height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fitted, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
