package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// EncodeJPEG encodes an image as JPEG, first shrinking it so neither side
// exceeds maxEdge (0 disables the resize). External reasoning engines accept
// bounded payloads, so callers pass the engine's preferred edge length here
// rather than shipping full-resolution buffers.
func EncodeJPEG(img image.Image, maxEdge, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	out := img
	if maxEdge > 0 {
		bounds := img.Bounds()
		if bounds.Dx() > maxEdge || bounds.Dy() > maxEdge {
			// Fit preserves aspect ratio; Lanczos keeps fine structure
			// legible for the engine.
			out = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
