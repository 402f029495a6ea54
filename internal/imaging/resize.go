package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/anthonynsimon/bild/transform"
)

// GrayToImage renders a [0,1] luminance plane as an 8-bit grayscale image.
func GrayToImage(plane [][]float64) *image.Gray {
	height := len(plane)
	width := 0
	if height > 0 {
		width = len(plane[0])
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := plane[y][x]
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v*255 + 0.5)})
		}
	}
	return img
}

// DownscaleGray resizes a luminance plane so its longest side is at most
// maxSide, preserving aspect ratio. Planes already within the bound are
// returned unchanged. Resampling is bilinear, which is stable enough for
// the statistics computed downstream and deterministic across runs.
func DownscaleGray(plane [][]float64, maxSide int) [][]float64 {
	height := len(plane)
	if height == 0 || maxSide <= 0 {
		return plane
	}
	width := len(plane[0])
	if width <= maxSide && height <= maxSide {
		return plane
	}

	scale := float64(maxSide) / float64(width)
	if height > width {
		scale = float64(maxSide) / float64(height)
	}
	newW := int(float64(width) * scale)
	newH := int(float64(height) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	resized := transform.Resize(GrayToImage(plane), newW, newH, transform.Linear)

	out := make([][]float64, newH)
	for y := 0; y < newH; y++ {
		out[y] = make([]float64, newW)
		for x := 0; x < newW; x++ {
			r, _, _, _ := resized.At(x, y).RGBA()
			out[y][x] = float64(r>>8) / 255.0
		}
	}
	return out
}

// GrayHistogram returns the 256-bin intensity histogram of a luminance
// plane. Bins follow the 8-bit quantization of the rendered plane.
func GrayHistogram(plane [][]float64) []int {
	hist := histogram.NewRGBAHistogram(GrayToImage(plane))
	return hist.R.Bins
}
