package metrics

import (
	"image"
	"image/color"

	"github.com/ironsheep/image-science/internal/frame"
)

// uniformFrame builds a frame over a single-color square image.
func uniformFrame(id string, size int, c color.NRGBA) *frame.Frame {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return frame.New(id, img)
}

// checkerFrame builds a black/white checkerboard with the given cell size.
func checkerFrame(id string, size, cell int) *frame.Frame {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if ((x/cell)+(y/cell))%2 == 0 {
				img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 255})
			}
		}
	}
	return frame.New(id, img)
}

// splitFrame builds an image with a black left half and white right half,
// producing a single clean vertical edge.
func splitFrame(id string, size int) *frame.Frame {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x < size/2 {
				img.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
			}
		}
	}
	return frame.New(id, img)
}

// noisyFrame builds a deterministic pseudo-random image from a small LCG,
// so two calls with the same seed produce identical pixels.
func noisyFrame(id string, size int, seed uint32) *frame.Frame {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	state := seed
	next := func() uint8 {
		state = state*1664525 + 1013904223
		return uint8(state >> 24)
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, color.NRGBA{next(), next(), next(), 255})
		}
	}
	return frame.New(id, img)
}

// quadrantFrame builds an image with four saturated color quadrants,
// spanning a wide chroma range.
func quadrantFrame(id string, size int) *frame.Frame {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	quads := [4]color.NRGBA{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 0, 255},
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			q := 0
			if x >= size/2 {
				q = 1
			}
			if y >= size/2 {
				q += 2
			}
			img.SetNRGBA(x, y, quads[q])
		}
	}
	return frame.New(id, img)
}
