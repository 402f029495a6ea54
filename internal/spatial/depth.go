// Package spatial derives room-scale structure attributes: clutter,
// prospect/openness, refuge and depth statistics. A monocular depth
// estimator is optional; when absent or failing, every attribute that can
// be computed from the edge map alone is still produced and the
// depth-dependent ones are omitted rather than fabricated.
package spatial

import (
	"errors"
	"image"
)

// ErrDepthUnavailable reports that no depth estimator is usable in this
// build or configuration. Callers treat it as a signal to degrade to the
// edge-based heuristics, not as a pipeline failure.
var ErrDepthUnavailable = errors.New("depth estimation unavailable")

// Estimator produces a dense relative-depth plane for an image. The
// returned plane has the image's dimensions with values normalized to
// [0,1]. Implementations must be safe for concurrent use once constructed,
// since batch workers share a single estimator.
type Estimator interface {
	Name() string
	EstimateDepth(img *image.NRGBA) ([][]float64, error)
}

// NormalizePlane min-max scales a plane into [0,1]. A flat plane maps to
// all zeros.
func NormalizePlane(plane [][]float64) [][]float64 {
	first := true
	min, max := 0.0, 0.0
	for _, row := range plane {
		for _, v := range row {
			if first {
				min, max = v, v
				first = false
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}

	out := make([][]float64, len(plane))
	span := max - min
	for y, row := range plane {
		out[y] = make([]float64, len(row))
		if span <= 0 {
			continue
		}
		for x, v := range row {
			out[y][x] = (v - min) / span
		}
	}
	return out
}

// ResamplePlane bilinearly resizes a plane to the given dimensions,
// preserving float precision (depth values must not be squeezed through an
// 8-bit image on the way back to frame resolution).
func ResamplePlane(plane [][]float64, width, height int) [][]float64 {
	srcH := len(plane)
	if srcH == 0 || width <= 0 || height <= 0 {
		return nil
	}
	srcW := len(plane[0])
	if srcW == 0 {
		return nil
	}

	out := make([][]float64, height)
	for y := 0; y < height; y++ {
		out[y] = make([]float64, width)
		sy := 0.0
		if height > 1 {
			sy = float64(y) * float64(srcH-1) / float64(height-1)
		}
		y0 := int(sy)
		y1 := y0 + 1
		if y1 >= srcH {
			y1 = srcH - 1
		}
		fy := sy - float64(y0)

		for x := 0; x < width; x++ {
			sx := 0.0
			if width > 1 {
				sx = float64(x) * float64(srcW-1) / float64(width-1)
			}
			x0 := int(sx)
			x1 := x0 + 1
			if x1 >= srcW {
				x1 = srcW - 1
			}
			fx := sx - float64(x0)

			top := plane[y0][x0]*(1-fx) + plane[y0][x1]*fx
			bottom := plane[y1][x0]*(1-fx) + plane[y1][x1]*fx
			out[y][x] = top*(1-fy) + bottom*fy
		}
	}
	return out
}
