package imaging

import (
	"image"
	"math"
)

// Grayscale converts an image to a row-major luminance plane with values
// in [0,1], using ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B).
func Grayscale(img image.Image) [][]float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	gray := make([][]float64, height)
	for y := 0; y < height; y++ {
		gray[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			rf := float64(r>>8) / 255.0
			gf := float64(g>>8) / 255.0
			bf := float64(b>>8) / 255.0
			gray[y][x] = 0.299*rf + 0.587*gf + 0.114*bf
		}
	}
	return gray
}

// CannyEdges performs Canny edge detection on a grayscale plane and returns
// a binary mask where true marks an edge pixel.
//
// Parameters:
//   - gray: Row-major luminance plane with values in [0,1].
//   - thresholdLow: Low hysteresis threshold (0-255 scale). Gradients below
//     this are discarded. The pipeline's canonical value is 50.
//   - thresholdHigh: High hysteresis threshold (0-255 scale). Gradients above
//     this are always kept. The pipeline's canonical value is 150.
//
// # Algorithm
//
//  1. Gaussian blur: 5x5 kernel to reduce noise
//
//  2. Gradient computation: Sobel operators for X and Y gradients
//     magnitude = sqrt(Gx² + Gy²)
//     direction = atan2(Gy, Gx)
//
//  3. Non-maximum suppression: Thin edges to 1-pixel width by keeping only
//     local maxima in the gradient direction
//
//  4. Hysteresis thresholding:
//     - Pixels above thresholdHigh are strong edges (always kept)
//     - Pixels between thresholdLow and thresholdHigh are weak edges
//     (kept only if connected to strong edges)
//     - Pixels below thresholdLow are discarded
//
// The threshold pair is part of the pipeline's reproducibility contract:
// every run uses the same values so edge-derived attributes are stable.
func CannyEdges(gray [][]float64, thresholdLow, thresholdHigh int) [][]bool {
	height := len(gray)
	if height == 0 {
		return nil
	}
	width := len(gray[0])

	// Apply Gaussian blur to reduce noise
	blurred := gaussianBlur(gray, width, height)

	// Compute gradients using Sobel operator
	magnitude := make([][]float64, height)
	direction := make([][]float64, height)

	sobelX := [][]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [][]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)

		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clampInt(y+ky, 0, height-1)
					px := clampInt(x+kx, 0, width-1)
					gx += blurred[py][px] * sobelX[ky+1][kx+1]
					gy += blurred[py][px] * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				continue
			}

			angle := direction[y][x]
			mag := magnitude[y][x]

			// Determine neighbors to compare based on gradient direction
			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[y][x-1]
				n2 = magnitude[y][x+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[y-1][x+1]
				n2 = magnitude[y+1][x-1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[y-1][x]
				n2 = magnitude[y+1][x]
			} else {
				n1 = magnitude[y-1][x-1]
				n2 = magnitude[y+1][x+1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	// Double threshold and edge tracking by hysteresis
	mask := make([][]bool, height)
	for y := range mask {
		mask[y] = make([]bool, width)
	}
	lowThresh := float64(thresholdLow) / 255.0
	highThresh := float64(thresholdHigh) / 255.0

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed[y][x]
			if val >= highThresh {
				mask[y][x] = true
			} else if val >= lowThresh {
				// Check if connected to a strong edge
				hasStrongNeighbor := false
				for ky := -1; ky <= 1 && !hasStrongNeighbor; ky++ {
					for kx := -1; kx <= 1 && !hasStrongNeighbor; kx++ {
						py := clampInt(y+ky, 0, height-1)
						px := clampInt(x+kx, 0, width-1)
						if suppressed[py][px] >= highThresh {
							hasStrongNeighbor = true
						}
					}
				}
				if hasStrongNeighbor {
					mask[y][x] = true
				}
			}
		}
	}

	return mask
}

// EdgeDensity returns the fraction of mask pixels that are edges, in [0,1].
// An empty mask yields 0.
func EdgeDensity(mask [][]bool) float64 {
	total := 0
	edges := 0
	for _, row := range mask {
		for _, v := range row {
			total++
			if v {
				edges++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(edges) / float64(total)
}

// RegionEdgeDensity returns the edge fraction within r, clipped to the mask
// bounds. Empty regions yield 0.
func RegionEdgeDensity(mask [][]bool, r Rect) float64 {
	height := len(mask)
	if height == 0 {
		return 0
	}
	width := len(mask[0])

	y0 := clampInt(r.Y0, 0, height)
	y1 := clampInt(r.Y1, 0, height)
	x0 := clampInt(r.X0, 0, width)
	x1 := clampInt(r.X1, 0, width)

	total := 0
	edges := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			total++
			if mask[y][x] {
				edges++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(edges) / float64(total)
}

// gaussianBlur applies a 5x5 Gaussian blur to reduce noise before edge
// detection.
//
// Uses a standard 5x5 Gaussian kernel with sigma ≈ 1.4:
//
//	1  4  7  4  1
//	4 16 26 16  4
//	7 26 41 26  7
//	4 16 26 16  4
//	1  4  7  4  1
//
// Total kernel sum = 273, used for normalization.
// Border pixels use clamped (replicated) edge values.
func gaussianBlur(img [][]float64, width, height int) [][]float64 {
	kernel := [][]float64{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}
	kernelSum := 273.0

	result := make([][]float64, height)
	for y := 0; y < height; y++ {
		result[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					py := clampInt(y+ky, 0, height-1)
					px := clampInt(x+kx, 0, width-1)
					sum += img[py][px] * kernel[ky+2][kx+2]
				}
			}
			result[y][x] = sum / kernelSum
		}
	}
	return result
}

// clampInt constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
