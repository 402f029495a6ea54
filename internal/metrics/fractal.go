package metrics

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/image-science/internal/frame"
	"github.com/ironsheep/image-science/internal/science"
)

// FractalAnalyzer estimates the Minkowski-Bouligand (box-counting)
// dimension of the edge structure, a standard architecture metric for
// visual richness. D ranges from 1 (a line) to 2 (a filled plane); the
// stored attribute is D-1 clamped to [0,1]. Degenerate inputs (an empty
// edge map, or fewer than two usable box sizes) store the neutral value 0.
type FractalAnalyzer struct{}

var _ science.Analyzer = FractalAnalyzer{}

func (FractalAnalyzer) Name() string { return "fractal" }

func (FractalAnalyzer) Tier() science.Tier { return science.TierPerceptual }

func (FractalAnalyzer) Requires() []string { return []string{"edges"} }

func (FractalAnalyzer) Provides() []string { return []string{"fractal.D"} }

func (FractalAnalyzer) Analyze(_ context.Context, f *frame.Frame) error {
	d := boxCountingDimension(f.Edges())
	f.AddAttribute("fractal.D", math.Max(0, math.Min(d-1.0, 1.0)), 1.0)
	return nil
}

// boxCountingDimension fits log(box count) against log(box size) across
// dyadic box sizes from the largest power of two that fits the shorter
// image side down to 4 pixels. The dimension is the negated slope.
func boxCountingDimension(edges [][]bool) float64 {
	height := len(edges)
	if height == 0 {
		return 0
	}
	width := len(edges[0])

	edgeTotal := 0
	for _, row := range edges {
		for _, e := range row {
			if e {
				edgeTotal++
			}
		}
	}
	if edgeTotal == 0 {
		return 0
	}

	shorter := height
	if width < shorter {
		shorter = width
	}

	var logSizes, logCounts []float64
	for size := largestPowerOfTwo(shorter); size >= 4; size /= 2 {
		count := boxCount(edges, height, width, size)
		if count == 0 {
			continue
		}
		logSizes = append(logSizes, math.Log(float64(size)))
		logCounts = append(logCounts, math.Log(float64(count)))
	}
	if len(logCounts) < 2 {
		return 0
	}

	_, slope := stat.LinearRegression(logSizes, logCounts, nil, false)
	return -slope
}

// boxCount counts the size x size grid boxes that contain some but not all
// edge pixels. Partial boxes at the right and bottom borders are counted
// against the full size*size capacity, matching the reference counting.
func boxCount(edges [][]bool, height, width, size int) int {
	count := 0
	for y := 0; y < height; y += size {
		for x := 0; x < width; x += size {
			sum := 0
			for by := y; by < y+size && by < height; by++ {
				for bx := x; bx < x+size && bx < width; bx++ {
					if edges[by][bx] {
						sum++
					}
				}
			}
			if sum > 0 && sum < size*size {
				count++
			}
		}
	}
	return count
}

func largestPowerOfTwo(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}
