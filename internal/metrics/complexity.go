package metrics

import (
	"context"
	"math"

	"github.com/ironsheep/image-science/internal/frame"
	"github.com/ironsheep/image-science/internal/imaging"
	"github.com/ironsheep/image-science/internal/science"
)

// Downscale bound shared by the co-occurrence passes; GLCM cost grows with
// pixel count, not image content.
const glcmMaxSide = 512

// ComplexityAnalyzer quantifies visual complexity along two axes:
// information content (histogram entropy, which ignores arrangement) and
// spatial disorder (co-occurrence entropy, which distinguishes a
// checkerboard from noise). Edge density rides along as a clutter proxy.
type ComplexityAnalyzer struct{}

var _ science.Analyzer = ComplexityAnalyzer{}

func (ComplexityAnalyzer) Name() string { return "complexity" }

func (ComplexityAnalyzer) Tier() science.Tier { return science.TierPerceptual }

func (ComplexityAnalyzer) Requires() []string { return []string{"gray", "edges"} }

func (ComplexityAnalyzer) Provides() []string {
	return []string{
		"complexity.shannon_entropy",
		"complexity.spatial_entropy",
		"complexity.edge_density",
	}
}

func (ComplexityAnalyzer) Analyze(_ context.Context, f *frame.Frame) error {
	gray := f.Gray()

	// Global histogram entropy, normalized by the 8-bit maximum.
	f.AddAttribute("complexity.shannon_entropy", math.Min(shannonEntropy(gray)/8.0, 1.0), 1.0)

	// Co-occurrence entropy; log2(32*32) = 10 bounds a single matrix, and
	// the three-orientation sum stays near that scale for real images.
	f.AddAttribute("complexity.spatial_entropy", math.Min(spatialEntropy(gray)/10.0, 1.0), 1.0)

	f.AddAttribute("complexity.edge_density", imaging.EdgeDensity(f.Edges()), 1.0)
	return nil
}

// shannonEntropy is the base-2 entropy of the 256-bin intensity histogram.
func shannonEntropy(gray [][]float64) float64 {
	bins := imaging.GrayHistogram(gray)
	total := 0
	for _, c := range bins {
		total += c
	}
	if total == 0 {
		return 0
	}

	ent := 0.0
	for _, c := range bins {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		ent -= p * math.Log2(p)
	}
	return ent
}

// spatialEntropy sums the entropies of 32-level co-occurrence matrices at
// unit distance for the 0/45/90 degree orientations.
func spatialEntropy(gray [][]float64) float64 {
	small := imaging.DownscaleGray(gray, glcmMaxSide)
	quant := quantizeGray(small, 32)

	ent := 0.0
	for _, o := range glcmOrientations[:3] {
		ent += glcmEntropy(glcmMatrix(quant, 32, o, 1))
	}
	return ent
}
