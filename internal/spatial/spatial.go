package spatial

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/image-science/internal/frame"
	"github.com/ironsheep/image-science/internal/imaging"
	"github.com/ironsheep/image-science/internal/science"
)

// Band fractions for the refuge estimate. The depth path reads nearness in
// the bottom 30% of the frame; the edge fallback reads density in the
// bottom 20%.
const (
	refugeDepthBand = 0.30
	refugeEdgeBand  = 0.20
)

// Analyzer derives room-scale structure attributes from the edge map and,
// when an estimator is configured, from a monocular depth plane.
//
// Depth is strictly optional: clutter, openness, refuge and the isovist
// proxy are always produced, while spatial.depth_mean and
// spatial.depth_contrast are written only when a depth plane was actually
// computed. An estimator failure downgrades to the edge heuristics and
// leaves a status note; it is not an analyzer failure.
type Analyzer struct {
	est Estimator
}

var _ science.Analyzer = (*Analyzer)(nil)

// NewAnalyzer creates the spatial analyzer. A nil estimator disables the
// depth path entirely.
func NewAnalyzer(est Estimator) *Analyzer {
	return &Analyzer{est: est}
}

func (*Analyzer) Name() string { return "spatial" }

func (*Analyzer) Tier() science.Tier { return science.TierDerived }

func (*Analyzer) Requires() []string { return []string{"edges"} }

func (*Analyzer) Provides() []string {
	return []string{
		"spatial.visual_clutter",
		"spatial.central_openness",
		"spatial.refuge_quality",
		"spatial.depth_mean",
		"spatial.depth_contrast",
		"affordance.isovist_area",
	}
}

func (a *Analyzer) Analyze(_ context.Context, f *frame.Frame) error {
	a.ensureDepth(f)

	if depth, ok := f.Depth(); ok {
		mean, contrast := summarizeDepth(depth)
		f.AddAttribute("spatial.depth_mean", mean, 1.0)
		f.AddAttribute("spatial.depth_contrast", contrast, 1.0)
	}

	edges := f.Edges()

	f.AddAttribute("spatial.visual_clutter", clutterScore(edges), 1.0)

	openness := centralOpenness(edges, f.Width(), f.Height())
	f.AddAttribute("spatial.central_openness", openness, 1.0)

	// Isovist proxy: visible-area affordance tracks central openness at a
	// fixed discount until a true isovist computation replaces it.
	f.AddAttribute("affordance.isovist_area", openness*0.8, 1.0)

	f.AddAttribute("spatial.refuge_quality", a.refugeQuality(f), 1.0)
	return nil
}

// ensureDepth runs the estimator once per frame and installs the plane on
// success. Failures leave a note and fall through to the edge heuristics.
func (a *Analyzer) ensureDepth(f *frame.Frame) {
	if a.est == nil {
		return
	}
	if _, ok := f.Depth(); ok {
		return
	}

	plane, err := a.est.EstimateDepth(f.Image())
	if err != nil {
		f.SetNote("spatial.depth", frame.Annotation{
			Source: a.est.Name(),
			Note:   fmt.Sprintf("depth estimation failed: %v", err),
		})
		return
	}
	f.SetDepth(plane)
	f.SetNote("spatial.depth", frame.Annotation{Source: a.est.Name(), Note: "ok"})
}

// summarizeDepth reduces a normalized depth plane to (mean, contrast). The
// 0.5 factor keeps typical interior depth spreads out of saturation.
func summarizeDepth(depth [][]float64) (mean, contrast float64) {
	var flat []float64
	for _, row := range depth {
		flat = append(flat, row...)
	}
	if len(flat) == 0 {
		return 0, 0
	}
	m := stat.Mean(flat, nil)
	std := stat.PopStdDev(flat, nil)
	return frame.Clamp01(m), frame.Clamp01(std * 0.5)
}

// clutterScore measures how unevenly edges are distributed over a coarse
// 8x8 grid: a scene with edge mass concentrated in patches reads as
// cluttered, a uniformly sparse or uniformly busy one does not.
func clutterScore(edges [][]bool) float64 {
	height := len(edges)
	if height == 0 {
		return 0
	}
	width := len(edges[0])

	cells := imaging.GridCells(width, height, 8, 8)
	densities := make([]float64, 0, len(cells))
	for _, cell := range cells {
		densities = append(densities, imaging.RegionEdgeDensity(edges, cell))
	}
	if len(densities) == 0 {
		return 0
	}
	return frame.Clamp01(stat.PopStdDev(densities, nil) * 5.0)
}

// centralOpenness is the prospect proxy: an uncluttered central window
// suggests a clear line of sight through the space.
func centralOpenness(edges [][]bool, width, height int) float64 {
	density := imaging.RegionEdgeDensity(edges, imaging.CenterRegion(width, height))
	return 1.0 - frame.Clamp01(density*5.0)
}

// refugeQuality estimates near-floor shelter. With a depth plane, nearness
// (1 - depth) averaged over the bottom band captures occluding furniture
// and low walls; without one, edge density in a slightly thinner bottom
// band stands in.
func (a *Analyzer) refugeQuality(f *frame.Frame) float64 {
	if depth, ok := f.Depth(); ok {
		band := imaging.SubPlane(depth, imaging.BottomBand(f.Width(), f.Height(), refugeDepthBand))
		n := 0
		sum := 0.0
		for _, row := range band {
			for _, v := range row {
				sum += 1.0 - v
				n++
			}
		}
		if n == 0 {
			return 0
		}
		return frame.Clamp01(sum / float64(n))
	}

	density := imaging.RegionEdgeDensity(f.Edges(), imaging.BottomBand(f.Width(), f.Height(), refugeEdgeBand))
	return frame.Clamp01(density * 2.0)
}
