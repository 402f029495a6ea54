package metrics

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/image-science/internal/frame"
	"github.com/ironsheep/image-science/internal/science"
)

// hullSampleSize bounds the pixel subsample used for the chroma-hull
// estimate; the fixed seed keeps the sample, and therefore the attribute,
// reproducible for identical pixel buffers.
const (
	hullSampleSize = 1000
	hullSampleSeed = 1
)

// ColorAnalyzer extracts color metrics in CIE L*a*b* space, which tracks
// human perception more closely than RGB distances.
type ColorAnalyzer struct{}

var _ science.Analyzer = ColorAnalyzer{}

func (ColorAnalyzer) Name() string { return "color" }

func (ColorAnalyzer) Tier() science.Tier { return science.TierPerceptual }

func (ColorAnalyzer) Requires() []string { return []string{"lab"} }

func (ColorAnalyzer) Provides() []string {
	return []string{
		"color.perceptual_lightness",
		"color.lightness_contrast",
		"color.warmth_ratio",
		"color.lab_volume",
	}
}

func (ColorAnalyzer) Analyze(_ context.Context, f *frame.Frame) error {
	lab := f.Lab()

	lightness := make([]float64, 0, f.Width()*f.Height())
	warm := 0
	total := 0

	rng := rand.New(rand.NewSource(hullSampleSeed))
	sample := make([]point2, 0, hullSampleSize)

	for _, row := range lab {
		for _, px := range row {
			lightness = append(lightness, px.L)

			// Positive a* leans red, positive b* leans yellow; either
			// marks a warm pixel.
			if px.A > 0 || px.B > 0 {
				warm++
			}
			total++

			// Reservoir sample of (a*, b*) points for the hull.
			if len(sample) < hullSampleSize {
				sample = append(sample, point2{px.A, px.B})
			} else if j := rng.Intn(total); j < hullSampleSize {
				sample[j] = point2{px.A, px.B}
			}
		}
	}
	if total == 0 {
		return nil
	}

	f.AddAttribute("color.perceptual_lightness", stat.Mean(lightness, nil)/100.0, 1.0)
	f.AddAttribute("color.lightness_contrast", math.Min(popStd(lightness)/50.0, 1.0), 1.0)
	f.AddAttribute("color.warmth_ratio", float64(warm)/float64(total), 1.0)

	// Chroma diversity: hull area of the sampled (a*, b*) cloud,
	// log-scaled so a very colorful image lands near 1.
	volume := 0.0
	if len(sample) > 3 {
		if area := convexHullArea(sample); area > 0 {
			volume = math.Min(math.Log1p(area)/10.0, 1.0)
		}
	}
	f.AddAttribute("color.lab_volume", volume, 1.0)
	return nil
}

type point2 struct {
	x, y float64
}

// convexHullArea returns the area of the convex hull of the points using
// Andrew's monotone chain, 0 for degenerate sets (fewer than 3 distinct
// points, or all collinear).
func convexHullArea(pts []point2) float64 {
	sorted := make([]point2, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].x != sorted[j].x {
			return sorted[i].x < sorted[j].x
		}
		return sorted[i].y < sorted[j].y
	})

	// Deduplicate; distinct points decide degeneracy.
	distinct := sorted[:0]
	for i, p := range sorted {
		if i == 0 || p != sorted[i-1] {
			distinct = append(distinct, p)
		}
	}
	if len(distinct) < 3 {
		return 0
	}

	cross := func(o, a, b point2) float64 {
		return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
	}

	var lower []point2
	for _, p := range distinct {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []point2
	for i := len(distinct) - 1; i >= 0; i-- {
		p := distinct[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// Drop each chain's last point (it repeats the other chain's first).
	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(hull) < 3 {
		return 0
	}

	// Shoelace formula.
	area := 0.0
	for i := range hull {
		j := (i + 1) % len(hull)
		area += hull[i].x*hull[j].y - hull[j].x*hull[i].y
	}
	return math.Abs(area) / 2
}
