package metrics

import (
	"context"

	"github.com/ironsheep/image-science/internal/frame"
	"github.com/ironsheep/image-science/internal/imaging"
	"github.com/ironsheep/image-science/internal/science"
)

// NaturalnessAnalyzer computes a biophilic-chromaticity proxy: the pixel
// fractions falling in fixed green, blue and earth-tone HSV bands, combined
// by convex weights into one score. It is not a semantic detector of
// nature; it captures the chromatic signature that tends to accompany
// plants, sky and natural materials in interior photographs.
type NaturalnessAnalyzer struct{}

var _ science.Analyzer = NaturalnessAnalyzer{}

func (NaturalnessAnalyzer) Name() string { return "naturalness" }

func (NaturalnessAnalyzer) Tier() science.Tier { return science.TierPerceptual }

func (NaturalnessAnalyzer) Requires() []string { return []string{"pixels"} }

func (NaturalnessAnalyzer) Provides() []string {
	return []string{
		"naturalness.green_ratio",
		"naturalness.blue_ratio",
		"naturalness.earth_ratio",
		"naturalness.score",
	}
}

func (NaturalnessAnalyzer) Analyze(_ context.Context, f *frame.Frame) error {
	hsv := imaging.HSVImage(f.Image())

	var green, blue, earth, total int
	for _, row := range hsv {
		for _, px := range row {
			total++
			switch {
			case px.H >= 70 && px.H <= 170 && px.S >= 0.15 && px.V >= 0.15:
				green++
			case px.H >= 190 && px.H <= 260 && px.S >= 0.12 && px.V >= 0.12:
				blue++
			case px.H >= 15 && px.H <= 60 && px.S <= 0.35 && px.V >= 0.2:
				earth++
			}
		}
	}
	if total == 0 {
		return nil
	}

	greenRatio := float64(green) / float64(total)
	blueRatio := float64(blue) / float64(total)
	earthRatio := float64(earth) / float64(total)

	f.AddAttribute("naturalness.green_ratio", greenRatio, 1.0)
	f.AddAttribute("naturalness.blue_ratio", blueRatio, 1.0)
	f.AddAttribute("naturalness.earth_ratio", earthRatio, 1.0)

	// Greens count most, then blues, then earth tones.
	f.AddAttribute("naturalness.score", 0.55*greenRatio+0.30*blueRatio+0.15*earthRatio, 1.0)
	return nil
}
