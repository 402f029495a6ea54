package metrics

import (
	"context"

	"github.com/ironsheep/image-science/internal/frame"
	"github.com/ironsheep/image-science/internal/imaging"
	"github.com/ironsheep/image-science/internal/science"
)

// SymmetryAnalyzer measures bilateral symmetry as the cosine similarity
// between one image half and the mirror of the other, on a z-normalized
// luminance plane so lighting gradients do not dominate. Scores map from
// [-1,1] to [0,1]; a perfectly mirrored image scores 1, an anti-symmetric
// one 0. Images narrower or shorter than 4 pixels are skipped with a flag.
type SymmetryAnalyzer struct{}

var _ science.Analyzer = SymmetryAnalyzer{}

func (SymmetryAnalyzer) Name() string { return "symmetry" }

func (SymmetryAnalyzer) Tier() science.Tier { return science.TierPerceptual }

func (SymmetryAnalyzer) Requires() []string { return []string{"gray"} }

func (SymmetryAnalyzer) Provides() []string {
	return []string{"symmetry.vertical", "symmetry.horizontal"}
}

func (a SymmetryAnalyzer) Analyze(_ context.Context, f *frame.Frame) error {
	width, height := f.Width(), f.Height()
	if width < 4 || height < 4 {
		f.Fail(a.Name(), "image too small for symmetry analysis")
		return nil
	}

	z := imaging.ZNormalize(f.Gray())

	// Left-right: compare the left half with the mirrored right half. For
	// odd widths the center column belongs to neither half.
	half := width / 2
	left := imaging.SubPlane(z, imaging.Rect{X0: 0, Y0: 0, X1: half, Y1: height})
	right := imaging.SubPlane(z, imaging.Rect{X0: width - half, Y0: 0, X1: width, Y1: height})
	vertical := symmetryScore(imaging.CosineSimilarity(left, imaging.MirrorHorizontal(right)))

	// Top-bottom: same construction along the other axis.
	half = height / 2
	top := imaging.SubPlane(z, imaging.Rect{X0: 0, Y0: 0, X1: width, Y1: half})
	bottom := imaging.SubPlane(z, imaging.Rect{X0: 0, Y0: height - half, X1: width, Y1: height})
	horizontal := symmetryScore(imaging.CosineSimilarity(top, imaging.MirrorVertical(bottom)))

	f.AddAttribute("symmetry.vertical", vertical, 1.0)
	f.AddAttribute("symmetry.horizontal", horizontal, 1.0)
	return nil
}

// symmetryScore maps a cosine in [-1,1] onto [0,1].
func symmetryScore(c float64) float64 {
	return frame.Clamp01((c + 1.0) / 2.0)
}
