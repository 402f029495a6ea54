package metrics

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/image-science/internal/frame"
	"github.com/ironsheep/image-science/internal/science"
)

// FluencyAnalyzer derives a perceptual-fluency proxy from attributes the
// perceptual tier already produced: fluency rises when edge density and
// micro-texture contrast are low and entropy sits mid-range. It reads the
// attribute map opportunistically, averaging whichever components are
// present, so it declares no hard prerequisites; with no component present
// it skips with a flag rather than fabricating a neutral score.
type FluencyAnalyzer struct{}

var _ science.Analyzer = FluencyAnalyzer{}

func (FluencyAnalyzer) Name() string { return "fluency" }

func (FluencyAnalyzer) Tier() science.Tier { return science.TierDerived }

func (FluencyAnalyzer) Requires() []string { return nil }

func (FluencyAnalyzer) Provides() []string { return []string{"fluency.score"} }

func (a FluencyAnalyzer) Analyze(_ context.Context, f *frame.Frame) error {
	var components []float64

	// 0.25 edge density reads as "busy"; anything beyond contributes zero.
	if ed, ok := f.Attribute("complexity.edge_density"); ok {
		components = append(components, 1.0-frame.Clamp01(ed/0.25))
	}

	// Entropy is most fluent mid-range: both featureless and saturated
	// images are harder to parse than moderately structured ones.
	if ent, ok := f.Attribute("complexity.shannon_entropy"); ok {
		d := ent - 0.5
		if d < 0 {
			d = -d
		}
		components = append(components, 1.0-d*2.0)
	}

	if con, ok := f.Attribute("texture.micro.contrast"); ok {
		components = append(components, 1.0-frame.Clamp01(con))
	}

	if len(components) == 0 {
		f.Fail(a.Name(), "no component attributes present")
		return nil
	}

	f.AddAttribute("fluency.score", stat.Mean(components, nil), 1.0)
	return nil
}
