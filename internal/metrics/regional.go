package metrics

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/image-science/internal/frame"
	"github.com/ironsheep/image-science/internal/imaging"
	"github.com/ironsheep/image-science/internal/science"
)

const regionalPatchSize = 64

// RegionalFrequencyAnalyzer repeats the band-power measurement per
// non-overlapping patch and summarizes the patch distribution. The
// variances separate images with uniform frequency content from ones where
// detail concentrates in a few regions. Images smaller than a single patch
// are skipped with a flag.
type RegionalFrequencyAnalyzer struct{}

var _ science.Analyzer = RegionalFrequencyAnalyzer{}

func (RegionalFrequencyAnalyzer) Name() string { return "regional_spatial_frequency" }

func (RegionalFrequencyAnalyzer) Tier() science.Tier { return science.TierPerceptual }

func (RegionalFrequencyAnalyzer) Requires() []string { return []string{"gray"} }

func (RegionalFrequencyAnalyzer) Provides() []string {
	return []string{
		"spatial_freq_reg.low_mean",
		"spatial_freq_reg.low_var",
		"spatial_freq_reg.mid_mean",
		"spatial_freq_reg.mid_var",
		"spatial_freq_reg.high_mean",
		"spatial_freq_reg.high_var",
	}
}

func (a RegionalFrequencyAnalyzer) Analyze(_ context.Context, f *frame.Frame) error {
	gray := f.Gray()
	windows := imaging.Patches(f.Width(), f.Height(), regionalPatchSize, regionalPatchSize)
	if len(windows) == 0 {
		f.Fail(a.Name(), "image smaller than one analysis patch")
		return nil
	}

	lows := make([]float64, 0, len(windows))
	mids := make([]float64, 0, len(windows))
	highs := make([]float64, 0, len(windows))

	for _, w := range windows {
		ps := fftPower(imaging.SubPlane(gray, w))
		low, mid, high := bandMeans(ps)

		total := 0.0
		for _, row := range ps {
			for _, v := range row {
				total += v
			}
		}
		if total > 0 {
			low, mid, high = low/total, mid/total, high/total
		} else {
			low, mid, high = 0, 0, 0
		}

		lows = append(lows, low)
		mids = append(mids, mid)
		highs = append(highs, high)
	}

	f.AddAttribute("spatial_freq_reg.low_mean", stat.Mean(lows, nil), 1.0)
	f.AddAttribute("spatial_freq_reg.low_var", popVar(lows), 1.0)
	f.AddAttribute("spatial_freq_reg.mid_mean", stat.Mean(mids, nil), 1.0)
	f.AddAttribute("spatial_freq_reg.mid_var", popVar(mids), 1.0)
	f.AddAttribute("spatial_freq_reg.high_mean", stat.Mean(highs, nil), 1.0)
	f.AddAttribute("spatial_freq_reg.high_var", popVar(highs), 1.0)
	return nil
}
