package metrics

import (
	"context"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/ironsheep/image-science/internal/frame"
	"github.com/ironsheep/image-science/internal/science"
)

// Radial band boundaries as a fraction of the maximum spectral radius.
const (
	bandLowEdge  = 0.33
	bandHighEdge = 0.66
)

// FrequencyAnalyzer partitions the 2D Fourier power spectrum into low, mid
// and high radial bands. Low-frequency dominance reads as large smooth
// forms; high-frequency power reads as fine detail or noise. Band means
// are normalized by the total spectral power so they are comparable across
// images, and the low/high ratio uses the raw means, where the common
// scale cancels.
type FrequencyAnalyzer struct{}

var _ science.Analyzer = FrequencyAnalyzer{}

func (FrequencyAnalyzer) Name() string { return "spatial_frequency" }

func (FrequencyAnalyzer) Tier() science.Tier { return science.TierPerceptual }

func (FrequencyAnalyzer) Requires() []string { return []string{"gray"} }

func (FrequencyAnalyzer) Provides() []string {
	return []string{
		"spatial_freq.low_power",
		"spatial_freq.mid_power",
		"spatial_freq.high_power",
		"spatial_freq.low_high_ratio",
	}
}

func (FrequencyAnalyzer) Analyze(_ context.Context, f *frame.Frame) error {
	ps := fftPower(f.Gray())
	if ps == nil {
		f.Fail("spatial_frequency", "empty luminance plane")
		return nil
	}

	low, mid, high := bandMeans(ps)

	total := 0.0
	for _, row := range ps {
		for _, v := range row {
			total += v
		}
	}

	var nl, nm, nh float64
	if total > 0 {
		nl, nm, nh = low/total, mid/total, high/total
	}
	f.AddAttribute("spatial_freq.low_power", nl, 1.0)
	f.AddAttribute("spatial_freq.mid_power", nm, 1.0)
	f.AddAttribute("spatial_freq.high_power", nh, 1.0)
	f.AddAttribute("spatial_freq.low_high_ratio", low/math.Max(high, 1e-6), 1.0)
	return nil
}

// fftPower returns the centered power spectrum |F|^2 of a luminance plane:
// a row-wise then column-wise FFT with the DC term shifted to the matrix
// center.
func fftPower(plane [][]float64) [][]float64 {
	height := len(plane)
	if height == 0 {
		return nil
	}
	width := len(plane[0])
	if width == 0 {
		return nil
	}

	rowFFT := fourier.NewCmplxFFT(width)
	freq := make([][]complex128, height)
	row := make([]complex128, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			row[x] = complex(plane[y][x], 0)
		}
		freq[y] = rowFFT.Coefficients(nil, row)
	}

	colFFT := fourier.NewCmplxFFT(height)
	col := make([]complex128, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			col[y] = freq[y][x]
		}
		out := colFFT.Coefficients(nil, col)
		for y := 0; y < height; y++ {
			freq[y][x] = out[y]
		}
	}

	// Shift DC to the center, then square magnitudes.
	shiftY, shiftX := height-height/2, width-width/2
	ps := make([][]float64, height)
	for y := 0; y < height; y++ {
		ps[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			c := freq[(y+shiftY)%height][(x+shiftX)%width]
			re, im := real(c), imag(c)
			ps[y][x] = re*re + im*im
		}
	}
	return ps
}

// bandMeans returns the raw mean power in each radial band of a centered
// spectrum. Radius is normalized by the distance from the center to the
// farthest corner, so the thresholds are resolution-independent.
func bandMeans(ps [][]float64) (low, mid, high float64) {
	height := len(ps)
	width := len(ps[0])
	cy, cx := height/2, width/2
	rmax := math.Hypot(float64(cy), float64(cx))

	var lowSum, midSum, highSum float64
	var lowN, midN, highN int
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := 0.0
			if rmax > 0 {
				r = math.Hypot(float64(y-cy), float64(x-cx)) / rmax
			}
			switch {
			case r < bandLowEdge:
				lowSum += ps[y][x]
				lowN++
			case r < bandHighEdge:
				midSum += ps[y][x]
				midN++
			default:
				highSum += ps[y][x]
				highN++
			}
		}
	}

	if lowN > 0 {
		low = lowSum / float64(lowN)
	}
	if midN > 0 {
		mid = midSum / float64(midN)
	}
	if highN > 0 {
		high = highSum / float64(highN)
	}
	return low, mid, high
}
