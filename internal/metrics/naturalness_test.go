package metrics

import (
	"context"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/image-science/internal/frame"
)

func TestNaturalnessBands(t *testing.T) {
	tests := []struct {
		name      string
		c         color.NRGBA
		wantKey   string
		wantScore float64
	}{
		// Pure green: hue 120, fully saturated.
		{"green foliage", color.NRGBA{0, 255, 0, 255}, "naturalness.green_ratio", 0.55},
		// Pure blue: hue 240.
		{"blue sky", color.NRGBA{0, 0, 255, 255}, "naturalness.blue_ratio", 0.30},
		// Warm low-saturation tone: hue 30, saturation 0.3.
		{"earth tone", color.NRGBA{200, 170, 140, 255}, "naturalness.earth_ratio", 0.15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := uniformFrame("band", 16, tt.c)
			if err := (NaturalnessAnalyzer{}).Analyze(context.Background(), f); err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}

			ratio, ok := f.Attribute(tt.wantKey)
			if !ok {
				t.Fatalf("%s not written", tt.wantKey)
			}
			if math.Abs(ratio-1.0) > 1e-9 {
				t.Errorf("%s = %v, want 1", tt.wantKey, ratio)
			}

			score, _ := f.Attribute("naturalness.score")
			if math.Abs(score-tt.wantScore) > 1e-9 {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
		})
	}
}

func TestNaturalnessNeutralGray(t *testing.T) {
	f := uniformFrame("gray", 16, color.NRGBA{128, 128, 128, 255})
	if err := (NaturalnessAnalyzer{}).Analyze(context.Background(), f); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	keys := []string{
		"naturalness.green_ratio",
		"naturalness.blue_ratio",
		"naturalness.earth_ratio",
		"naturalness.score",
	}
	for _, key := range keys {
		if got, _ := f.Attribute(key); got != 0 {
			t.Errorf("%s = %v, want 0 for neutral gray", key, got)
		}
	}
}

func TestNaturalnessMixedScene(t *testing.T) {
	// Half green, half neutral gray: ratios follow the pixel fractions.
	size := 32
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x < size/2 {
				img.SetNRGBA(x, y, color.NRGBA{0, 255, 0, 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{128, 128, 128, 255})
			}
		}
	}
	f := frame.New("mixed", img)

	if err := (NaturalnessAnalyzer{}).Analyze(context.Background(), f); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	green, _ := f.Attribute("naturalness.green_ratio")
	if math.Abs(green-0.5) > 1e-9 {
		t.Errorf("green ratio = %v, want 0.5", green)
	}
	score, _ := f.Attribute("naturalness.score")
	if math.Abs(score-0.275) > 1e-9 {
		t.Errorf("score = %v, want 0.275", score)
	}
}
