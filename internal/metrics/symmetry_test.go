package metrics

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/image-science/internal/frame"
)

// mirroredFrame builds an image whose right half mirrors its left half
// exactly, with otherwise irregular content.
func mirroredFrame(id string, size int) *frame.Frame {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	state := uint32(42)
	next := func() uint8 {
		state = state*1664525 + 1013904223
		return uint8(state >> 24)
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size/2; x++ {
			c := color.NRGBA{next(), next(), next(), 255}
			img.SetNRGBA(x, y, c)
			img.SetNRGBA(size-1-x, y, c)
		}
	}
	return frame.New(id, img)
}

func TestSymmetryMirroredImage(t *testing.T) {
	f := mirroredFrame("mirror", 64)
	if err := (SymmetryAnalyzer{}).Analyze(context.Background(), f); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	got, ok := f.Attribute("symmetry.vertical")
	if !ok {
		t.Fatal("symmetry.vertical not written")
	}
	if got < 0.99 {
		t.Errorf("vertical symmetry of a mirrored image = %v, want ~1", got)
	}
}

func TestSymmetryUniformImage(t *testing.T) {
	// A flat image z-normalizes to all zeros; the cosine degenerates to 0
	// and maps to the midpoint score.
	f := uniformFrame("flat", 32, color.NRGBA{100, 100, 100, 255})
	if err := (SymmetryAnalyzer{}).Analyze(context.Background(), f); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	for _, key := range []string{"symmetry.vertical", "symmetry.horizontal"} {
		got, _ := f.Attribute(key)
		if got < 0.49 || got > 0.51 {
			t.Errorf("%s = %v, want ~0.5 for a flat image", key, got)
		}
	}
}

func TestSymmetryTinyImageSkipped(t *testing.T) {
	f := uniformFrame("tiny", 3, color.NRGBA{50, 50, 50, 255})
	if err := (SymmetryAnalyzer{}).Analyze(context.Background(), f); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(f.Attributes()) != 0 {
		t.Errorf("attributes written for a 3px image: %v", f.Attributes())
	}
	if _, failed := f.Failure("symmetry"); !failed {
		t.Error("skip flag not recorded")
	}
}

func TestSymmetryAsymmetricBelowMirrored(t *testing.T) {
	mirrored := mirroredFrame("m", 64)
	asymmetric := splitFrame("s", 64)

	if err := (SymmetryAnalyzer{}).Analyze(context.Background(), mirrored); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if err := (SymmetryAnalyzer{}).Analyze(context.Background(), asymmetric); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	m, _ := mirrored.Attribute("symmetry.vertical")
	a, _ := asymmetric.Attribute("symmetry.vertical")
	if a >= m {
		t.Errorf("asymmetric score %v not below mirrored score %v", a, m)
	}
}
