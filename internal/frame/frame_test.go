package frame

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// newTestImage builds a uniform NRGBA image for Frame tests.
func newTestImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestFrameDimensions(t *testing.T) {
	f := New("img-1", newTestImage(40, 24, color.NRGBA{128, 128, 128, 255}))

	if f.ID() != "img-1" {
		t.Errorf("ID = %q, want %q", f.ID(), "img-1")
	}
	if f.Width() != 40 || f.Height() != 24 {
		t.Errorf("dimensions = %dx%d, want 40x24", f.Width(), f.Height())
	}
}

func TestDerivedPlanesMemoized(t *testing.T) {
	f := New("memo", newTestImage(16, 16, color.NRGBA{200, 100, 50, 255}))

	gray1 := f.Gray()
	gray2 := f.Gray()
	if &gray1[0][0] != &gray2[0][0] {
		t.Error("Gray() computed twice, want cached plane")
	}

	lab1 := f.Lab()
	lab2 := f.Lab()
	if &lab1[0][0] != &lab2[0][0] {
		t.Error("Lab() computed twice, want cached plane")
	}

	edges1 := f.Edges()
	edges2 := f.Edges()
	if &edges1[0][0] != &edges2[0][0] {
		t.Error("Edges() computed twice, want cached mask")
	}
}

func TestDerivedPlaneShapes(t *testing.T) {
	f := New("shape", newTestImage(20, 12, color.NRGBA{90, 90, 90, 255}))

	if len(f.Gray()) != 12 || len(f.Gray()[0]) != 20 {
		t.Errorf("gray shape = %dx%d, want 12x20", len(f.Gray()), len(f.Gray()[0]))
	}
	if len(f.Lab()) != 12 || len(f.Lab()[0]) != 20 {
		t.Errorf("lab shape = %dx%d, want 12x20", len(f.Lab()), len(f.Lab()[0]))
	}
	if len(f.Edges()) != 12 || len(f.Edges()[0]) != 20 {
		t.Errorf("edge shape = %dx%d, want 12x20", len(f.Edges()), len(f.Edges()[0]))
	}
}

func TestAddAttributeSanitizes(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"in range", 0.42, 0.42},
		{"below range", -3.5, 0.0},
		{"above range", 17.0, 1.0},
		{"NaN", math.NaN(), 0.0},
		{"positive infinity", math.Inf(1), 0.0},
		{"negative infinity", math.Inf(-1), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New("sanitize", newTestImage(4, 4, color.NRGBA{0, 0, 0, 255}))
			f.AddAttribute("test.key", tt.value, 1.0)

			got, ok := f.Attribute("test.key")
			if !ok {
				t.Fatal("attribute not stored")
			}
			if got != tt.want {
				t.Errorf("stored value = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddAttributeConfidence(t *testing.T) {
	f := New("conf", newTestImage(4, 4, color.NRGBA{0, 0, 0, 255}))
	f.AddAttribute("a", 0.5, 0.9)
	f.AddAttribute("b", 0.5, math.NaN())

	anns := f.Annotations()
	if anns["a"].Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", anns["a"].Confidence)
	}
	if anns["b"].Confidence != 0 {
		t.Errorf("NaN confidence stored as %v, want 0", anns["b"].Confidence)
	}
}

func TestAddOrdinalBypassesClamp(t *testing.T) {
	f := New("ord", newTestImage(4, 4, color.NRGBA{0, 0, 0, 255}))
	f.AddOrdinal("science.visual_richness_bin", 2, 1.0)

	if v, _ := f.Attribute("science.visual_richness_bin"); v != 2 {
		t.Errorf("ordinal stored as %v, want 2", v)
	}
	if f.Annotations()["science.visual_richness_bin"].Confidence != 1.0 {
		t.Error("ordinal confidence not recorded")
	}
}

func TestAddAttributeSourced(t *testing.T) {
	f := New("src", newTestImage(4, 4, color.NRGBA{0, 0, 0, 255}))
	f.AddAttributeSourced("cognitive.mystery", 0.7, 0.9, "vlm:llava")

	ann := f.Annotations()["cognitive.mystery"]
	if ann.Source != "vlm:llava" {
		t.Errorf("source = %q, want %q", ann.Source, "vlm:llava")
	}
	if v, _ := f.Attribute("cognitive.mystery"); v != 0.7 {
		t.Errorf("value = %v, want 0.7", v)
	}
}

func TestAttributeOverwrite(t *testing.T) {
	f := New("ow", newTestImage(4, 4, color.NRGBA{0, 0, 0, 255}))
	f.AddAttribute("k", 0.2, 1.0)
	f.AddAttribute("k", 0.8, 0.5)

	if v, _ := f.Attribute("k"); v != 0.8 {
		t.Errorf("value after overwrite = %v, want 0.8", v)
	}
	if len(f.Attributes()) != 1 {
		t.Errorf("attribute count = %d, want 1", len(f.Attributes()))
	}
}

func TestAttributesReturnsCopy(t *testing.T) {
	f := New("copy", newTestImage(4, 4, color.NRGBA{0, 0, 0, 255}))
	f.AddAttribute("k", 0.5, 1.0)

	snapshot := f.Attributes()
	snapshot["k"] = 0.1
	snapshot["injected"] = 1.0

	if v, _ := f.Attribute("k"); v != 0.5 {
		t.Errorf("mutating snapshot changed stored value to %v", v)
	}
	if f.HasAttribute("injected") {
		t.Error("mutating snapshot added a key to the frame")
	}
}

func TestDepthInstall(t *testing.T) {
	f := New("depth", newTestImage(4, 4, color.NRGBA{0, 0, 0, 255}))

	if _, ok := f.Depth(); ok {
		t.Error("fresh frame reports a depth plane")
	}

	plane := [][]float64{{0.1, 0.2}, {0.3, 0.4}}
	f.SetDepth(plane)

	got, ok := f.Depth()
	if !ok {
		t.Fatal("depth not reported after SetDepth")
	}
	if got[1][1] != 0.4 {
		t.Errorf("depth[1][1] = %v, want 0.4", got[1][1])
	}
}

func TestFailRecordsFlag(t *testing.T) {
	f := New("fail", newTestImage(4, 4, color.NRGBA{0, 0, 0, 255}))
	f.AddAttribute("texture.micro.contrast", 0.3, 1.0)
	f.Fail("fractal", "insufficient box samples")

	reason, ok := f.Failure("fractal")
	if !ok {
		t.Fatal("failure flag not recorded")
	}
	if reason != "insufficient box samples" {
		t.Errorf("reason = %q", reason)
	}
	if _, ok := f.Failure("texture"); ok {
		t.Error("failure reported for analyzer that did not fail")
	}

	// Failure flags live in metadata only, never in the attribute map.
	if f.HasAttribute(ErrorKeyPrefix + "fractal") {
		t.Error("failure flag leaked into attribute map")
	}
	// Attributes written before the failure survive.
	if !f.HasAttribute("texture.micro.contrast") {
		t.Error("pre-failure attribute removed")
	}
}

func TestSetNote(t *testing.T) {
	f := New("note", newTestImage(4, 4, color.NRGBA{0, 0, 0, 255}))
	f.SetNote("cognition.status", Annotation{Note: "stub engine, no attributes written"})

	ann, ok := f.Annotations()["cognition.status"]
	if !ok {
		t.Fatal("note not stored")
	}
	if ann.Note == "" {
		t.Error("note text empty")
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.1, 0}, {0, 0}, {0.5, 0.5}, {1, 1}, {1.5, 1},
	}
	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
