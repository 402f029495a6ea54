package metrics

import (
	"context"
	"testing"

	"github.com/ironsheep/image-science/internal/science"
)

func allAnalyzers() []science.Analyzer {
	return []science.Analyzer{
		ColorAnalyzer{},
		ComplexityAnalyzer{},
		TextureAnalyzer{},
		FractalAnalyzer{},
		FrequencyAnalyzer{},
		RegionalFrequencyAnalyzer{},
		SymmetryAnalyzer{},
		NaturalnessAnalyzer{},
		FluencyAnalyzer{},
	}
}

func TestAnalyzersHonorProvides(t *testing.T) {
	// Every attribute an analyzer writes must be declared in Provides;
	// registry-level key ownership depends on the declarations being
	// accurate.
	f := noisyFrame("contract", 96, 21)

	for _, a := range allAnalyzers() {
		before := f.Attributes()

		if err := a.Analyze(context.Background(), f); err != nil {
			t.Fatalf("%s: Analyze failed: %v", a.Name(), err)
		}

		declared := make(map[string]bool, len(a.Provides()))
		for _, key := range a.Provides() {
			declared[key] = true
		}

		for key := range f.Attributes() {
			if _, existed := before[key]; existed {
				continue
			}
			if !declared[key] {
				t.Errorf("%s wrote undeclared attribute %s", a.Name(), key)
			}
		}
	}
}

func TestAnalyzersDeterministic(t *testing.T) {
	run := func() map[string]float64 {
		f := noisyFrame("det", 96, 77)
		for _, a := range allAnalyzers() {
			if err := a.Analyze(context.Background(), f); err != nil {
				t.Fatalf("%s: Analyze failed: %v", a.Name(), err)
			}
		}
		return f.Attributes()
	}

	first := run()
	second := run()

	if len(first) != len(second) {
		t.Fatalf("attribute counts differ: %d vs %d", len(first), len(second))
	}
	for key, v := range first {
		if second[key] != v {
			t.Errorf("%s differs across runs: %v vs %v", key, v, second[key])
		}
	}
}

func TestAnalyzerNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, a := range allAnalyzers() {
		if seen[a.Name()] {
			t.Errorf("duplicate analyzer name %q", a.Name())
		}
		seen[a.Name()] = true
	}
}

func TestAttributesBounded(t *testing.T) {
	f := noisyFrame("bounds", 96, 13)
	for _, a := range allAnalyzers() {
		if err := a.Analyze(context.Background(), f); err != nil {
			t.Fatalf("%s: Analyze failed: %v", a.Name(), err)
		}
	}

	for key, v := range f.Attributes() {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v, want in [0,1]", key, v)
		}
	}
}
