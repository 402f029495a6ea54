package cognition

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ironsheep/image-science/internal/frame"
	"github.com/ironsheep/image-science/internal/science"
)

// patternCatalog is the full architectural-pattern vocabulary shown to the
// engine. Only the activePatterns subset produces numeric attributes; the
// rest stay metadata-only until their downstream use is settled.
var patternCatalog = map[string]string{
	"arch.pattern.prospect_strong":        "Strong outward views and long sightlines (Prospect).",
	"arch.pattern.refuge_strong":          "Strong sense of enclosure/refuge via partial enclosure.",
	"arch.pattern.refuge_nook":            "Local nook/alcove suitable for retreat.",
	"arch.pattern.axial_circulation_clear": "Clear axial circulation path.",
	"arch.pattern.circulation_maze_like":  "Maze-like, complex circulation.",
	"arch.pattern.double_height_space":    "Double-height or tall volume.",
	"arch.pattern.corner_window":          "Corner window or wrapping glazing.",
	"arch.pattern.perimeter_seating":      "Seating arranged along the room perimeter.",
	"arch.pattern.central_hearth":         "Fireplace or central hearth as focal point.",
	"arch.pattern.gallery_edge":           "Balcony or gallery overlooking lower space.",
	"arch.pattern.daylight_soft":          "Soft diffuse daylight with low glare.",
	"arch.pattern.daylight_hard":          "Strong direct daylight with sharp shadows.",
	"arch.pattern.skylight_dominant":      "Skylights as primary daylight source.",
	"arch.pattern.threshold_emphasized":   "Emphasized entry threshold or portal.",
	"arch.pattern.colonnade":              "Series of columns forming a colonnade.",
	"arch.pattern.bay_window":             "Projecting bay window.",
	"arch.pattern.staircase_sculptural":   "Staircase acting as sculptural feature.",
	"arch.pattern.long_view_corridor":     "Long view along a corridor.",
	"arch.pattern.loft_mezzanine":         "Loft or mezzanine overlooking space.",
	"arch.pattern.window_seat_niche":      "Window seat or deep sill niche.",
}

var activePatterns = map[string]bool{
	"arch.pattern.prospect_strong":     true,
	"arch.pattern.refuge_strong":       true,
	"arch.pattern.daylight_soft":       true,
	"arch.pattern.daylight_hard":       true,
	"arch.pattern.double_height_space": true,
}

const defaultPatternConfidence = 0.7

// ArchPatternsAnalyzer asks the engine to score the presence of classic
// architectural patterns. The reply is list-shaped: one candidate object
// per pattern with a presence score, the engine's own confidence, and a
// short evidence phrase.
type ArchPatternsAnalyzer struct {
	bridge
}

var _ science.Analyzer = (*ArchPatternsAnalyzer)(nil)

// NewArchPatternsAnalyzer builds the analyzer around an engine and ledger.
func NewArchPatternsAnalyzer(engine Engine, ledger CostLedger, costPerCall float64) *ArchPatternsAnalyzer {
	return &ArchPatternsAnalyzer{newBridge(engine, ledger, costPerCall)}
}

func (*ArchPatternsAnalyzer) Name() string { return "arch_patterns" }

func (*ArchPatternsAnalyzer) Tier() science.Tier { return science.TierCognitive }

func (*ArchPatternsAnalyzer) Requires() []string { return []string{"pixels"} }

func (*ArchPatternsAnalyzer) Provides() []string {
	keys := make([]string, 0, len(activePatterns))
	for key := range activePatterns {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// patternsPrompt enumerates the catalog in sorted order so the prompt is
// identical across runs.
func patternsPrompt() string {
	keys := make([]string, 0, len(patternCatalog))
	for key := range patternCatalog {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("You are an architectural cognition assistant. " +
		"Given this interior image, estimate the presence of the following architectural patterns.\n")
	for _, key := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", key, patternCatalog[key])
	}
	b.WriteString("Return STRICT JSON as a list of objects with fields " +
		`{"key": <pattern_key>, "present": <0-1>, "confidence": <0-1>, "evidence": <short text>}.`)
	return b.String()
}

func (a *ArchPatternsAnalyzer) Analyze(ctx context.Context, f *frame.Frame) error {
	raw, stub, err := a.call(ctx, f, patternsPrompt())
	if err != nil {
		return err
	}
	if stub {
		a.markStub(f)
		return nil
	}

	candidates, err := ExtractList(raw)
	if err != nil {
		return err
	}

	a.logUsage(ctx, f, a.Name())

	source := a.engine.Name()
	written := 0
	for _, c := range candidates {
		cand, ok := c.(map[string]any)
		if !ok {
			continue
		}
		key, ok := cand["key"].(string)
		if !ok || !activePatterns[key] {
			continue
		}

		present := clampScore(cand["present"])
		confidence := defaultPatternConfidence
		if v, ok := cand["confidence"]; ok {
			confidence = clampScore(v)
		}
		evidence, _ := cand["evidence"].(string)

		f.AddAttributeSourced(key, present, confidence, source)
		if evidence != "" {
			f.SetNote(key, frame.Annotation{Confidence: confidence, Source: source, Note: evidence})
		}
		written++
	}

	f.SetNote("arch.patterns.candidates", frame.Annotation{
		Source: source,
		Note:   fmt.Sprintf("%d candidates returned, %d active patterns scored", len(candidates), written),
	})
	return nil
}

func (a *ArchPatternsAnalyzer) markStub(f *frame.Frame) {
	f.SetNote("arch.patterns.candidates", frame.Annotation{
		Source: a.engine.Name(),
		Note:   "stub engine; no pattern attributes written",
	})
}
