package cognition

import (
	"context"

	"github.com/ironsheep/image-science/internal/frame"
	"github.com/ironsheep/image-science/internal/science"
)

// semanticPrompt asks for interior-style strengths and room-function
// plausibilities as flat JSON keys, which parse more reliably than nested
// objects across model families.
const semanticPrompt = `You are an environmental psychology and interior-architecture expert.
Given a single photograph of an architectural or interior space, estimate:
1) The strength of several interior design styles (0.0-1.0 each).
2) The plausibility that the scene serves specific room functions (0.0-1.0 each).

Return ONLY strict JSON with these keys (all floats between 0.0 and 1.0):
{
  "style_modern": float,
  "style_traditional": float,
  "style_minimalist": float,
  "style_scandinavian": float,
  "style_industrial": float,
  "style_rustic": float,
  "style_bohemian": float,
  "style_farmhouse": float,
  "style_japandi": float,
  "room_function_living_room": float,
  "room_function_kitchen": float,
  "room_function_bedroom": float,
  "room_function_home_office": float,
  "room_function_bathroom": float
}`

// Reply keys mapped to canonical attribute keys.
var (
	styleKeys = map[string]string{
		"style_modern":       "style.modern",
		"style_traditional":  "style.traditional",
		"style_minimalist":   "style.minimalist",
		"style_scandinavian": "style.scandinavian",
		"style_industrial":   "style.industrial",
		"style_rustic":       "style.rustic",
		"style_bohemian":     "style.bohemian",
		"style_farmhouse":    "style.farmhouse",
		"style_japandi":      "style.japandi",
	}
	roomKeys = map[string]string{
		"room_function_living_room": "spatial.room_function.living_room",
		"room_function_kitchen":     "spatial.room_function.kitchen",
		"room_function_bedroom":     "spatial.room_function.bedroom",
		"room_function_home_office": "spatial.room_function.home_office",
		"room_function_bathroom":    "spatial.room_function.bathroom",
	}
)

const (
	styleConfidence = 0.85
	roomConfidence  = 0.9
)

// SemanticTagAnalyzer obtains style.* and spatial.room_function.*
// strengths from the engine in a single call, and records the argmax of
// each group as a metadata note for quick inspection.
type SemanticTagAnalyzer struct {
	bridge
}

var _ science.Analyzer = (*SemanticTagAnalyzer)(nil)

// NewSemanticTagAnalyzer builds the analyzer around an engine and ledger.
func NewSemanticTagAnalyzer(engine Engine, ledger CostLedger, costPerCall float64) *SemanticTagAnalyzer {
	return &SemanticTagAnalyzer{newBridge(engine, ledger, costPerCall)}
}

func (*SemanticTagAnalyzer) Name() string { return "semantic_tags" }

func (*SemanticTagAnalyzer) Tier() science.Tier { return science.TierCognitive }

func (*SemanticTagAnalyzer) Requires() []string { return []string{"pixels"} }

func (*SemanticTagAnalyzer) Provides() []string {
	keys := make([]string, 0, len(styleKeys)+len(roomKeys))
	for _, attr := range styleKeys {
		keys = append(keys, attr)
	}
	for _, attr := range roomKeys {
		keys = append(keys, attr)
	}
	return keys
}

func (a *SemanticTagAnalyzer) Analyze(ctx context.Context, f *frame.Frame) error {
	raw, stub, err := a.call(ctx, f, semanticPrompt)
	if err != nil {
		return err
	}
	if stub {
		a.markStub(f)
		return nil
	}

	result, err := ExtractObject(raw)
	if err != nil {
		return err
	}
	if stubReply(result) {
		a.markStub(f)
		return nil
	}

	a.logUsage(ctx, f, a.Name())

	source := a.engine.Name()
	styles := a.emit(f, result, styleKeys, styleConfidence, source)
	rooms := a.emit(f, result, roomKeys, roomConfidence, source)

	if key, score, ok := argmax(styles); ok {
		f.SetNote("semantics.primary_style", frame.Annotation{Confidence: score, Source: source, Note: key})
	}
	if key, score, ok := argmax(rooms); ok {
		f.SetNote("semantics.primary_room_function", frame.Annotation{Confidence: score, Source: source, Note: key})
	}
	return nil
}

// emit writes every mapped score present in the reply and returns the
// written subset for the argmax notes.
func (a *SemanticTagAnalyzer) emit(f *frame.Frame, result map[string]any, mapping map[string]string, confidence float64, source string) map[string]float64 {
	written := make(map[string]float64)
	for replyKey, attrKey := range mapping {
		v, ok := result[replyKey]
		if !ok {
			continue
		}
		score := clampScore(v)
		written[attrKey] = score
		f.AddAttributeSourced(attrKey, score, confidence, source)
	}
	return written
}

func (a *SemanticTagAnalyzer) markStub(f *frame.Frame) {
	f.SetNote("semantics.status", frame.Annotation{
		Source: a.engine.Name(),
		Note:   "stub engine; no style or room-function attributes written",
	})
}

// argmax returns the highest-scoring key. Ties resolve to the
// lexicographically smallest key so repeated runs agree.
func argmax(scores map[string]float64) (string, float64, bool) {
	bestKey := ""
	bestScore := 0.0
	found := false
	for key, score := range scores {
		if !found || score > bestScore || (score == bestScore && key < bestKey) {
			bestKey, bestScore, found = key, score, true
		}
	}
	return bestKey, bestScore, found
}
