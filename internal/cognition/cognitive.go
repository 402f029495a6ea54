package cognition

import (
	"context"

	"github.com/ironsheep/image-science/internal/frame"
	"github.com/ironsheep/image-science/internal/science"
)

// cognitivePrompt asks for the five Kaplan-style environmental-psychology
// dimensions and five affective tone dimensions, all in [0,1].
const cognitivePrompt = `Analyze this architectural space as an environmental psychologist.

Rate the following attributes from 0.0 (very low) to 1.0 (very high):

1. coherence   - How organized and structured is the scene?
2. complexity  - How much visual richness and variety is present?
3. legibility  - How easy would it be to navigate and understand this space?
4. mystery     - Does the environment promise more information if explored?
5. restoration - Potential for stress recovery / mental restoration.

Now also rate the affective tone of the space on these dimensions (0.0-1.0):
6. cozy        - How cozy / snug / intimate does it feel?
7. welcoming   - How welcoming / socially inviting does it feel?
8. tranquil    - How calm / tranquil does it feel?
9. scary       - How scary / threatening does it feel?
10. jarring    - How visually or affectively jarring does it feel?

Return ONLY valid JSON in the following form:
{"coherence": float, "complexity": float, "legibility": float, "mystery": float, "restoration": float, "cozy": float, "welcoming": float, "tranquil": float, "scary": float, "jarring": float}`

var (
	cognitiveDims = []string{"coherence", "complexity", "legibility", "mystery", "restoration"}
	affectDims    = []string{"cozy", "welcoming", "tranquil", "scary", "jarring"}
)

const cognitiveConfidence = 0.9

// CognitiveAnalyzer obtains the cognitive.* and affect.* judgments from
// the engine in a single call.
type CognitiveAnalyzer struct {
	bridge
}

var _ science.Analyzer = (*CognitiveAnalyzer)(nil)

// NewCognitiveAnalyzer builds the analyzer around an engine and ledger.
// costPerCall is the estimated USD cost of one engine call (0 for local
// inference).
func NewCognitiveAnalyzer(engine Engine, ledger CostLedger, costPerCall float64) *CognitiveAnalyzer {
	return &CognitiveAnalyzer{newBridge(engine, ledger, costPerCall)}
}

func (*CognitiveAnalyzer) Name() string { return "cognitive" }

func (*CognitiveAnalyzer) Tier() science.Tier { return science.TierCognitive }

func (*CognitiveAnalyzer) Requires() []string { return []string{"pixels"} }

func (*CognitiveAnalyzer) Provides() []string {
	keys := make([]string, 0, len(cognitiveDims)+len(affectDims))
	for _, d := range cognitiveDims {
		keys = append(keys, "cognitive."+d)
	}
	for _, d := range affectDims {
		keys = append(keys, "affect."+d)
	}
	return keys
}

func (a *CognitiveAnalyzer) Analyze(ctx context.Context, f *frame.Frame) error {
	raw, stub, err := a.call(ctx, f, cognitivePrompt)
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
	for _, dim := range cognitiveDims {
		if v, ok := result[dim]; ok {
			f.AddAttributeSourced("cognitive."+dim, clampScore(v), cognitiveConfidence, source)
		}
	}
	for _, dim := range affectDims {
		if v, ok := result[dim]; ok {
			f.AddAttributeSourced("affect."+dim, clampScore(v), cognitiveConfidence, source)
		}
	}
	return nil
}

// markStub records that the call happened without real data, keeping
// cognitive.* and affect.* absent rather than fabricated.
func (a *CognitiveAnalyzer) markStub(f *frame.Frame) {
	f.SetNote("cognitive.status", frame.Annotation{
		Source: a.engine.Name(),
		Note:   "stub engine; no cognitive or affect attributes written",
	})
}
