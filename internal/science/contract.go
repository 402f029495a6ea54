// Package science defines the analyzer contract and runs the tiered
// analysis pipeline: deterministic perceptual metrics first, derived
// metrics second, external cognitive judgments last. The registry enforces
// the structural invariants (unique names, unique attribute ownership,
// satisfiable prerequisites) at composition time so individual analyzers
// never have to re-check them.
package science

import (
	"context"

	"github.com/ironsheep/image-science/internal/frame"
)

// Tier orders analyzer execution. Lower tiers always run before higher
// tiers within one frame; an analyzer may only require attributes produced
// by a strictly lower tier.
type Tier int

const (
	// TierPerceptual analyzers compute deterministic statistics straight
	// from pixel data (L0).
	TierPerceptual Tier = iota
	// TierDerived analyzers combine L0 attributes and derived
	// representations into higher-level measures (L1).
	TierDerived
	// TierCognitive analyzers consult an external vision engine (L2).
	TierCognitive
)

func (t Tier) String() string {
	switch t {
	case TierPerceptual:
		return "perceptual"
	case TierDerived:
		return "derived"
	case TierCognitive:
		return "cognitive"
	default:
		return "unknown"
	}
}

// Representation names an analyzer may list in Requires alongside
// attribute keys. The frame materializes these on demand.
var builtinRepresentations = map[string]bool{
	"pixels": true,
	"gray":   true,
	"lab":    true,
	"edges":  true,
	"depth":  true,
}

// Analyzer is one measurement pass over a frame.
//
// Analyze mutates the frame by adding attributes and metadata; it returns
// an error for recoverable per-image failures (the orchestrator converts
// both errors and panics into failure flags, never aborting sibling
// analyzers). Implementations must not retain the frame after returning.
type Analyzer interface {
	Name() string
	Tier() Tier
	// Requires lists prerequisite attribute keys or built-in
	// representation names (pixels, gray, lab, edges, depth).
	Requires() []string
	// Provides lists every attribute key Analyze may write. Ownership is
	// exclusive across the registry.
	Provides() []string
	Analyze(ctx context.Context, f *frame.Frame) error
}

// Contract is the health-surface view of one registered analyzer.
type Contract struct {
	Name     string   `json:"name"`
	Tier     string   `json:"tier"`
	Requires []string `json:"requires"`
	Provides []string `json:"provides"`
	Enabled  bool     `json:"enabled"`
}
