// Package cognition bridges the pipeline to an external vision-language
// reasoning engine for semantic and affective judgments: cognitive and
// affect dimensions, interior style and room function, and architectural
// pattern presence.
//
// The bridge is built to keep the dataset honest. The stub engine, used
// whenever no real engine is configured, never causes a numeric attribute
// to be written: absence of data stays distinguishable from a measurement.
// The real engine's replies are parsed defensively, every numeric is
// clamped to the unit interval, and exactly one cost-ledger entry is
// recorded per successful call. Any network or parse failure surfaces as a
// per-analyzer failure flag and writes nothing.
package cognition

import (
	"context"
	"fmt"

	"github.com/ironsheep/image-science/internal/frame"
	"github.com/ironsheep/image-science/internal/imaging"
)

// Engine is a pluggable vision-language reasoning backend. Describe sends
// one image with one prompt and returns the raw text reply; callers
// extract the constrained JSON themselves.
type Engine interface {
	// Name identifies the provider ("stub", "ollama").
	Name() string
	// Model identifies the model the engine answers with.
	Model() string
	// Stub reports whether replies are fabricated placeholders.
	Stub() bool
	Describe(ctx context.Context, jpeg []byte, prompt string) (string, error)
}

// CostLedger records external tool spend. Implementations must treat
// writes as append-only.
type CostLedger interface {
	LogUsage(ctx context.Context, tool, provider, model string, costUSD float64, meta map[string]any) error
}

// ledgerTool names every engine call in the cost ledger; aggregation by
// provider/model happens downstream.
const ledgerTool = "vlm_analyze_image"

// Engine image delivery parameters: bounded payloads keep local inference
// latency and remote token cost predictable.
const (
	engineJPEGMaxEdge = 1024
	engineJPEGQuality = 85
)

// StubEngine is the deterministic, network-free placeholder used when no
// real engine is configured. Its reply is valid JSON carrying an explicit
// stub marker, so downstream parsing exercises the same path as real
// replies without ever being mistaken for one.
type StubEngine struct{}

func (StubEngine) Name() string { return "stub" }

func (StubEngine) Model() string { return "stub" }

func (StubEngine) Stub() bool { return true }

func (StubEngine) Describe(_ context.Context, _ []byte, _ string) (string, error) {
	return `{"stub": true, "note": "placeholder reply; configure a real engine for semantic analysis"}`, nil
}

// bridge is the shared engine plumbing embedded by each cognition
// analyzer: JPEG encoding, the engine call, stub detection, and the
// single ledger entry per successful call.
type bridge struct {
	engine      Engine
	ledger      CostLedger
	costPerCall float64
}

// newBridge normalizes a nil engine to the stub so analyzers never have
// to branch on configuration.
func newBridge(engine Engine, ledger CostLedger, costPerCall float64) bridge {
	if engine == nil {
		engine = StubEngine{}
	}
	return bridge{engine: engine, ledger: ledger, costPerCall: costPerCall}
}

// call runs one engine round trip for the frame. stub is true when the
// reply must not produce numeric attributes. The returned raw text is
// only valid when err is nil.
func (b *bridge) call(ctx context.Context, f *frame.Frame, prompt string) (raw string, stub bool, err error) {
	jpeg, err := imaging.EncodeJPEG(f.Image(), engineJPEGMaxEdge, engineJPEGQuality)
	if err != nil {
		return "", false, fmt.Errorf("jpeg encoding for engine failed: %w", err)
	}

	raw, err = b.engine.Describe(ctx, jpeg, prompt)
	if err != nil {
		return "", false, fmt.Errorf("engine %s: %w", b.engine.Name(), err)
	}
	return raw, b.engine.Stub(), nil
}

// logUsage appends the per-call ledger entry. Ledger failures are
// swallowed: accounting must never break the analysis itself.
func (b *bridge) logUsage(ctx context.Context, f *frame.Frame, analyzer string) {
	if b.ledger == nil {
		return
	}
	_ = b.ledger.LogUsage(ctx, ledgerTool, b.engine.Name(), b.engine.Model(), b.costPerCall, map[string]any{
		"source":   "science_pipeline_" + analyzer,
		"image_id": f.ID(),
	})
}

// clampScore coerces an arbitrary JSON value to a unit-interval float.
// Non-numeric values read as 0.
func clampScore(v any) float64 {
	switch n := v.(type) {
	case float64:
		return frame.Sanitize(n)
	case int:
		return frame.Sanitize(float64(n))
	default:
		return 0
	}
}
