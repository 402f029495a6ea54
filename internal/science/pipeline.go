package science

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ironsheep/image-science/internal/catalog"
	"github.com/ironsheep/image-science/internal/frame"
	"github.com/ironsheep/image-science/internal/imaging"
)

// Persister stores a finished frame's attributes and annotations. The
// SQLite store satisfies it; a nil Persister keeps runs in-memory.
type Persister interface {
	SaveAttributes(ctx context.Context, imageID string, attrs map[string]float64, anns map[string]frame.Annotation) error
}

// Evicter is optionally implemented by Sources that cache decoded pixel
// buffers. Long batch runs and long-lived servers release finished
// images through it so the cache does not grow for the process lifetime.
type Evicter interface {
	Evict(id string)
}

// PipelineConfig wires a Pipeline.
type PipelineConfig struct {
	Registry  *Registry
	Source    imaging.Source
	Persister Persister    // optional
	Logger    *slog.Logger // nil means slog.Default()
}

// Pipeline runs the enabled analyzers over one image at a time: resolve
// pixels, build the frame, execute tiers ascending, roll up composite
// indices, persist.
//
// A Pipeline is safe for concurrent Process calls; each call owns its
// frame, and the registry is read-only after wiring.
type Pipeline struct {
	registry  *Registry
	source    imaging.Source
	persister Persister
	logger    *slog.Logger
}

// NewPipeline validates the registry and returns a ready Pipeline.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("pipeline requires a registry")
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("pipeline requires an image source")
	}
	if err := cfg.Registry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analyzer registry: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		registry:  cfg.Registry,
		source:    cfg.Source,
		persister: cfg.Persister,
		logger:    logger,
	}, nil
}

// Process analyzes one image end to end and returns the finished frame.
//
// Only two failures surface as errors: the image cannot be resolved, or
// persistence fails. Analyzer errors and panics become per-analyzer
// failure flags on the frame; the remaining analyzers still run.
func (p *Pipeline) Process(ctx context.Context, imageID string) (*frame.Frame, error) {
	img, err := p.source.Resolve(imageID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve image %s: %w", imageID, err)
	}

	f := frame.New(imageID, img)

	for _, a := range p.registry.Enabled() {
		if ctx.Err() != nil {
			return f, ctx.Err()
		}
		if missing, ok := missingPrerequisite(a, f); !ok {
			f.Fail(a.Name(), fmt.Sprintf("skipped: missing prerequisite %s", missing))
			p.logger.Debug("analyzer skipped",
				"analyzer", a.Name(), "image", imageID, "missing", missing)
			continue
		}
		if err := p.runAnalyzer(ctx, a, f); err != nil {
			f.Fail(a.Name(), err.Error())
			p.logger.Warn("analyzer failed",
				"analyzer", a.Name(), "image", imageID, "error", err)
		}
	}

	catalog.Summarizer{}.Summarize(f)

	if p.persister != nil {
		if err := p.persister.SaveAttributes(ctx, imageID, f.Attributes(), f.Annotations()); err != nil {
			return f, fmt.Errorf("failed to persist %s: %w", imageID, err)
		}
	}
	return f, nil
}

// runAnalyzer executes one analyzer with panic containment. A panicking
// analyzer must not take the whole frame down with it.
func (p *Pipeline) runAnalyzer(ctx context.Context, a Analyzer, f *frame.Frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return a.Analyze(ctx, f)
}

// missingPrerequisite reports the first required attribute key absent from
// the frame. Built-in representations are materialized on demand by the
// frame itself, so only attribute keys can be missing at run time (an
// upstream analyzer may have failed after registry validation passed).
func missingPrerequisite(a Analyzer, f *frame.Frame) (string, bool) {
	for _, req := range a.Requires() {
		if builtinRepresentations[req] {
			continue
		}
		if !f.HasAttribute(req) {
			return req, false
		}
	}
	return "", true
}

// Release drops any cached pixel data the source holds for imageID.
// Callers invoke it once a finished frame's attributes are persisted;
// sources without a cache ignore it.
func (p *Pipeline) Release(imageID string) {
	if ev, ok := p.source.(Evicter); ok {
		ev.Evict(imageID)
	}
}

// Contracts exposes the registry's health-surface listing.
func (p *Pipeline) Contracts() []Contract {
	return p.registry.Contracts()
}
