package science

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"testing"

	"github.com/ironsheep/image-science/internal/frame"
)

// memSource serves pre-decoded buffers by id; unknown ids fail like a
// missing file would.
type memSource struct {
	images map[string]*image.NRGBA
}

func (s *memSource) Resolve(id string) (*image.NRGBA, error) {
	img, ok := s.images[id]
	if !ok {
		return nil, fmt.Errorf("no such image: %s", id)
	}
	return img, nil
}

// recordingPersister captures what the pipeline hands to persistence.
type recordingPersister struct {
	imageID string
	attrs   map[string]float64
	anns    map[string]frame.Annotation
	err     error
}

func (p *recordingPersister) SaveAttributes(ctx context.Context, imageID string, attrs map[string]float64, anns map[string]frame.Annotation) error {
	if p.err != nil {
		return p.err
	}
	p.imageID = imageID
	p.attrs = attrs
	p.anns = anns
	return nil
}

func testSource() *memSource {
	return &memSource{images: map[string]*image.NRGBA{
		"img-1": image.NewNRGBA(image.Rect(0, 0, 16, 16)),
	}}
}

func newTestPipeline(t *testing.T, analyzers []Analyzer, persister Persister) *Pipeline {
	t.Helper()
	r := NewRegistry()
	for _, a := range analyzers {
		if err := r.Register(a); err != nil {
			t.Fatalf("register %s: %v", a.Name(), err)
		}
	}
	p, err := NewPipeline(PipelineConfig{Registry: r, Source: testSource(), Persister: persister})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func TestProcessIsolatesPanics(t *testing.T) {
	p := newTestPipeline(t, []Analyzer{
		&fakeAnalyzer{
			name: "bomber", tier: TierPerceptual, provides: []string{"bomber.out"},
			analyze: func(ctx context.Context, f *frame.Frame) error {
				panic("index out of range")
			},
		},
		&fakeAnalyzer{
			name: "survivor", tier: TierPerceptual, provides: []string{"survivor.out"},
			analyze: func(ctx context.Context, f *frame.Frame) error {
				f.AddAttribute("survivor.out", 0.5, 1.0)
				return nil
			},
		},
	}, nil)

	f, err := p.Process(context.Background(), "img-1")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	reason, failed := f.Failure("bomber")
	if !failed {
		t.Fatal("panicking analyzer not flagged")
	}
	if !strings.Contains(reason, "panic") {
		t.Errorf("failure reason = %q, want a panic note", reason)
	}
	if f.HasAttribute("bomber.out") {
		t.Error("panicking analyzer left an attribute")
	}
	if !f.HasAttribute("survivor.out") {
		t.Error("sibling analyzer did not run after the panic")
	}
}

func TestProcessIsolatesErrors(t *testing.T) {
	p := newTestPipeline(t, []Analyzer{
		&fakeAnalyzer{
			name: "flaky", tier: TierPerceptual, provides: []string{"flaky.out"},
			analyze: func(ctx context.Context, f *frame.Frame) error {
				return errors.New("engine unreachable")
			},
		},
	}, nil)

	f, err := p.Process(context.Background(), "img-1")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if reason, ok := f.Failure("flaky"); !ok || reason != "engine unreachable" {
		t.Errorf("failure = %q, %v", reason, ok)
	}
}

func TestProcessSkipsOnMissingPrerequisite(t *testing.T) {
	// The upstream provider is registered (so validation passes) but fails
	// at run time, leaving its attribute unwritten.
	p := newTestPipeline(t, []Analyzer{
		&fakeAnalyzer{
			name: "upstream", tier: TierPerceptual, provides: []string{"up.out"},
			analyze: func(ctx context.Context, f *frame.Frame) error {
				return errors.New("boom")
			},
		},
		&fakeAnalyzer{
			name: "downstream", tier: TierDerived,
			requires: []string{"up.out"}, provides: []string{"down.out"},
			analyze: func(ctx context.Context, f *frame.Frame) error {
				f.AddAttribute("down.out", 1.0, 1.0)
				return nil
			},
		},
	}, nil)

	f, err := p.Process(context.Background(), "img-1")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	reason, skipped := f.Failure("downstream")
	if !skipped {
		t.Fatal("dependent analyzer not flagged")
	}
	if !strings.Contains(reason, "up.out") {
		t.Errorf("skip reason = %q, want it to name the missing key", reason)
	}
	if f.HasAttribute("down.out") {
		t.Error("skipped analyzer still wrote its attribute")
	}
}

func TestProcessLoadFailure(t *testing.T) {
	p := newTestPipeline(t, []Analyzer{
		&fakeAnalyzer{name: "noop", tier: TierPerceptual, provides: []string{"noop.out"}},
	}, nil)

	if _, err := p.Process(context.Background(), "missing-image"); err == nil {
		t.Fatal("unknown image did not error")
	}
}

func TestProcessSummarizesAndPersists(t *testing.T) {
	persister := &recordingPersister{}
	p := newTestPipeline(t, []Analyzer{
		&fakeAnalyzer{
			name: "fractal-ish", tier: TierPerceptual, provides: []string{"fractal.D"},
			analyze: func(ctx context.Context, f *frame.Frame) error {
				f.AddAttribute("fractal.D", 0.9, 1.0)
				return nil
			},
		},
	}, persister)

	f, err := p.Process(context.Background(), "img-1")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if v, ok := f.Attribute("science.organized_complexity"); !ok || v != 0.9 {
		t.Errorf("composite = %v, %v; want 0.9 present", v, ok)
	}
	if v, ok := f.Attribute("science.organized_complexity_bin"); !ok || v != 2 {
		t.Errorf("composite bin = %v, %v; want 2", v, ok)
	}

	if persister.imageID != "img-1" {
		t.Fatalf("persisted image id = %q", persister.imageID)
	}
	if _, ok := persister.attrs["science.organized_complexity"]; !ok {
		t.Error("composite not included in persisted attributes")
	}
}

func TestProcessPersistFailureSurfaces(t *testing.T) {
	persister := &recordingPersister{err: errors.New("disk full")}
	p := newTestPipeline(t, []Analyzer{
		&fakeAnalyzer{name: "noop", tier: TierPerceptual, provides: []string{"noop.out"}},
	}, persister)

	if _, err := p.Process(context.Background(), "img-1"); err == nil {
		t.Fatal("persist failure swallowed")
	}
}

func TestNewPipelineValidatesRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeAnalyzer{
		name: "broken", tier: TierPerceptual,
		requires: []string{"ghost.key"}, provides: []string{"broken.out"},
	})
	if _, err := NewPipeline(PipelineConfig{Registry: r, Source: testSource()}); err == nil {
		t.Fatal("invalid registry accepted")
	}
}
