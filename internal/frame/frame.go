// Package frame holds the per-image unit of analysis: the raw pixel buffer,
// lazily computed derived representations (grayscale, L*a*b*, edge mask,
// optional depth), and the attribute map analyzers accumulate into.
//
// A Frame is created once per image at pipeline entry, mutated in place by
// successive analyzers, handed to persistence, and discarded. It is NOT safe
// for concurrent use: analyzers within one pipeline run execute sequentially
// against the same Frame. Independent images get independent Frames.
package frame

import (
	"image"
	"math"

	"github.com/ironsheep/image-science/internal/imaging"
)

// Canonical Canny thresholds for the shared edge representation. Every
// edge-derived attribute in the pipeline is computed from the same mask, so
// these never vary per call.
const (
	EdgeThresholdLow  = 50
	EdgeThresholdHigh = 150
)

// ErrorKeyPrefix prefixes the metadata keys that record per-analyzer
// failures ("science_error.<analyzer>").
const ErrorKeyPrefix = "science_error."

// Annotation carries the per-key bookkeeping stored alongside an attribute
// value: measurement confidence, provenance of the writer (empty for the
// deterministic numeric analyzers), and a free-form note used by failure
// flags and engine status records.
type Annotation struct {
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// Frame is the in-memory unit of analysis for one image.
type Frame struct {
	id  string
	img *image.NRGBA

	gray  [][]float64
	lab   [][]imaging.LabColor
	edges [][]bool
	depth [][]float64

	attrs map[string]float64
	meta  map[string]Annotation
}

// New creates a Frame for the given image identifier and pixel buffer.
func New(id string, img *image.NRGBA) *Frame {
	return &Frame{
		id:    id,
		img:   img,
		attrs: make(map[string]float64),
		meta:  make(map[string]Annotation),
	}
}

// ID returns the image identifier the Frame was created for.
func (f *Frame) ID() string { return f.id }

// Image returns the raw pixel buffer. Callers must treat it as immutable.
func (f *Frame) Image() *image.NRGBA { return f.img }

// Width returns the pixel width of the underlying image.
func (f *Frame) Width() int { return f.img.Bounds().Dx() }

// Height returns the pixel height of the underlying image.
func (f *Frame) Height() int { return f.img.Bounds().Dy() }

// Gray returns the BT.601 luminance plane, computing and caching it on
// first use. Subsequent calls return the same slice.
func (f *Frame) Gray() [][]float64 {
	if f.gray == nil {
		f.gray = imaging.Grayscale(f.img)
	}
	return f.gray
}

// Lab returns the CIE L*a*b* plane, computing and caching it on first use.
func (f *Frame) Lab() [][]imaging.LabColor {
	if f.lab == nil {
		f.lab = imaging.LabImage(f.img)
	}
	return f.lab
}

// Edges returns the binary Canny edge mask at the canonical thresholds,
// computing and caching it on first use.
func (f *Frame) Edges() [][]bool {
	if f.edges == nil {
		f.edges = imaging.CannyEdges(f.Gray(), EdgeThresholdLow, EdgeThresholdHigh)
	}
	return f.edges
}

// SetDepth installs a depth plane produced by an external estimator.
func (f *Frame) SetDepth(depth [][]float64) { f.depth = depth }

// Depth returns the depth plane and whether one has been installed.
func (f *Frame) Depth() ([][]float64, bool) {
	return f.depth, f.depth != nil
}

// AddAttribute stores a bounded scalar under a dotted-namespace key.
//
// Values are sanitized before storage: non-finite inputs become 0, then the
// result is clamped to [0,1]. Confidence receives the same treatment. The
// call never panics; writing the same key twice replaces the earlier value,
// and cross-analyzer key collisions are prevented structurally by registry
// validation rather than here.
func (f *Frame) AddAttribute(key string, value, confidence float64) {
	f.attrs[key] = Sanitize(value)
	f.meta[key] = Annotation{Confidence: Sanitize(confidence)}
}

// AddOrdinal stores a discrete level under key without the unit-interval
// clamp. Ordinal companion fields (composite bins) use small integer
// vocabularies whose upper levels must survive storage intact; only
// measurements pass through Sanitize.
func (f *Frame) AddOrdinal(key string, level int, confidence float64) {
	f.attrs[key] = float64(level)
	f.meta[key] = Annotation{Confidence: Sanitize(confidence)}
}

// AddAttributeSourced is AddAttribute with an explicit provenance tag,
// used by analyzers that write externally-derived values so persistence can
// distinguish their origin.
func (f *Frame) AddAttributeSourced(key string, value, confidence float64, source string) {
	f.attrs[key] = Sanitize(value)
	f.meta[key] = Annotation{Confidence: Sanitize(confidence), Source: source}
}

// Attribute returns the stored value for key and whether it is present.
func (f *Frame) Attribute(key string) (float64, bool) {
	v, ok := f.attrs[key]
	return v, ok
}

// HasAttribute reports whether key has been stored.
func (f *Frame) HasAttribute(key string) bool {
	_, ok := f.attrs[key]
	return ok
}

// Attributes returns a copy of the accumulated attribute map.
func (f *Frame) Attributes() map[string]float64 {
	out := make(map[string]float64, len(f.attrs))
	for k, v := range f.attrs {
		out[k] = v
	}
	return out
}

// Annotations returns a copy of the per-key metadata, failure flags
// included.
func (f *Frame) Annotations() map[string]Annotation {
	out := make(map[string]Annotation, len(f.meta))
	for k, v := range f.meta {
		out[k] = v
	}
	return out
}

// SetNote records free-form metadata (engine status, skip reasons) without
// touching the attribute map.
func (f *Frame) SetNote(key string, ann Annotation) {
	f.meta[key] = ann
}

// Fail records a non-fatal analyzer failure as a metadata flag. It never
// removes attributes the analyzer may have written before failing.
func (f *Frame) Fail(analyzer, reason string) {
	f.meta[ErrorKeyPrefix+analyzer] = Annotation{Note: reason}
}

// Failure returns the recorded failure reason for an analyzer, if any.
func (f *Frame) Failure(analyzer string) (string, bool) {
	ann, ok := f.meta[ErrorKeyPrefix+analyzer]
	if !ok {
		return "", false
	}
	return ann.Note, true
}

// Clamp01 bounds v to the unit interval.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Sanitize maps non-finite values to 0 and clamps the rest to [0,1]. All
// attribute writes funnel through this so the finiteness/bounds invariant
// holds structurally.
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return Clamp01(v)
}
