// Package catalog defines the static composite-index catalog, the
// summarizer that rolls raw attributes into those indices, and the
// embedded canonical feature registry backing the export schema.
package catalog

import (
	"sort"

	"github.com/ironsheep/image-science/internal/frame"
)

// BinInfo describes the discrete companion field of a composite index.
type BinInfo struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

// IndexInfo is one composite-index catalog entry. Components lists the
// raw attribute keys averaged into the index; the export schema consumes
// the rest.
type IndexInfo struct {
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Bins        BinInfo  `json:"bins"`
	Tags        []string `json:"tags"`
	Components  []string `json:"components"`
}

// Bin thresholds shared by every composite index.
const (
	binLowMax = 0.33
	binMidMax = 0.66
)

// binValues is the ordinal vocabulary for every composite bin field.
var binValues = []string{"low", "mid", "high"}

// Indices is the static composite-index catalog. Keys, component lists
// and bin fields are stable identifiers consumed by downstream exports;
// changing them is a schema change.
var Indices = map[string]IndexInfo{
	"science.visual_richness": {
		Label:       "Visual richness",
		Description: "Composite index combining multi-scale texture contrast and homogeneity.",
		Type:        "float",
		Bins:        BinInfo{Field: "science.visual_richness_bin", Values: binValues},
		Tags:        []string{"composite", "candidate_bn_input"},
		Components: []string{
			"texture.micro.contrast",
			"texture.micro.homogeneity",
			"texture.macro.contrast",
			"texture.macro.homogeneity",
		},
	},
	"science.organized_complexity": {
		Label:       "Organized complexity",
		Description: "Composite index tracking edge-structure fractal dimension.",
		Type:        "float",
		Bins:        BinInfo{Field: "science.organized_complexity_bin", Values: binValues},
		Tags:        []string{"composite", "candidate_bn_input"},
		Components:  []string{"fractal.D"},
	},
}

// CandidateModelKeys returns the index keys tagged as candidate inputs
// for downstream statistical models, sorted for stable export order.
func CandidateModelKeys() []string {
	var keys []string
	for key, info := range Indices {
		for _, tag := range info.Tags {
			if tag == "candidate_bn_input" {
				keys = append(keys, key)
				break
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// Summarizer computes every catalog index over a frame's accumulated
// attributes. It runs after the analyzer tiers, inside the pipeline.
type Summarizer struct{}

// Summarize writes each composite index whose component set is at least
// partially present: the mean of the present components, clamped, plus
// the ordinal bin as a float (0 low, 1 mid, 2 high). Indices with no
// present component are omitted entirely, bin included; absence must
// stay distinguishable from a measured value.
func (Summarizer) Summarize(f *frame.Frame) {
	for key, info := range Indices {
		sum := 0.0
		n := 0
		for _, component := range info.Components {
			if v, ok := f.Attribute(component); ok {
				sum += v
				n++
			}
		}
		if n == 0 {
			continue
		}

		value := frame.Clamp01(sum / float64(n))
		f.AddAttribute(key, value, 1.0)
		// Bins are ordinals, not measurements: level 2 must not be
		// squashed into the unit interval.
		f.AddOrdinal(info.Bins.Field, Bin(value), 1.0)
	}
}

// Bin discretizes a unit-interval value into its ordinal level: 0 below
// 0.33, 1 below 0.66, 2 otherwise.
func Bin(v float64) int {
	switch {
	case v < binLowMax:
		return 0
	case v < binMidMax:
		return 1
	default:
		return 2
	}
}

// BinLabel returns the vocabulary word for an ordinal bin level.
func BinLabel(level int) string {
	if level < 0 || level >= len(binValues) {
		return ""
	}
	return binValues[level]
}
