package science

import (
	"fmt"
	"sort"
)

// Registry holds the analyzers composing one pipeline, grouped by tier.
// Registration order is preserved within a tier so runs are reproducible.
// A Registry is built once during wiring and read-only afterwards; it is
// not synchronized.
type Registry struct {
	analyzers []Analyzer
	enabled   map[string]bool
	providers map[string]string // attribute key -> owning analyzer name
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		enabled:   make(map[string]bool),
		providers: make(map[string]string),
	}
}

// Register adds an analyzer in the enabled state. It rejects duplicate
// analyzer names and any provides key already claimed by an earlier
// registration, keeping attribute ownership unambiguous across the whole
// pipeline.
func (r *Registry) Register(a Analyzer) error {
	if _, exists := r.enabled[a.Name()]; exists {
		return fmt.Errorf("analyzer %q already registered", a.Name())
	}
	for _, key := range a.Provides() {
		if owner, taken := r.providers[key]; taken {
			return fmt.Errorf("attribute %q already provided by analyzer %q", key, owner)
		}
	}
	for _, key := range a.Provides() {
		r.providers[key] = a.Name()
	}
	r.analyzers = append(r.analyzers, a)
	r.enabled[a.Name()] = true
	return nil
}

// SetEnabled toggles an analyzer without removing its registration, so the
// health surface still lists it and its attribute keys stay reserved.
func (r *Registry) SetEnabled(name string, enabled bool) error {
	if _, exists := r.enabled[name]; !exists {
		return fmt.Errorf("unknown analyzer %q", name)
	}
	r.enabled[name] = enabled
	return nil
}

// Enabled returns the enabled analyzers in execution order: ascending
// tier, registration order within a tier.
func (r *Registry) Enabled() []Analyzer {
	out := make([]Analyzer, 0, len(r.analyzers))
	for _, a := range r.analyzers {
		if r.enabled[a.Name()] {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Tier() < out[j].Tier()
	})
	return out
}

// Validate checks that every enabled analyzer's prerequisites are
// satisfiable: each Requires entry must be a built-in representation or an
// attribute key provided by an enabled analyzer of a strictly lower tier.
// It is called once after wiring; a registry that validates cannot skip an
// analyzer for a structurally missing prerequisite at run time.
func (r *Registry) Validate() error {
	ownerTier := make(map[string]Tier, len(r.providers))
	for _, a := range r.analyzers {
		if !r.enabled[a.Name()] {
			continue
		}
		for _, key := range a.Provides() {
			ownerTier[key] = a.Tier()
		}
	}
	for _, a := range r.analyzers {
		if !r.enabled[a.Name()] {
			continue
		}
		for _, req := range a.Requires() {
			if builtinRepresentations[req] {
				continue
			}
			tier, provided := ownerTier[req]
			if !provided {
				return fmt.Errorf("analyzer %q requires %q, which no enabled analyzer provides", a.Name(), req)
			}
			if tier >= a.Tier() {
				return fmt.Errorf("analyzer %q (tier %s) requires %q from tier %s; prerequisites must come from a lower tier",
					a.Name(), a.Tier(), req, tier)
			}
		}
	}
	return nil
}

// Contracts returns the health-surface listing for every registered
// analyzer, enabled or not, in execution order.
func (r *Registry) Contracts() []Contract {
	ordered := make([]Analyzer, len(r.analyzers))
	copy(ordered, r.analyzers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Tier() < ordered[j].Tier()
	})

	out := make([]Contract, 0, len(ordered))
	for _, a := range ordered {
		out = append(out, Contract{
			Name:     a.Name(),
			Tier:     a.Tier().String(),
			Requires: a.Requires(),
			Provides: a.Provides(),
			Enabled:  r.enabled[a.Name()],
		})
	}
	return out
}
