package catalog

import (
	"bufio"
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed features_canonical.jsonl
var featuresData embed.FS

// FeatureDefinition is one row of the canonical feature registry: the
// self-describing metadata for an attribute key the pipeline can produce.
type FeatureDefinition struct {
	Key         string `json:"key"`
	Category    string `json:"category"`
	Tier        string `json:"tier"`
	Label       string `json:"label"`
	Status      string `json:"status"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

var (
	featuresOnce sync.Once
	features     []FeatureDefinition
	featuresErr  error
)

// loadFeatures parses the embedded JSONL once per process. The registry
// is compiled into the binary, so a parse failure is a build defect and
// surfaces on first use.
func loadFeatures() ([]FeatureDefinition, error) {
	featuresOnce.Do(func() {
		raw, err := featuresData.ReadFile("features_canonical.jsonl")
		if err != nil {
			featuresErr = fmt.Errorf("failed to read embedded feature registry: %w", err)
			return
		}

		scanner := bufio.NewScanner(bytes.NewReader(raw))
		line := 0
		for scanner.Scan() {
			line++
			text := bytes.TrimSpace(scanner.Bytes())
			if len(text) == 0 {
				continue
			}
			var def FeatureDefinition
			if err := json.Unmarshal(text, &def); err != nil {
				featuresErr = fmt.Errorf("feature registry line %d: %w", line, err)
				return
			}
			features = append(features, def)
		}
		featuresErr = scanner.Err()
	})
	return features, featuresErr
}

// Filter narrows a feature listing. Empty fields match everything.
type Filter struct {
	Tier     string
	Category string
	Status   string
}

// ListFeatures returns the registry rows matching the filter, in file
// order.
func ListFeatures(filter Filter) ([]FeatureDefinition, error) {
	all, err := loadFeatures()
	if err != nil {
		return nil, err
	}

	out := make([]FeatureDefinition, 0, len(all))
	for _, def := range all {
		if filter.Tier != "" && def.Tier != filter.Tier {
			continue
		}
		if filter.Category != "" && def.Category != filter.Category {
			continue
		}
		if filter.Status != "" && def.Status != filter.Status {
			continue
		}
		out = append(out, def)
	}
	return out, nil
}

// Feature looks up a single registry row by attribute key.
func Feature(key string) (FeatureDefinition, bool) {
	all, err := loadFeatures()
	if err != nil {
		return FeatureDefinition{}, false
	}
	for _, def := range all {
		if def.Key == key {
			return def, true
		}
	}
	return FeatureDefinition{}, false
}
