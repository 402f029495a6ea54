// Package config loads the pipeline configuration: a YAML file merged
// over defaults, then IMAGE_SCIENCE_* environment overrides for paths and
// connection settings.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the complete pipeline configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Engine    EngineConfig    `yaml:"engine"`
	Depth     DepthConfig     `yaml:"depth"`
	Batch     BatchConfig     `yaml:"batch"`
	Analyzers AnalyzersConfig `yaml:"analyzers"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// EngineConfig configures the external-cognition engine. Provider "stub"
// keeps the pipeline network-free; "ollama" talks to a local vision model.
type EngineConfig struct {
	Provider       string  `yaml:"provider"` // "stub" or "ollama"
	BaseURL        string  `yaml:"base_url"`
	Port           int     `yaml:"port"`
	Model          string  `yaml:"model"`
	SystemPrompt   string  `yaml:"system_prompt"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	CostPerCallUSD float64 `yaml:"cost_per_call_usd"`
}

// DepthConfig configures the optional ONNX monocular depth estimator.
// Empty ModelPath disables depth entirely.
type DepthConfig struct {
	ModelPath   string `yaml:"model_path"`
	LibraryPath string `yaml:"library_path"`
	InputName   string `yaml:"input_name"`
	OutputName  string `yaml:"output_name"`
}

// BatchConfig tunes the batch runner.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// AnalyzersConfig toggles individual analyzers. The deterministic tiers
// default on; the engine-backed analyzers are explicit opt-ins because
// each frame costs a model call.
type AnalyzersConfig struct {
	Color             bool `yaml:"color"`
	Complexity        bool `yaml:"complexity"`
	Texture           bool `yaml:"texture"`
	Fractal           bool `yaml:"fractal"`
	Frequency         bool `yaml:"frequency"`
	RegionalFrequency bool `yaml:"regional_frequency"`
	Symmetry          bool `yaml:"symmetry"`
	Naturalness       bool `yaml:"naturalness"`
	Spatial           bool `yaml:"spatial"`
	Fluency           bool `yaml:"fluency"`
	Cognitive         bool `yaml:"cognitive"`
	SemanticTags      bool `yaml:"semantic_tags"`
	ArchPatterns      bool `yaml:"arch_patterns"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Path: "data/image-science.db",
		},
		Engine: EngineConfig{
			Provider:       "stub",
			BaseURL:        "http://localhost",
			Port:           11434,
			Model:          "llama3.2-vision:11b",
			TimeoutSeconds: 120,
		},
		Depth: DepthConfig{
			InputName:  "image",
			OutputName: "depth",
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Analyzers: AnalyzersConfig{
			Color:             true,
			Complexity:        true,
			Texture:           true,
			Fractal:           true,
			Frequency:         true,
			RegionalFrequency: true,
			Symmetry:          true,
			Naturalness:       true,
			Spatial:           true,
			Fluency:           true,
		},
	}
}

// Load reads a YAML file over the defaults and applies environment
// overrides. An empty path skips the file and returns defaults plus
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv layers IMAGE_SCIENCE_* variables over the file values, so
// deployment paths and endpoints never have to live in the YAML.
func applyEnv(cfg *Config) {
	if v := os.Getenv("IMAGE_SCIENCE_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("IMAGE_SCIENCE_ENGINE_PROVIDER"); v != "" {
		cfg.Engine.Provider = v
	}
	if v := os.Getenv("IMAGE_SCIENCE_ENGINE_BASE_URL"); v != "" {
		cfg.Engine.BaseURL = v
	}
	if v := os.Getenv("IMAGE_SCIENCE_ENGINE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Engine.Port = port
		}
	}
	if v := os.Getenv("IMAGE_SCIENCE_ENGINE_MODEL"); v != "" {
		cfg.Engine.Model = v
	}
	if v := os.Getenv("IMAGE_SCIENCE_DEPTH_MODEL"); v != "" {
		cfg.Depth.ModelPath = v
	}
	if v := os.Getenv("IMAGE_SCIENCE_DEPTH_LIBRARY"); v != "" {
		cfg.Depth.LibraryPath = v
	}
	if v := os.Getenv("IMAGE_SCIENCE_BATCH_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil {
			cfg.Batch.Workers = workers
		}
	}
}

func (c *Config) validate() error {
	switch c.Engine.Provider {
	case "stub", "ollama":
	default:
		return fmt.Errorf("unknown engine provider %q", c.Engine.Provider)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch workers must be at least 1, got %d", c.Batch.Workers)
	}
	if c.Engine.TimeoutSeconds < 1 {
		return fmt.Errorf("engine timeout must be at least 1s, got %d", c.Engine.TimeoutSeconds)
	}
	return nil
}
