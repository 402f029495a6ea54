package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/ironsheep/image-science/internal/catalog"
	"github.com/ironsheep/image-science/internal/cognition"
	"github.com/ironsheep/image-science/internal/config"
	"github.com/ironsheep/image-science/internal/imaging"
	"github.com/ironsheep/image-science/internal/metrics"
	"github.com/ironsheep/image-science/internal/science"
	"github.com/ironsheep/image-science/internal/server"
	"github.com/ironsheep/image-science/internal/spatial"
	"github.com/ironsheep/image-science/internal/store"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and --help before flag parsing
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("image-science %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("image-science - analysis pipeline for architectural interior photographs")
			fmt.Println()
			fmt.Println("Usage: image-science [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  -config <path>   Load YAML configuration from <path>")
			fmt.Println("  -analyze <path>  Analyze a single image and print its attributes")
			fmt.Println("  -batch <dir>     Analyze every image in <dir> and print the job result")
			fmt.Println("  -health          Print analyzer contracts and engine status")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  IMAGE_SCIENCE_DB_PATH          Override the SQLite database path")
			fmt.Println("  IMAGE_SCIENCE_ENGINE_PROVIDER  Override the cognition engine (stub|ollama)")
			fmt.Println("  IMAGE_SCIENCE_LOG_LEVEL=debug  Enable debug logging")
			fmt.Println()
			fmt.Println("With no mode flag the server communicates via MCP protocol over")
			fmt.Println("stdin/stdout. Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	configPath := flag.String("config", "", "path to YAML configuration file")
	analyzePath := flag.String("analyze", "", "analyze one image and print its attributes")
	batchDir := flag.String("batch", "", "analyze every image in a directory")
	health := flag.Bool("health", false, "print analyzer contracts and engine status")
	flag.Parse()

	// Logging goes to stderr; stdout is reserved for MCP protocol and
	// one-shot JSON output.
	level := slog.LevelInfo
	if os.Getenv("IMAGE_SCIENCE_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}),
	)
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.store.Close()

	switch {
	case *analyzePath != "":
		err = runAnalyze(ctx, app, *analyzePath)
	case *batchDir != "":
		err = runBatch(ctx, app, *batchDir)
	case *health:
		err = runHealth(app)
	default:
		logger.Debug("image-science server starting",
			"version", Version, "build_time", BuildTime, "commit", GitCommit)
		err = app.server.Run(ctx)
	}
	if err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// app holds the wired components shared by all run modes.
type app struct {
	store    *store.Store
	pipeline *science.Pipeline
	batch    *science.Batch
	server   *server.Server
	engine   server.EngineInfo
	depth    bool
}

func buildApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	engine, err := buildEngine(ctx, cfg.Engine, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}

	var estimator spatial.Estimator
	if cfg.Depth.ModelPath != "" {
		estimator, err = spatial.NewONNXEstimator(spatial.ONNXConfig{
			ModelPath:   cfg.Depth.ModelPath,
			LibraryPath: cfg.Depth.LibraryPath,
			InputName:   cfg.Depth.InputName,
			OutputName:  cfg.Depth.OutputName,
		})
		if err != nil {
			if errors.Is(err, spatial.ErrDepthUnavailable) {
				logger.Warn("depth estimation unavailable, using edge heuristics", "error", err)
			} else {
				st.Close()
				return nil, fmt.Errorf("failed to load depth model: %w", err)
			}
		}
	}

	registry, err := buildRegistry(cfg, engine, st, estimator)
	if err != nil {
		st.Close()
		return nil, err
	}

	pipeline, err := science.NewPipeline(science.PipelineConfig{
		Registry:  registry,
		Source:    imaging.NewFileSource(),
		Persister: st,
		Logger:    logger,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	batch := science.NewBatch(pipeline, st, cfg.Batch.Workers, logger)

	engineInfo := server.EngineInfo{
		Name:  engine.Name(),
		Model: engine.Model(),
		Stub:  engine.Stub(),
	}
	srv, err := server.New(server.Config{
		Pipeline:       pipeline,
		Batch:          batch,
		Store:          st,
		Engine:         engineInfo,
		DepthAvailable: estimator != nil,
		Logger:         logger,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		store:    st,
		pipeline: pipeline,
		batch:    batch,
		server:   srv,
		engine:   engineInfo,
		depth:    estimator != nil,
	}, nil
}

func buildEngine(ctx context.Context, cfg config.EngineConfig, logger *slog.Logger) (cognition.Engine, error) {
	if cfg.Provider == "ollama" {
		return cognition.NewOllamaEngine(ctx, cognition.OllamaOpts{
			BaseURL:      cfg.BaseURL,
			Port:         cfg.Port,
			Model:        cfg.Model,
			SystemPrompt: cfg.SystemPrompt,
			Timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
			Logger:       logger,
		})
	}
	return cognition.StubEngine{}, nil
}

func buildRegistry(cfg config.Config, engine cognition.Engine, ledger cognition.CostLedger, estimator spatial.Estimator) (*science.Registry, error) {
	registry := science.NewRegistry()

	cost := cfg.Engine.CostPerCallUSD
	analyzers := []science.Analyzer{
		&metrics.ColorAnalyzer{},
		&metrics.ComplexityAnalyzer{},
		&metrics.TextureAnalyzer{},
		&metrics.FractalAnalyzer{},
		&metrics.FrequencyAnalyzer{},
		&metrics.RegionalFrequencyAnalyzer{},
		&metrics.SymmetryAnalyzer{},
		&metrics.NaturalnessAnalyzer{},
		spatial.NewAnalyzer(estimator),
		&metrics.FluencyAnalyzer{},
		cognition.NewCognitiveAnalyzer(engine, ledger, cost),
		cognition.NewSemanticTagAnalyzer(engine, ledger, cost),
		cognition.NewArchPatternsAnalyzer(engine, ledger, cost),
	}
	for _, a := range analyzers {
		if err := registry.Register(a); err != nil {
			return nil, fmt.Errorf("failed to register analyzer: %w", err)
		}
	}

	toggles := map[string]bool{
		"color":                      cfg.Analyzers.Color,
		"complexity":                 cfg.Analyzers.Complexity,
		"texture":                    cfg.Analyzers.Texture,
		"fractal":                    cfg.Analyzers.Fractal,
		"spatial_frequency":          cfg.Analyzers.Frequency,
		"regional_spatial_frequency": cfg.Analyzers.RegionalFrequency,
		"symmetry":                   cfg.Analyzers.Symmetry,
		"naturalness":                cfg.Analyzers.Naturalness,
		"spatial":                    cfg.Analyzers.Spatial,
		"fluency":                    cfg.Analyzers.Fluency,
		"cognitive":                  cfg.Analyzers.Cognitive,
		"semantic_tags":              cfg.Analyzers.SemanticTags,
		"arch_patterns":              cfg.Analyzers.ArchPatterns,
	}
	for name, enabled := range toggles {
		if err := registry.SetEnabled(name, enabled); err != nil {
			return nil, fmt.Errorf("failed to configure analyzer: %w", err)
		}
	}
	return registry, nil
}

func runAnalyze(ctx context.Context, a *app, path string) error {
	f, err := a.pipeline.Process(ctx, path)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"image_id":    path,
		"attributes":  f.Attributes(),
		"annotations": f.Annotations(),
	})
}

func runBatch(ctx context.Context, a *app, dir string) error {
	paths, err := science.CollectImages(dir)
	if err != nil {
		return err
	}
	jobID, err := a.batch.Run(ctx, paths)
	if err != nil {
		return err
	}
	job, err := a.store.Job(ctx, jobID)
	if err != nil {
		return err
	}
	return printJSON(job)
}

func runHealth(a *app) error {
	return printJSON(map[string]any{
		"analyzers":       a.pipeline.Contracts(),
		"engine":          a.engine,
		"depth_available": a.depth,
		"indices":         catalog.Indices,
	})
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
