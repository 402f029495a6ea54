package cognition

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/agent-api/core"
	"github.com/agent-api/core/agent"
	"github.com/agent-api/core/agent/bootstrap"
	"github.com/agent-api/ollama"
	"github.com/go-logr/logr"
)

// OllamaOpts configures the local vision-model engine.
type OllamaOpts struct {
	// BaseURL and Port locate the Ollama daemon ("http://localhost", 11434).
	BaseURL string
	Port    int

	// Model is the vision-capable model ID, e.g. "llama3.2-vision:11b".
	Model string

	// SystemPrompt frames every request; empty uses a fixed analysis role.
	SystemPrompt string

	// Timeout bounds each Describe call. Zero means 120s; engine calls are
	// blocking network operations and must never hang the pipeline.
	Timeout time.Duration

	Logger *slog.Logger
}

const defaultSystemPrompt = "You are a visual analysis assistant for architectural interior " +
	"photographs. Answer every request with the exact JSON shape it asks for and nothing else."

// OllamaEngine asks a locally served vision model for structured
// judgments through the agent API. It is safe for concurrent use; each
// Describe call runs on a fresh agent so no conversation memory leaks
// between frames.
type OllamaEngine struct {
	provider     *ollama.Provider
	logger       logr.Logger
	systemPrompt string
	model        string
	timeout      time.Duration
}

// NewOllamaEngine wires the provider and model. It does not probe the
// daemon: an unreachable backend surfaces per-call, where it is handled
// as a recoverable analyzer failure.
func NewOllamaEngine(ctx context.Context, opts OllamaOpts) (*OllamaEngine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	// The agent API logs through logr; bridge the pipeline's slog handler.
	lgr := logr.FromSlogHandler(logger.Handler())

	provider := ollama.NewProvider(&ollama.ProviderOpts{
		Logger:  &lgr,
		BaseURL: opts.BaseURL,
		Port:    opts.Port,
	})
	if err := provider.UseModel(ctx, &core.Model{ID: opts.Model}); err != nil {
		return nil, fmt.Errorf("failed to select model %s: %w", opts.Model, err)
	}

	systemPrompt := opts.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &OllamaEngine{
		provider:     provider,
		logger:       lgr,
		systemPrompt: systemPrompt,
		model:        opts.Model,
		timeout:      timeout,
	}, nil
}

func (*OllamaEngine) Name() string { return "ollama" }

func (e *OllamaEngine) Model() string { return e.model }

func (*OllamaEngine) Stub() bool { return false }

// Describe sends the image and prompt to the model and returns its text
// reply. The agent API attaches images by path, so the JPEG goes through
// a temporary file for the duration of the call.
func (e *OllamaEngine) Describe(ctx context.Context, jpeg []byte, prompt string) (string, error) {
	tmp, err := os.CreateTemp("", "science-engine-*.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to stage image for engine: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(jpeg); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to stage image for engine: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to stage image for engine: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	ag, err := agent.NewAgent(
		bootstrap.WithProvider(e.provider),
		bootstrap.WithSystemPrompt(e.systemPrompt),
		bootstrap.WithLogger(&e.logger),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build agent: %w", err)
	}

	agg, err := ag.Run(
		ctx,
		agent.WithInput(prompt),
		agent.WithImagePath(tmp.Name()),
	)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}
	last := agg.Pop()
	if last == nil || last.Content == "" {
		return "", fmt.Errorf("model returned no content")
	}
	return last.Content, nil
}
