package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnavailable = errors.New("ai provider not configured")

type GenerateOptions struct {
	MaxOutputTokens int
	Temperature     float64
}

// IProvider is one completion+embedding backend. Providers register
// themselves by name; config selects one at startup.
type IProvider interface {
	Name() string
	Generate(ctx context.Context, model string, prompt string, opts GenerateOptions) (string, error)
	EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error)
}

// IGenerator is a provider bound to a chat model and generation settings.
type IGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// IEmbedder is a provider bound to an embedding model.
type IEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}

type generator struct {
	provider IProvider
	model    string
	opts     GenerateOptions
	timeout  time.Duration
}

func NewGenerator(p IProvider, model string, opts GenerateOptions, timeout time.Duration) IGenerator {
	return &generator{provider: p, model: model, opts: opts, timeout: timeout}
}

func (g *generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	text, err := g.provider.Generate(ctx, g.model, prompt, g.opts)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty ai response")
	}
	return text, nil
}

type embedder struct {
	provider IProvider
	model    string
	timeout  time.Duration
}

func NewEmbedder(p IProvider, model string, timeout time.Duration) IEmbedder {
	return &embedder{provider: p, model: model, timeout: timeout}
}

func (e *embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	return e.provider.EmbedBatch(ctx, e.model, texts)
}

func (e *embedder) ModelName() string {
	return e.model
}

type ProviderFactory func(args interface{}) (IProvider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (IProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
