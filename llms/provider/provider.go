// Package provider builds an llms.Model from the run configuration.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/sevigo/stairreg/config"
	"github.com/sevigo/stairreg/llms"
	"github.com/sevigo/stairreg/llms/anthropic"
	"github.com/sevigo/stairreg/llms/gemini"
	"github.com/sevigo/stairreg/llms/ollama"
	"github.com/sevigo/stairreg/llms/openai"
)

// ErrProviderNotFound is returned for a provider name nobody registered.
var ErrProviderNotFound = errors.New("provider: not found")

// Factory constructs a model from the LLM section of the configuration.
type Factory func(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (llms.Model, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{
		config.ProviderOpenAI:    newOpenAI,
		config.ProviderAnthropic: newAnthropic,
		config.ProviderGemini:    newGemini,
		config.ProviderOllama:    newOllama,
	}
)

// Register adds or replaces the factory for name.
func Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("provider: name must not be empty")
	}
	if factory == nil {
		return errors.New("provider: cannot register nil factory")
	}

	mu.Lock()
	defer mu.Unlock()
	factories[name] = factory
	return nil
}

// Names returns the registered provider names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New builds the model selected by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (llms.Model, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mu.RLock()
	factory, ok := factories[cfg.Provider]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, cfg.Provider)
	}

	model, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create %s model: %w", cfg.Provider, err)
	}
	logger.Debug("LLM provider ready", "provider", cfg.Provider, "model", cfg.Model)
	return model, nil
}

func newOpenAI(_ context.Context, cfg config.LLMConfig, logger *slog.Logger) (llms.Model, error) {
	return openai.New(
		openai.WithAPIKey(cfg.APIKey),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithTimeout(cfg.Timeout),
		openai.WithMaxRetries(cfg.MaxRetries),
		openai.WithLogger(logger),
	)
}

func newAnthropic(_ context.Context, cfg config.LLMConfig, logger *slog.Logger) (llms.Model, error) {
	return anthropic.New(
		anthropic.WithAPIKey(cfg.APIKey),
		anthropic.WithBaseURL(cfg.BaseURL),
		anthropic.WithModel(cfg.Model),
		anthropic.WithTimeout(cfg.Timeout),
		anthropic.WithMaxRetries(cfg.MaxRetries),
		anthropic.WithLogger(logger),
	)
}

func newGemini(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (llms.Model, error) {
	return gemini.New(ctx,
		gemini.WithAPIKey(cfg.APIKey),
		gemini.WithBaseURL(cfg.BaseURL),
		gemini.WithModel(cfg.Model),
		gemini.WithTimeout(cfg.Timeout),
		gemini.WithMaxRetries(cfg.MaxRetries),
		gemini.WithLogger(logger),
	)
}

func newOllama(_ context.Context, cfg config.LLMConfig, logger *slog.Logger) (llms.Model, error) {
	return ollama.New(
		ollama.WithModel(cfg.Model),
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithTimeout(cfg.Timeout),
		ollama.WithMaxRetries(cfg.MaxRetries),
		ollama.WithLogger(logger),
	)
}
