package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wordpath/wordpath-api/internal/config"
	"github.com/wordpath/wordpath-api/internal/llm"
)

// New builds an llm.Service for the configured provider.
func New(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (llm.Service, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	var gen textGenerator
	var err error
	switch cfg.Provider {
	case "openai":
		gen, err = newOpenAIGenerator(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case "gemini":
		gen, err = newGeminiGenerator(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm provider: %w", err)
	}

	return &Service{
		gen:    gen,
		retry:  newRetrier(cfg.MaxRetries, cfg.RetryDelaySeconds),
		cache:  newTranslationCache(cfg.CacheSize),
		logger: logger,
	}, nil
}
