package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/circuitbreaker"
	infrahttp "github.com/jonesrussell/north-cloud/extracurricular/infrastructure/http"
	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/config"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/llm"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/llm/anthropic"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/llm/gemini"
)

const httpTimeoutSlack = 5 * time.Second

// NewProvider builds the raw completer selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (llm.Completer, error) {
	// Per-attempt deadlines come from llm.Resilient; the client timeout is a backstop.
	httpClient := infrahttp.NewClient(&infrahttp.ClientConfig{Timeout: cfg.Timeout + httpTimeoutSlack})

	switch cfg.Provider {
	case config.ProviderAnthropic:
		return anthropic.New(anthropic.Config{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			HTTPClient: httpClient,
		}), nil
	case config.ProviderGemini:
		client, err := gemini.New(ctx, gemini.Config{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// SetupCompleter wraps the configured provider with retries and a circuit breaker.
func SetupCompleter(ctx context.Context, cfg *config.Config, log logger.Logger) (llm.Completer, error) {
	provider, err := NewProvider(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}

	log.Info("LLM provider initialized",
		logger.String("provider", cfg.LLM.Provider),
		logger.String("model", cfg.LLM.Model),
		logger.Duration("timeout", cfg.LLM.Timeout),
		logger.Int("max_attempts", cfg.LLM.MaxAttempts),
	)

	return llm.NewResilient(provider, llm.ResilienceConfig{
		Timeout:     cfg.LLM.Timeout,
		MaxAttempts: cfg.LLM.MaxAttempts,
		Breaker:     circuitbreaker.DefaultConfig(),
	}, log.With(logger.String("provider", cfg.LLM.Provider))), nil
}
