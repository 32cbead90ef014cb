package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/lead-scorer/internal/ai"
	"github.com/spigell/lead-scorer/internal/ai/anthropic"
	"github.com/spigell/lead-scorer/internal/ai/gemini"
	"github.com/spigell/lead-scorer/internal/logger"
	"github.com/spigell/lead-scorer/internal/scoring"
	"github.com/spigell/lead-scorer/internal/secrets"
)

const (
	providerGemini    = "gemini"
	providerAnthropic = "anthropic"
)

// newClassifier builds the intent classifier for the configured provider. A
// missing API key is an error so that startup aborts.
func newClassifier(ctx context.Context, cfg AIConfig, log *zap.Logger) (ai.Classifier, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider == "" {
		provider = providerGemini
	}

	var generator ai.Generator
	switch provider {
	case providerGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  cfg.Gemini.APIKeyFile,
			Value: cfg.Gemini.APIKey,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}

		genLogger := logger.WithCommonFields(log, provider, cfg.Gemini.Model).
			With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

		generator, err = gemini.NewGenerator(ctx, gemini.Config{
			APIKey:     apiKey,
			Model:      cfg.Gemini.Model,
			BaseURL:    cfg.Gemini.BaseURL,
			MaxRetries: cfg.Gemini.MaxRetries,
		}, genLogger)
		if err != nil {
			return nil, err
		}

	case providerAnthropic:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "anthropic api key",
			File:  cfg.Anthropic.APIKeyFile,
			Value: cfg.Anthropic.APIKey,
			Env:   "ANTHROPIC_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.anthropic.api-key-file or ANTHROPIC_API_KEY_FILE)", err)
		}

		generator, err = anthropic.NewGenerator(anthropic.Config{
			APIKey:     apiKey,
			Model:      cfg.Anthropic.Model,
			BaseURL:    cfg.Anthropic.BaseURL,
			MaxTokens:  cfg.Anthropic.MaxTokens,
			MaxRetries: cfg.Anthropic.MaxRetries,
		}, logger.WithCommonFields(log, provider, cfg.Anthropic.Model))
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	return ai.NewLLMClassifier(generator, provider, cfg.MaxLogLength, log), nil
}

func newScorer(classifier ai.Classifier, cfg ScoringConfig, log *zap.Logger) *scoring.Scorer {
	return scoring.New(classifier, scoring.Options{
		BatchSize:      cfg.BatchSize,
		Concurrency:    cfg.Concurrency,
		RateLimit:      cfg.RateLimit,
		RequestTimeout: cfg.RequestTimeout,
	}, log)
}
