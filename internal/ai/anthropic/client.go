package anthropic

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	defaultModel     = "claude-haiku-4-5-20251001"
	defaultMaxTokens = 2048
)

// Config configures the Anthropic generator.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int64
	MaxRetries int
}

// Generator sends single-turn requests to the Anthropic Messages API.
// Retries on rate limiting and server errors are handled by the SDK.
type Generator struct {
	client    sdk.Client
	model     string
	maxTokens int64
	logger    *zap.Logger
}

// NewGenerator creates a Generator backed by the official SDK.
func NewGenerator(cfg Config, logger *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(max(cfg.MaxRetries-1, 0)),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		client:    sdk.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
		logger:    logger,
	}, nil
}

// GenerateContent sends message with the given system prompt and returns the
// concatenated text blocks of the reply.
func (g *Generator) GenerateContent(ctx context.Context, systemPrompt, message string) (string, error) {
	if g == nil {
		return "", errors.New("anthropic generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("prompt must not be empty")
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(message)),
		},
	}
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		params.System = []sdk.TextBlockParam{{Text: systemPrompt}}
	}

	msg, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", eris.Wrap(err, "anthropic: create message")
	}

	g.logger.Debug("anthropic usage",
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
		zap.String("stop_reason", string(msg.StopReason)),
	)

	var builder strings.Builder
	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		text := strings.TrimSpace(block.Text)
		if text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(text)
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("anthropic api returned empty response")
	}
	return output, nil
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
