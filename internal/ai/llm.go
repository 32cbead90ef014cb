package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/lead-scorer/internal/leads"
	"github.com/spigell/lead-scorer/internal/logger"
	"github.com/spigell/lead-scorer/internal/utils"
)

// Generator is a provider-specific text generation backend.
type Generator interface {
	GenerateContent(ctx context.Context, systemPrompt, message string) (string, error)
	Model() string
}

// LLMClassifier classifies lead batches by prompting a language model and
// validating the JSON it answers with.
type LLMClassifier struct {
	generator Generator
	provider  string
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const (
	systemPrompt = "You qualify B2B sales leads. Answer with JSON only, no prose and no markdown."

	defaultMaxLogLength = 200
)

// NewLLMClassifier wires generator into a Classifier. provider is only used
// for logging and error reporting.
func NewLLMClassifier(generator Generator, provider string, maxLogLength int, log *zap.Logger) *LLMClassifier {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &LLMClassifier{
		generator: generator,
		provider:  provider,
		logger:    logger.WithCommonFields(log, provider, generator.Model()),
		maxLogLen: maxLogLength,
	}
}

// Classify implements Classifier.
func (c *LLMClassifier) Classify(ctx context.Context, batch []leads.Lead, offer leads.Offer) ([]IntentResult, error) {
	if len(batch) == 0 {
		return nil, c.fail("empty batch", nil)
	}

	prompt, err := buildPrompt(batch, offer)
	if err != nil {
		return nil, c.fail("build prompt", err)
	}

	c.logger.Debug("generate content request",
		zap.Int("leads", len(batch)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
	)

	raw, err := c.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, c.fail("request", err)
	}

	c.logger.Debug("generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
	)

	parsed, err := parseResponse(raw)
	if err != nil {
		return nil, c.fail("unparseable response", err)
	}

	results, err := ValidateResults(batch, parsed)
	if err != nil {
		return nil, c.fail("invalid response", err)
	}

	return results, nil
}

func (c *LLMClassifier) fail(reason string, err error) error {
	return &ClassificationError{Provider: c.provider, Reason: reason, Err: err}
}

func buildPrompt(batch []leads.Lead, offer leads.Offer) (string, error) {
	var prospects strings.Builder
	for i, lead := range batch {
		payload, err := json.Marshal(lead)
		if err != nil {
			return "", fmt.Errorf("marshal lead %q: %w", lead.Name, err)
		}
		if i > 0 {
			prospects.WriteString("\n")
		}
		fmt.Fprintf(&prospects, "%d. %s", i+1, payload)
	}

	prompt := strings.NewReplacer(
		"{{OFFER_NAME}}", offer.Name,
		"{{VALUE_PROPS}}", strings.Join(offer.ValueProps, ", "),
		"{{IDEAL_USE_CASES}}", strings.Join(offer.IdealUseCases, ", "),
		"{{PROSPECTS}}", prospects.String(),
		"{{COUNT}}", strconv.Itoa(len(batch)),
	).Replace(promptTemplate)

	return strings.TrimSpace(prompt), nil
}

type rawResult struct {
	ID        string  `json:"id"`
	Name      *string `json:"name"`
	Intent    *string `json:"intent"`
	Reasoning *string `json:"reasoning"`
}

func parseResponse(raw string) ([]IntentResult, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, errors.New("empty response")
	}

	var items []rawResult
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		var wrapped struct {
			Results []rawResult `json:"results"`
		}
		if werr := json.Unmarshal([]byte(cleaned), &wrapped); werr != nil || wrapped.Results == nil {
			return nil, fmt.Errorf("decode json array: %w", err)
		}
		items = wrapped.Results
	}

	out := make([]IntentResult, 0, len(items))
	for i, item := range items {
		switch {
		case item.Name == nil:
			return nil, fmt.Errorf("item %d: missing name", i+1)
		case item.Intent == nil:
			return nil, fmt.Errorf("item %d: missing intent", i+1)
		case item.Reasoning == nil:
			return nil, fmt.Errorf("item %d: missing reasoning", i+1)
		}

		out = append(out, IntentResult{
			ID:        strings.TrimSpace(item.ID),
			Name:      *item.Name,
			Intent:    Intent(*item.Intent),
			Reasoning: *item.Reasoning,
		})
	}

	return out, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
