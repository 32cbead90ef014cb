package gemini

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/lead-scorer/internal/utils"
)

const (
	defaultModel = "gemini-2.5-flash"

	retryBaseDelay = 2 * time.Second
	// maxRetryDelay bounds how long a quota error may ask us to wait before
	// we give up instead of retrying.
	maxRetryDelay = 30 * time.Second
)

var sleep = utils.WaitFor

var retryDelayPattern = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)

// intentSchema constrains the answer to one classification per prospect.
var intentSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":        {Type: genai.TypeString},
			"name":      {Type: genai.TypeString},
			"intent":    {Type: genai.TypeString, Enum: []string{"High", "Medium", "Low"}},
			"reasoning": {Type: genai.TypeString},
		},
		Required: []string{"id", "name", "intent", "reasoning"},
	},
}

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type genaiChats struct {
	chats *genai.Chats
}

func (c genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	chat, err := c.chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// Config configures the Gemini generator.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxRetries int
}

// Generator sends single-turn JSON requests to Gemini.
type Generator struct {
	chats      chatCreator
	model      string
	maxRetries int
	logger     *zap.Logger
}

// NewGenerator creates a Generator for the Gemini API backend.
func NewGenerator(ctx context.Context, cfg Config, logger *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, eris.Wrap(err, "create genai client")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		chats:      genaiChats{chats: client.Chats},
		model:      model,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}, nil
}

// GenerateContent sends message with the given system instruction and returns
// the text of the first candidate. Transient API failures are retried up to
// the configured number of attempts.
func (g *Generator) GenerateContent(ctx context.Context, systemPrompt, message string) (string, error) {
	if g == nil || g.chats == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("prompt must not be empty")
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   intentSchema,
		CandidateCount:   1,
	}
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}}
	}

	attempts := max(g.maxRetries, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		output, err := g.send(ctx, config, message)
		if err == nil {
			return output, nil
		}
		lastErr = err

		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == attempts {
			break
		}

		g.logger.Warn("gemini request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := sleep(ctx, delay); err != nil {
			return "", eris.Wrap(err, "waiting to retry gemini request")
		}
	}

	return "", lastErr
}

func (g *Generator) send(ctx context.Context, config *genai.GenerateContentConfig, message string) (string, error) {
	chat, err := g.chats.Create(ctx, g.model, config, nil)
	if err != nil {
		return "", eris.Wrap(err, "create chat")
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", eris.Wrap(err, "generate content")
	}

	output := responseText(resp)
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

// retryDelay reports whether err is worth another attempt and how long to
// wait first. Only rate limiting and server-side API errors are retried.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	if apiErr.Code != http.StatusTooManyRequests && apiErr.Code/100 != 5 {
		return 0, false
	}

	delay := retryBaseDelay * time.Duration(1<<(attempt-1))
	if m := retryDelayPattern.FindStringSubmatch(apiErr.Message); m != nil {
		secs, perr := strconv.ParseFloat(m[1], 64)
		if perr == nil {
			delay = time.Duration(secs * float64(time.Second))
		}
	}

	if delay > maxRetryDelay {
		return 0, false
	}
	return delay, true
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
