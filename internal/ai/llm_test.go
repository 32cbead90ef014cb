package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/lead-scorer/internal/leads"
)

type stubGenerator struct {
	response   string
	err        error
	lastSystem string
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, prompt string) (string, error) {
	s.lastSystem = system
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

var (
	testOffer = leads.Offer{
		Name:          "Acme CRM",
		ValueProps:    []string{"saves time", "fewer clicks"},
		IdealUseCases: []string{"SaaS", "Fintech"},
	}
	testBatch = []leads.Lead{
		{ID: "id-1", Name: "Jane Doe", Role: "VP of Sales", Company: "Acme", Industry: "SaaS", Location: "NY", LinkedInBio: "..."},
		{ID: "id-2", Name: "John Roe", Role: "Engineer", Company: "Initech", Industry: "Retail"},
	}
)

func TestClassifierClassify(t *testing.T) {
	stub := &stubGenerator{response: `[
		{"id": "id-2", "name": "John Roe", "intent": "Low", "reasoning": "Not a buyer."},
		{"id": "id-1", "name": "Jane Doe", "intent": "High", "reasoning": " Decision maker in SaaS. "}
	]`}
	classifier := NewLLMClassifier(stub, "gemini", 0, zap.NewNop())

	results, err := classifier.Classify(context.Background(), testBatch, testOffer)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, IntentResult{ID: "id-2", Name: "John Roe", Intent: IntentLow, Reasoning: "Not a buyer."}, results[0])
	assert.Equal(t, IntentResult{ID: "id-1", Name: "Jane Doe", Intent: IntentHigh, Reasoning: "Decision maker in SaaS."}, results[1])

	assert.Equal(t, systemPrompt, stub.lastSystem)
	assert.Contains(t, stub.lastPrompt, "- Name: Acme CRM")
	assert.Contains(t, stub.lastPrompt, "- Value props: saves time, fewer clicks")
	assert.Contains(t, stub.lastPrompt, "- Ideal use cases: SaaS, Fintech")
	assert.Contains(t, stub.lastPrompt, `1. {"id":"id-1","name":"Jane Doe"`)
	assert.Contains(t, stub.lastPrompt, `2. {"id":"id-2","name":"John Roe"`)
	assert.Contains(t, stub.lastPrompt, "exactly 2 items")
}

func TestClassifierMatchesByNameWithoutID(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" + `[
		{"name": "Jane Doe", "intent": "Medium", "reasoning": "Maybe."},
		{"name": "John Roe", "intent": " Low ", "reasoning": ""}
	]` + "\n```"}
	classifier := NewLLMClassifier(stub, "gemini", 0, zap.NewNop())

	results, err := classifier.Classify(context.Background(), testBatch, testOffer)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "id-1", results[0].ID)
	assert.Equal(t, IntentMedium, results[0].Intent)
	assert.Equal(t, IntentLow, results[1].Intent)
}

func TestClassifierAcceptsWrappedResults(t *testing.T) {
	stub := &stubGenerator{response: `{"results": [
		{"id": "id-1", "name": "Jane Doe", "intent": "High", "reasoning": "a"},
		{"id": "id-2", "name": "John Roe", "intent": "High", "reasoning": "b"}
	]}`}
	classifier := NewLLMClassifier(stub, "gemini", 0, zap.NewNop())

	results, err := classifier.Classify(context.Background(), testBatch, testOffer)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestClassifierFailures(t *testing.T) {
	cases := []struct {
		name     string
		response string
		err      error
		reason   string
		contains string
	}{
		{
			name:   "transport error",
			err:    errors.New("connection refused"),
			reason: "request",
		},
		{
			name:     "not json",
			response: "Jane looks great!",
			reason:   "unparseable response",
		},
		{
			name:     "missing intent",
			response: `[{"name": "Jane Doe", "reasoning": "x"}, {"name": "John Roe", "intent": "Low", "reasoning": "y"}]`,
			reason:   "unparseable response",
			contains: "missing intent",
		},
		{
			name:     "missing reasoning",
			response: `[{"name": "Jane Doe", "intent": "Low"}, {"name": "John Roe", "intent": "Low", "reasoning": "y"}]`,
			reason:   "unparseable response",
			contains: "missing reasoning",
		},
		{
			name:     "wrong count",
			response: `[{"name": "Jane Doe", "intent": "High", "reasoning": "x"}]`,
			reason:   "invalid response",
			contains: "expected 2 results, got 1",
		},
		{
			name:     "unknown intent",
			response: `[{"name": "Jane Doe", "intent": "Very High", "reasoning": "x"}, {"name": "John Roe", "intent": "Low", "reasoning": "y"}]`,
			reason:   "invalid response",
			contains: `unknown intent "Very High"`,
		},
		{
			name:     "intent in wrong case",
			response: `[{"name": "Jane Doe", "intent": "high", "reasoning": "x"}, {"name": "John Roe", "intent": "Low", "reasoning": "y"}]`,
			reason:   "invalid response",
			contains: `unknown intent "high"`,
		},
		{
			name:     "unknown lead",
			response: `[{"name": "Jane Doe", "intent": "High", "reasoning": "x"}, {"name": "Johnny", "intent": "Low", "reasoning": "y"}]`,
			reason:   "invalid response",
			contains: `unknown lead "Johnny"`,
		},
		{
			name:     "duplicate lead",
			response: `[{"id": "id-1", "name": "Jane Doe", "intent": "High", "reasoning": "x"}, {"id": "id-1", "name": "Jane Doe", "intent": "Low", "reasoning": "y"}]`,
			reason:   "invalid response",
			contains: "classified more than once",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubGenerator{response: tc.response, err: tc.err}
			classifier := NewLLMClassifier(stub, "gemini", 0, zap.NewNop())

			results, err := classifier.Classify(context.Background(), testBatch, testOffer)
			require.Error(t, err)
			assert.Nil(t, results)

			var cerr *ClassificationError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, "gemini", cerr.Provider)
			assert.Equal(t, tc.reason, cerr.Reason)
			if tc.contains != "" {
				assert.Contains(t, err.Error(), tc.contains)
			}
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			}
		})
	}
}

func TestClassifierRejectsEmptyBatch(t *testing.T) {
	stub := &stubGenerator{}
	classifier := NewLLMClassifier(stub, "gemini", 0, zap.NewNop())

	_, err := classifier.Classify(context.Background(), nil, testOffer)

	var cerr *ClassificationError
	require.ErrorAs(t, err, &cerr)
	assert.Empty(t, stub.lastPrompt)
}

func TestParseIntent(t *testing.T) {
	for input, want := range map[string]Intent{"High": IntentHigh, " Medium ": IntentMedium, "Low": IntentLow} {
		got, err := ParseIntent(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, input := range []string{"urgent", "high", "MEDIUM", "low", ""} {
		_, err := ParseIntent(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestValidateResultsRejectsLowercaseIntent(t *testing.T) {
	batch := []leads.Lead{{Name: "Jane"}}

	out, err := ValidateResults(batch, []IntentResult{{Name: "Jane", Intent: "high"}})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), `unknown intent "high"`)
}

func TestClassificationErrorMessage(t *testing.T) {
	err := &ClassificationError{Provider: "anthropic", Reason: "request", Err: errors.New("401 unauthorized")}
	assert.Equal(t, "classification failed (anthropic): request: 401 unauthorized", err.Error())
	assert.True(t, strings.HasPrefix((&ClassificationError{}).Error(), "classification failed"))
}
