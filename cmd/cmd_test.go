package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/lead-scorer/internal/leads"
	"github.com/spigell/lead-scorer/internal/scoring"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadOffer(t *testing.T) {
	path := writeFile(t, "offer.yaml", `
name: " Acme CRM "
value_props:
  - saves time
ideal_use_cases:
  - SaaS
  - Fintech
`)

	offer, err := loadOffer(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme CRM", offer.Name)
	assert.Equal(t, []string{"SaaS", "Fintech"}, offer.IdealUseCases)
}

func TestLoadOfferRequiresName(t *testing.T) {
	path := writeFile(t, "offer.yaml", "value_props: [x]\nideal_use_cases: [SaaS]\n")

	_, err := loadOffer(path)
	require.Error(t, err)
	assert.Equal(t, scoring.KindValidation, scoring.KindOf(err))
}

func TestLoadLeads(t *testing.T) {
	path := writeFile(t, "leads.csv", "name,role,company,industry,location,linkedin_bio\nJane,VP,Acme,SaaS,NY,bio\n")

	got, err := loadLeads(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Jane", got[0].Name)
	assert.NotEmpty(t, got[0].ID)
}

func TestNewClassifierRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	for _, provider := range []string{"", "gemini", "anthropic"} {
		_, err := newClassifier(context.Background(), AIConfig{Provider: provider}, zap.NewNop())
		assert.Error(t, err, "provider %q", provider)
	}
}

func TestNewClassifierRejectsUnknownProvider(t *testing.T) {
	_, err := newClassifier(context.Background(), AIConfig{Provider: "openai"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported ai provider")
}

func TestNewClassifierAnthropic(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	classifier, err := newClassifier(context.Background(), AIConfig{Provider: "Anthropic"}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, classifier)
}

func TestHandleAction(t *testing.T) {
	ranked := []scoring.ScoredLead{{Name: "Jane", Score: 100}}

	assert.NoError(t, handleAction(PromptRanked, zap.NewNop(), ranked))
	assert.NoError(t, handleAction(PromptReportByIntent, zap.NewNop(), ranked))
	assert.ErrorIs(t, handleAction(PromptExit, zap.NewNop(), ranked), errExit)
	assert.Error(t, handleAction("unknown", zap.NewNop(), ranked))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	assert.True(t, strings.HasPrefix(out.String(), app+" version: "))
}

func TestNewScorerAppliesDefaults(t *testing.T) {
	s := newScorer(nil, ScoringConfig{}, zap.NewNop())
	_, err := s.Run(context.Background(), []leads.Lead{{Name: "Jane"}}, &leads.Offer{Name: "Acme"})
	require.Error(t, err)
	assert.Equal(t, scoring.KindClassification, scoring.KindOf(err))
}
