package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/lead-scorer/internal/leads"
)

var acmeOffer = leads.Offer{
	Name:          "Acme CRM",
	ValueProps:    []string{"saves time"},
	IdealUseCases: []string{"SaaS", "Fintech"},
}

func completeLead(role, industry string) leads.Lead {
	return leads.Lead{
		Name:        "Jane Doe",
		Role:        role,
		Company:     "Acme",
		Industry:    industry,
		Location:    "NY",
		LinkedInBio: "...",
	}
}

func TestRolePoints(t *testing.T) {
	tests := []struct {
		role string
		want int
	}{
		{"VP of Sales", 20},
		{"  head of growth ", 20},
		{"CHIEF Revenue Officer", 20},
		{"Co-Founder", 20},
		{"Senior Director", 20},
		{"Engineering Manager", 10},
		{"Team Lead", 10},
		{"Staff Engineer", 10},
		{"Software Engineer", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, rolePoints(tt.role))
		})
	}
}

func TestIndustryPoints(t *testing.T) {
	tests := []struct {
		name     string
		industry string
		icp      []string
		want     int
	}{
		{"exact", "SaaS", []string{"SaaS", "Fintech"}, 20},
		{"exact ignores case and space", "  fintech ", []string{"SaaS", "Fintech"}, 20},
		{"industry contains entry", "B2B SaaS", []string{"SaaS"}, 10},
		{"entry contains industry", "Tech", []string{"Fintech"}, 10},
		{"exact beats partial", "SaaS", []string{"B2B SaaS", "saas"}, 20},
		{"no overlap", "unrelated", []string{"SaaS"}, 0},
		{"empty industry", "", []string{"SaaS"}, 0},
		{"empty icp entry", "Retail", []string{"", "  "}, 0},
		{"no icp", "Retail", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, industryPoints(tt.industry, tt.icp))
		})
	}
}

func TestBreakdownCompleteness(t *testing.T) {
	lead := completeLead("VP of Sales", "SaaS")
	assert.Equal(t, 10, Breakdown(lead, acmeOffer).Completeness)

	lead.LinkedInBio = "   "
	assert.Equal(t, 0, Breakdown(lead, acmeOffer).Completeness)
}

func TestRuleScore(t *testing.T) {
	t.Run("maximum", func(t *testing.T) {
		assert.Equal(t, MaxRulePoints, RuleScore(completeLead("VP of Sales", "SaaS"), acmeOffer))
	})

	t.Run("no keyword match", func(t *testing.T) {
		lead := completeLead("Software Engineer", "unrelated")
		lead.Location = ""
		offer := leads.Offer{Name: "Acme CRM", IdealUseCases: []string{"SaaS"}}
		assert.Equal(t, 0, RuleScore(lead, offer))
	})

	t.Run("empty lead", func(t *testing.T) {
		assert.Equal(t, 0, RuleScore(leads.Lead{}, acmeOffer))
	})
}
