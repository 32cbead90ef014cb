// Package scoring combines deterministic rule points with classifier intent
// into a final per-lead score.
package scoring

import (
	"strings"

	"github.com/spigell/lead-scorer/internal/leads"
)

const (
	decisionMakerPoints = 20
	influencerPoints    = 10

	industryExactPoints   = 20
	industryPartialPoints = 10

	completenessPoints = 10

	// MaxRulePoints is the highest rule score a lead can reach.
	MaxRulePoints = decisionMakerPoints + industryExactPoints + completenessPoints
)

var (
	decisionMakerKeywords = []string{"head", "vp", "vice", "director", "chief", "cxo", "founder", "ceo", "cto"}
	influencerKeywords    = []string{"manager", "lead", "principal", "senior", "staff"}
)

// RuleBreakdown holds the individual rule components for one lead.
type RuleBreakdown struct {
	Role         int `json:"role"`
	Industry     int `json:"industry"`
	Completeness int `json:"completeness"`
}

// Total is the sum of all components.
func (b RuleBreakdown) Total() int {
	return b.Role + b.Industry + b.Completeness
}

// RuleScore returns the deterministic rule points for lead, in [0, MaxRulePoints].
func RuleScore(lead leads.Lead, offer leads.Offer) int {
	return Breakdown(lead, offer).Total()
}

// Breakdown scores lead against offer component by component.
func Breakdown(lead leads.Lead, offer leads.Offer) RuleBreakdown {
	b := RuleBreakdown{
		Role:     rolePoints(lead.Role),
		Industry: industryPoints(lead.Industry, offer.IdealUseCases),
	}
	if lead.Complete() {
		b.Completeness = completenessPoints
	}
	return b
}

// rolePoints matches keywords as substrings, so "VP of Sales" and
// "Head of Growth" are decision makers while "Team Lead" is an influencer.
func rolePoints(role string) int {
	role = normalize(role)
	if role == "" {
		return 0
	}

	if containsAny(role, decisionMakerKeywords) {
		return decisionMakerPoints
	}
	if containsAny(role, influencerKeywords) {
		return influencerPoints
	}
	return 0
}

func industryPoints(industry string, icp []string) int {
	industry = normalize(industry)
	if industry == "" {
		return 0
	}

	entries := make([]string, 0, len(icp))
	for _, entry := range icp {
		if entry = normalize(entry); entry != "" {
			entries = append(entries, entry)
		}
	}

	for _, entry := range entries {
		if entry == industry {
			return industryExactPoints
		}
	}
	for _, entry := range entries {
		if strings.Contains(industry, entry) || strings.Contains(entry, industry) {
			return industryPartialPoints
		}
	}
	return 0
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
