package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/lead-scorer/internal/leads"
)

// Intent is the classifier's judgement of a lead's buying readiness.
type Intent string

const (
	IntentHigh   Intent = "High"
	IntentMedium Intent = "Medium"
	IntentLow    Intent = "Low"
)

// ParseIntent accepts exactly one of the three intent labels. Surrounding
// whitespace is ignored, letter case is not.
func ParseIntent(s string) (Intent, error) {
	switch intent := Intent(strings.TrimSpace(s)); intent {
	case IntentHigh, IntentMedium, IntentLow:
		return intent, nil
	default:
		return "", fmt.Errorf("unknown intent %q", s)
	}
}

// IntentResult is the classification of a single lead. ID echoes the lead ID
// when the classifier was given one.
type IntentResult struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Intent    Intent `json:"intent"`
	Reasoning string `json:"reasoning"`
}

// Classifier returns exactly one IntentResult per lead in batch, or an error.
// Implementations never return partial results.
type Classifier interface {
	Classify(ctx context.Context, batch []leads.Lead, offer leads.Offer) ([]IntentResult, error)
}

// ClassificationError is returned when the classification service is
// unreachable or its answer cannot be used.
type ClassificationError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *ClassificationError) Error() string {
	var b strings.Builder
	b.WriteString("classification failed")
	if e.Provider != "" {
		b.WriteString(" (" + e.Provider + ")")
	}
	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// ValidateResults checks results against the batch they answer: one entry per
// lead, each pointing at a distinct batch lead (by ID when present, otherwise
// by exact name) with a known intent. Matched entries get the lead's ID and
// name filled in.
func ValidateResults(batch []leads.Lead, results []IntentResult) ([]IntentResult, error) {
	if len(results) != len(batch) {
		return nil, fmt.Errorf("expected %d results, got %d", len(batch), len(results))
	}

	byID := make(map[string]int, len(batch))
	byName := make(map[string]int, len(batch))
	for i, lead := range batch {
		if lead.ID != "" {
			byID[lead.ID] = i
		}
		if _, ok := byName[lead.Name]; !ok {
			byName[lead.Name] = i
		}
	}

	seen := make(map[int]bool, len(batch))
	out := make([]IntentResult, 0, len(results))
	for n, res := range results {
		idx, ok := -1, false
		if res.ID != "" {
			idx, ok = byID[res.ID]
			if !ok {
				return nil, fmt.Errorf("result %d references unknown lead id %q", n+1, res.ID)
			}
		} else {
			if res.Name == "" {
				return nil, fmt.Errorf("result %d has no name", n+1)
			}
			idx, ok = byName[res.Name]
			if !ok {
				return nil, fmt.Errorf("result %d references unknown lead %q", n+1, res.Name)
			}
		}

		if seen[idx] {
			return nil, fmt.Errorf("lead %q classified more than once", batch[idx].Name)
		}
		seen[idx] = true

		intent, err := ParseIntent(string(res.Intent))
		if err != nil {
			return nil, fmt.Errorf("result for lead %q: %w", batch[idx].Name, err)
		}

		out = append(out, IntentResult{
			ID:        batch[idx].ID,
			Name:      batch[idx].Name,
			Intent:    intent,
			Reasoning: strings.TrimSpace(res.Reasoning),
		})
	}

	return out, nil
}
