// Package leads holds the lead and offer model together with upload parsing
// and validation.
package leads

import "strings"

// Columns lists the required upload columns in the order they are reported.
var Columns = []string{"name", "role", "company", "industry", "location", "linkedin_bio"}

// Lead is a single prospect. ID is assigned at ingestion and is echoed back by
// the intent classifier, so merges do not depend on names being unique.
type Lead struct {
	ID          string `json:"id,omitempty" mapstructure:"-"`
	Name        string `json:"name" mapstructure:"name"`
	Role        string `json:"role" mapstructure:"role"`
	Company     string `json:"company" mapstructure:"company"`
	Industry    string `json:"industry" mapstructure:"industry"`
	Location    string `json:"location" mapstructure:"location"`
	LinkedInBio string `json:"linkedin_bio" mapstructure:"linkedin_bio"`
}

// Complete reports whether every lead attribute carries a value.
func (l Lead) Complete() bool {
	for _, v := range []string{l.Name, l.Role, l.Company, l.Industry, l.Location, l.LinkedInBio} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Offer describes the product the leads are qualified against.
// IdealUseCases doubles as the ideal customer profile industry list.
type Offer struct {
	Name          string   `json:"name" yaml:"name" validate:"required"`
	ValueProps    []string `json:"value_props" yaml:"value_props" validate:"required"`
	IdealUseCases []string `json:"ideal_use_cases" yaml:"ideal_use_cases" validate:"required"`
}
