package model

import (
	"fmt"
	"strings"

	"projectsearch/internal/format"
)

// Filter represents the structured conditions extracted from a query.
// Every field is optional and the zero value matches every row.
type Filter struct {
	City           *string           `json:"city"`
	Locality       *string           `json:"locality"`
	BHK            *int              `json:"bhk"`
	BudgetLakhsMin *float64          `json:"budget_lakhs_min"`
	BudgetLakhsMax *float64          `json:"budget_lakhs_max"`
	Possession     *PossessionStatus `json:"possession_status"`
	Amenities      []string          `json:"amenities"`
	FreeTextTerms  []string          `json:"free_text_terms"`
}

// Clone returns a deep copy so relaxation never touches the caller's filter
func (f Filter) Clone() Filter {
	out := Filter{
		City:           cloneString(f.City),
		Locality:       cloneString(f.Locality),
		BHK:            cloneInt(f.BHK),
		BudgetLakhsMin: cloneFloat(f.BudgetLakhsMin),
		BudgetLakhsMax: cloneFloat(f.BudgetLakhsMax),
	}
	if f.Possession != nil {
		p := *f.Possession
		out.Possession = &p
	}
	if f.Amenities != nil {
		out.Amenities = append([]string{}, f.Amenities...)
	}
	if f.FreeTextTerms != nil {
		out.FreeTextTerms = append([]string{}, f.FreeTextTerms...)
	}
	return out
}

// HasBudget reports whether either budget bound is set
func (f Filter) HasBudget() bool {
	return f.BudgetLakhsMin != nil || f.BudgetLakhsMax != nil
}

// SetFieldCount counts the structured fields that constrain the strict pass.
// Free-text terms only influence scoring and are not counted.
func (f Filter) SetFieldCount() int {
	n := 0
	if f.City != nil {
		n++
	}
	if f.Locality != nil {
		n++
	}
	if f.BHK != nil {
		n++
	}
	if f.HasBudget() {
		n++
	}
	if f.Possession != nil {
		n++
	}
	if len(f.Amenities) > 0 {
		n++
	}
	return n
}

// IsEmpty reports whether the filter matches everything
func (f Filter) IsEmpty() bool {
	return f.SetFieldCount() == 0 && len(f.FreeTextTerms) == 0
}

// Describe lists the applied criteria in display form
func (f Filter) Describe() []string {
	var parts []string
	if f.BHK != nil {
		parts = append(parts, fmt.Sprintf("%d BHK", *f.BHK))
	}
	if f.Locality != nil {
		parts = append(parts, "locality "+format.Title(*f.Locality))
	}
	if f.City != nil {
		parts = append(parts, "city "+format.Title(*f.City))
	}
	switch {
	case f.BudgetLakhsMin != nil && f.BudgetLakhsMax != nil:
		parts = append(parts, fmt.Sprintf("budget %s to %s",
			format.PriceLakhs(f.BudgetLakhsMin), format.PriceLakhs(f.BudgetLakhsMax)))
	case f.BudgetLakhsMax != nil:
		parts = append(parts, "budget up to "+format.PriceLakhs(f.BudgetLakhsMax))
	case f.BudgetLakhsMin != nil:
		parts = append(parts, "budget from "+format.PriceLakhs(f.BudgetLakhsMin))
	}
	if f.Possession != nil {
		parts = append(parts, "possession "+f.Possession.Label())
	}
	if len(f.Amenities) > 0 {
		parts = append(parts, "amenities "+strings.Join(f.Amenities, ", "))
	}
	if len(f.FreeTextTerms) > 0 {
		parts = append(parts, "keywords "+strings.Join(f.FreeTextTerms, " "))
	}
	return parts
}

// Helper functions

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// StringPtr returns a pointer to v
func StringPtr(v string) *string { return &v }

// IntPtr returns a pointer to v
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v
func FloatPtr(v float64) *float64 { return &v }

// PossessionPtr returns a pointer to v
func PossessionPtr(v PossessionStatus) *PossessionStatus { return &v }
