package service

import (
	"context"
)

// AIClient is the interface for filter-extraction model providers
type AIClient interface {
	// ExtractFilters turns a free-text query into the structured filter fields
	ExtractFilters(ctx context.Context, query string) (*AIFilterResponse, error)

	// IsEnabled returns whether the client is configured and ready
	IsEnabled() bool
}

// AIFilterResponse is the filter object the model is asked to return.
// Budgets are in lakhs.
type AIFilterResponse struct {
	City             *string  `json:"city"`
	Locality         *string  `json:"locality"`
	BHK              *int     `json:"bhk"`
	BudgetLakhsMin   *float64 `json:"budget_lakhs_min"`
	BudgetLakhsMax   *float64 `json:"budget_lakhs_max"`
	PossessionStatus *string  `json:"possession_status"`
	Amenities        []string `json:"amenities"`
	FreeTextTerms    []string `json:"free_text_terms"`
}

// Ensure OpenAIClient implements AIClient
var _ AIClient = (*OpenAIClient)(nil)
