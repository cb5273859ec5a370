package service

import (
	"fmt"
	"math"
	"strings"

	"projectsearch/internal/config"
	"projectsearch/internal/model"
	"projectsearch/internal/utils"
)

// Match reason constants
const (
	ReasonCityMatch       = "City match"
	ReasonLocalityMatch   = "Locality match"
	ReasonBHKMatch        = "BHK match"
	ReasonPriceMatch      = "Within budget"
	ReasonPossessionMatch = "Possession match"
	ReasonGeneralMatch    = "General match"
)

// ScoreWeights holds the per-field contributions. Every contribution is non-negative.
type ScoreWeights struct {
	City           float64
	Locality       float64
	BHK            float64
	Budget         float64
	Possession     float64
	Amenity        float64 // per requested amenity
	FreeText       float64 // per free-text term
	FuzzyThreshold float64 // similarities below this contribute nothing
}

// DefaultScoreWeights returns the tuned defaults
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		City:           40,
		Locality:       30,
		BHK:            25,
		Budget:         10,
		Possession:     10,
		Amenity:        5,
		FreeText:       15,
		FuzzyThreshold: 0.75,
	}
}

// WeightsFromConfig maps the ranking config section onto ScoreWeights
func WeightsFromConfig(cfg config.RankingConfig) ScoreWeights {
	return ScoreWeights{
		City:           cfg.WeightCity,
		Locality:       cfg.WeightLocality,
		BHK:            cfg.WeightBHK,
		Budget:         cfg.WeightBudget,
		Possession:     cfg.WeightPossession,
		Amenity:        cfg.WeightAmenity,
		FreeText:       cfg.WeightFreeText,
		FuzzyThreshold: cfg.FuzzyThreshold,
	}
}

// Ranker scores a candidate against the filter the user asked for
type Ranker struct {
	weights ScoreWeights
	matcher utils.Matcher
}

// NewRanker creates a ranker. A nil or unavailable matcher falls back to substring matching.
func NewRanker(weights ScoreWeights, matcher utils.Matcher) *Ranker {
	if matcher == nil || !matcher.Available() {
		matcher = utils.SubstringMatcher{}
	}
	return &Ranker{weights: weights, matcher: matcher}
}

// Score returns the relevance score and matched reasons for a row whose surfaced
// bhk and price are given
func (r *Ranker) Score(row *model.ProjectRow, bhk *int, price *float64, f model.Filter) (float64, []string) {
	w := r.weights
	score := 0.0
	reasons := []string{}

	if f.City != nil && row.City != "" && strings.EqualFold(*f.City, row.City) {
		score += w.City
		reasons = append(reasons, ReasonCityMatch)
	}

	if f.Locality != nil && row.Locality != "" {
		if sim := r.similarity(*f.Locality, row.Locality); sim > 0 {
			score += w.Locality * sim
			reasons = append(reasons, ReasonLocalityMatch)
		}
	}

	if f.BHK != nil && bhk != nil && *bhk == *f.BHK {
		score += w.BHK
		reasons = append(reasons, ReasonBHKMatch)
	}

	if f.HasBudget() {
		if ps := priceScore(price, f); ps > 0 {
			score += w.Budget * ps
			reasons = append(reasons, ReasonPriceMatch)
		}
	}

	if f.Possession != nil && row.Possession == *f.Possession {
		score += w.Possession
		reasons = append(reasons, ReasonPossessionMatch)
	}

	for _, a := range f.Amenities {
		if utils.HasAllAmenities([]string{a}, row.Amenities) {
			score += w.Amenity
			reasons = append(reasons, "Has "+a)
		}
	}

	for _, term := range f.FreeTextTerms {
		if sim := r.termSimilarity(term, row); sim > 0 {
			score += w.FreeText * sim
			reasons = append(reasons, fmt.Sprintf("Matches %q", term))
		}
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneralMatch)
	}
	return score, reasons
}

// similarity applies the fuzzy threshold; results are in {0} ∪ [threshold, 1]
func (r *Ranker) similarity(term, value string) float64 {
	sim := r.matcher.Similarity(term, value)
	if sim < r.weights.FuzzyThreshold {
		return 0
	}
	return sim
}

func (r *Ranker) termSimilarity(term string, row *model.ProjectRow) float64 {
	best := 0.0
	fields := []string{row.ProjectName, row.Locality, row.City}
	fields = append(fields, row.Amenities...)
	for _, field := range fields {
		if field == "" {
			continue
		}
		if sim := r.similarity(term, field); sim > best {
			best = sim
		}
	}
	return best
}

// priceScore is 0 outside the budget and in [0.5, 1] inside it, cheaper scoring higher
func priceScore(price *float64, f model.Filter) float64 {
	if price == nil || !withinBudget(*price, f) {
		return 0
	}
	headroom := 1.0
	switch {
	case f.BudgetLakhsMin != nil && f.BudgetLakhsMax != nil:
		if span := *f.BudgetLakhsMax - *f.BudgetLakhsMin; span > 0 {
			headroom = (*f.BudgetLakhsMax - *price) / span
		}
	case f.BudgetLakhsMax != nil && *f.BudgetLakhsMax > 0:
		headroom = (*f.BudgetLakhsMax - *price) / *f.BudgetLakhsMax
	}
	headroom = math.Max(0, math.Min(1, headroom))
	return 0.5 + 0.5*headroom
}

func withinBudget(price float64, f model.Filter) bool {
	if f.BudgetLakhsMin != nil && price < *f.BudgetLakhsMin {
		return false
	}
	if f.BudgetLakhsMax != nil && price > *f.BudgetLakhsMax {
		return false
	}
	return true
}
