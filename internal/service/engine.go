package service

import (
	"sort"
	"strings"

	"projectsearch/internal/metrics"
	"projectsearch/internal/model"
	"projectsearch/internal/utils"
)

// DefaultTopK is used when a caller passes topK <= 0
const DefaultTopK = 5

// SearchOutcome is the ranked result list plus how it was obtained
type SearchOutcome struct {
	Results     []model.RankedResult
	Relaxations []string
	Effective   model.Filter
}

// SearchEngine filters, relaxes and ranks project rows. It holds no per-query state
// and is safe for concurrent use.
type SearchEngine struct {
	ranker *Ranker
	ladder []RelaxationStep
}

// EngineOption configures a SearchEngine
type EngineOption func(*SearchEngine)

// WithWeights overrides the scoring weights
func WithWeights(w ScoreWeights, matcher utils.Matcher) EngineOption {
	return func(e *SearchEngine) {
		e.ranker = NewRanker(w, matcher)
	}
}

// WithRelaxationLadder overrides the relaxation steps
func WithRelaxationLadder(steps []RelaxationStep) EngineOption {
	return func(e *SearchEngine) {
		e.ladder = steps
	}
}

// NewSearchEngine creates an engine with default weights, fuzzy matching and
// the default ladder unless overridden
func NewSearchEngine(opts ...EngineOption) *SearchEngine {
	e := &SearchEngine{
		ranker: NewRanker(DefaultScoreWeights(), utils.NewMatcher(true)),
		ladder: DefaultRelaxationLadder(DefaultBudgetTolerance),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns the top-k ranked results for the filter
func (e *SearchEngine) Search(rows []model.ProjectRow, filter model.Filter, topK int) []model.RankedResult {
	return e.SearchWithTrace(rows, filter, topK).Results
}

// SearchWithTrace runs the strict pass, relaxes cumulatively until something matches
// and ranks the surviving candidates against the original filter
func (e *SearchEngine) SearchWithTrace(rows []model.ProjectRow, filter model.Filter, topK int) *SearchOutcome {
	if topK <= 0 {
		topK = DefaultTopK
	}
	outcome := &SearchOutcome{
		Results:     []model.RankedResult{},
		Relaxations: []string{},
		Effective:   filter.Clone(),
	}
	if len(rows) == 0 {
		return outcome
	}

	effective := filter.Clone()
	candidates := e.filterRows(rows, effective)
	relaxed := []string{}

	for _, step := range e.ladder {
		if len(candidates) > 0 {
			break
		}
		if !step.Applies(effective) {
			continue
		}
		effective = step.Relax(effective)
		relaxed = append(relaxed, step.Name)
		metrics.RelaxationSteps.WithLabelValues(step.Name).Inc()
		candidates = e.filterRows(rows, effective)
	}

	if len(candidates) == 0 {
		effective = model.Filter{FreeTextTerms: effective.FreeTextTerms}
		relaxed = append(relaxed, RelaxUnfiltered)
		metrics.RelaxationSteps.WithLabelValues(RelaxUnfiltered).Inc()
		candidates = e.filterRows(rows, effective)
	}

	results := make([]model.RankedResult, 0, len(candidates))
	for _, c := range candidates {
		score, reasons := e.ranker.Score(c.row, c.bhk, c.price, filter)
		results = append(results, model.RankedResult{
			Project:        *c.row,
			BHK:            c.bhk,
			PriceLakhs:     c.price,
			Variant:        c.variant,
			RelevanceScore: score,
			MatchedFilter:  effective.Clone(),
			Relaxations:    append([]string{}, relaxed...),
			MatchedReasons: reasons,
		})
	}
	sortResults(results, candidates)

	if len(results) > topK {
		results = results[:topK]
	}
	outcome.Results = results
	outcome.Relaxations = relaxed
	outcome.Effective = effective
	return outcome
}

type candidate struct {
	index   int
	row     *model.ProjectRow
	bhk     *int
	price   *float64
	variant *model.ConfigurationVariant
}

func (e *SearchEngine) filterRows(rows []model.ProjectRow, f model.Filter) []candidate {
	out := []candidate{}
	for i := range rows {
		if c, ok := matchRow(&rows[i], f); ok {
			c.index = i
			out = append(out, c)
		}
	}
	return out
}

// matchRow applies the strict predicate and picks the bhk/price to surface
func matchRow(row *model.ProjectRow, f model.Filter) (candidate, bool) {
	c := candidate{row: row}
	if f.City != nil && !strings.EqualFold(*f.City, row.City) {
		return c, false
	}
	if f.Locality != nil && !strings.EqualFold(*f.Locality, row.Locality) {
		return c, false
	}
	if f.Possession != nil && row.Possession != *f.Possession {
		return c, false
	}
	if len(f.Amenities) > 0 && !utils.HasAllAmenities(f.Amenities, row.Amenities) {
		return c, false
	}

	if f.BHK == nil && !f.HasBudget() {
		c.bhk, c.price = row.BHK, row.PriceLakhs
		return c, true
	}
	if !row.HasVariants() {
		if !unitMatches(row.BHK, row.PriceLakhs, f) {
			return c, false
		}
		c.bhk, c.price = row.BHK, row.PriceLakhs
		return c, true
	}
	for i := range row.Variants {
		v := &row.Variants[i]
		if unitMatches(v.BHK, v.PriceLakhs, f) {
			c.bhk, c.price, c.variant = v.BHK, v.PriceLakhs, v
			return c, true
		}
	}
	return c, false
}

func unitMatches(bhk *int, price *float64, f model.Filter) bool {
	if f.BHK != nil && (bhk == nil || *bhk != *f.BHK) {
		return false
	}
	if f.HasBudget() && (price == nil || !withinBudget(*price, f)) {
		return false
	}
	return true
}

// sortResults orders by score desc, surfaced price asc with unknown last, then row order.
// results[i] corresponds to candidates[i] on entry.
func sortResults(results []model.RankedResult, candidates []candidate) {
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := results[order[a]], results[order[b]]
		if ra.RelevanceScore != rb.RelevanceScore {
			return ra.RelevanceScore > rb.RelevanceScore
		}
		pa, pb := ra.PriceLakhs, rb.PriceLakhs
		switch {
		case pa != nil && pb != nil && *pa != *pb:
			return *pa < *pb
		case pa != nil && pb == nil:
			return true
		case pa == nil && pb != nil:
			return false
		}
		return candidates[order[a]].index < candidates[order[b]].index
	})
	sorted := make([]model.RankedResult, len(results))
	for i, idx := range order {
		sorted[i] = results[idx]
	}
	copy(results, sorted)
}
