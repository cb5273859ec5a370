package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectsearch/internal/config"
	"projectsearch/internal/model"
	"projectsearch/internal/utils"
)

func TestSearch_StrictMatch(t *testing.T) {
	rows := testDataset(t).Rows()
	e := NewSearchEngine()

	out := e.SearchWithTrace(rows, model.Filter{
		City:           model.StringPtr("pune"),
		BHK:            model.IntPtr(3),
		BudgetLakhsMax: model.FloatPtr(120),
	}, 5)

	require.Len(t, out.Results, 1)
	r := out.Results[0]
	assert.Equal(t, "PRJ001", r.Project.ProjectID)
	assert.Equal(t, 3, *r.BHK)
	assert.Equal(t, 120.0, *r.PriceLakhs)
	assert.InDelta(t, 70.0, r.RelevanceScore, 1e-9)
	assert.Equal(t, []string{ReasonCityMatch, ReasonBHKMatch, ReasonPriceMatch}, r.MatchedReasons)
	assert.Empty(t, out.Relaxations)
	assert.Empty(t, r.Relaxations)
}

func TestSearch_EmptyFilterUsesDefaultOrder(t *testing.T) {
	rows := testDataset(t).Rows()
	e := NewSearchEngine()

	results := e.Search(rows, model.Filter{}, 0)
	assert.Equal(t, []string{"PRJ006", "PRJ005", "PRJ002", "PRJ001", "PRJ004"}, resultIDs(results))
	for _, r := range results {
		assert.Zero(t, r.RelevanceScore)
		assert.Equal(t, []string{ReasonGeneralMatch}, r.MatchedReasons)
	}
}

func TestSearch_TopK(t *testing.T) {
	rows := testDataset(t).Rows()
	e := NewSearchEngine()

	tests := []struct {
		name string
		topK int
		want int
	}{
		{name: "negative uses default", topK: -5, want: DefaultTopK},
		{name: "zero uses default", topK: 0, want: DefaultTopK},
		{name: "smaller than candidates", topK: 2, want: 2},
		{name: "larger than candidates", topK: 50, want: len(rows)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, e.Search(rows, model.Filter{}, tt.topK), tt.want)
		})
	}
}

func TestSearch_EmptyDataset(t *testing.T) {
	e := NewSearchEngine()
	out := e.SearchWithTrace(nil, model.Filter{City: model.StringPtr("pune")}, 5)
	assert.NotNil(t, out.Results)
	assert.Empty(t, out.Results)
	assert.Empty(t, out.Relaxations)
}

func TestSearch_SurfacesMatchingVariant(t *testing.T) {
	rows := testDataset(t).Rows()
	e := NewSearchEngine()

	results := e.Search(rows, model.Filter{BHK: model.IntPtr(3)}, 5)
	assert.Equal(t, []string{"PRJ005", "PRJ001", "PRJ003"}, resultIDs(results))
	require.NotNil(t, results[0].Variant)
	assert.Equal(t, "v2", results[0].Variant.VariantID)
	assert.Equal(t, 110.0, *results[0].PriceLakhs)

	results = e.Search(rows, model.Filter{City: model.StringPtr("bangalore"), BudgetLakhsMax: model.FloatPtr(100)}, 5)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Variant)
	assert.Equal(t, "v1", results[0].Variant.VariantID)
	assert.Equal(t, 2, *results[0].BHK)
}

func TestSearch_UnknownPriceFailsBudget(t *testing.T) {
	rows := testDataset(t).Rows()
	results := NewSearchEngine().Search(rows, model.Filter{
		Locality:       model.StringPtr("baner"),
		BudgetLakhsMax: model.FloatPtr(500),
	}, 5)
	assert.Equal(t, []string{"PRJ001"}, resultIDs(results))
}

func TestSearch_Relaxation(t *testing.T) {
	rows := testDataset(t).Rows()
	e := NewSearchEngine()

	tests := []struct {
		name            string
		filter          model.Filter
		wantRelaxations []string
		wantFirst       string
	}{
		{
			name: "drops locality then amenities",
			filter: model.Filter{
				City:       model.StringPtr("pune"),
				Locality:   model.StringPtr("baner"),
				Possession: model.PossessionPtr(model.PossessionUnderConstruction),
				Amenities:  []string{"gym"},
			},
			wantRelaxations: []string{RelaxLocality, RelaxAmenities},
			wantFirst:       "PRJ002",
		},
		{
			name: "widens budget",
			filter: model.Filter{
				City:           model.StringPtr("pune"),
				BHK:            model.IntPtr(3),
				BudgetLakhsMax: model.FloatPtr(110),
			},
			wantRelaxations: []string{RelaxBudget},
			wantFirst:       "PRJ001",
		},
		{
			name: "unknown city",
			filter: model.Filter{
				City: model.StringPtr("nowhereville"),
				BHK:  model.IntPtr(4),
			},
			wantRelaxations: []string{RelaxBHK, RelaxCity},
			wantFirst:       "PRJ007",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.SearchWithTrace(rows, tt.filter, 5)
			require.NotEmpty(t, out.Results)
			assert.Equal(t, tt.wantRelaxations, out.Relaxations)
			assert.Equal(t, tt.wantFirst, out.Results[0].Project.ProjectID)
			for _, r := range out.Results {
				assert.Equal(t, tt.wantRelaxations, r.Relaxations)
				assert.Equal(t, out.Effective, r.MatchedFilter)
			}
		})
	}
}

func TestSearch_RelaxationDoesNotTouchInput(t *testing.T) {
	rows := testDataset(t).Rows()
	f := model.Filter{City: model.StringPtr("pune"), BHK: model.IntPtr(3), BudgetLakhsMax: model.FloatPtr(110)}
	before := f.Clone()

	out := NewSearchEngine().SearchWithTrace(rows, f, 5)
	assert.Equal(t, before, f)
	require.NotNil(t, out.Effective.BudgetLakhsMax)
	assert.InDelta(t, 121.0, *out.Effective.BudgetLakhsMax, 1e-9)
}

func TestSearch_UnfilteredWhenLadderExhausted(t *testing.T) {
	rows := testDataset(t).Rows()
	e := NewSearchEngine(WithRelaxationLadder(nil))

	out := e.SearchWithTrace(rows, model.Filter{
		City:          model.StringPtr("nowhereville"),
		FreeTextTerms: []string{"creek"},
	}, 3)
	assert.Equal(t, []string{RelaxUnfiltered}, out.Relaxations)
	require.Len(t, out.Results, 3)
	assert.Equal(t, "PRJ006", out.Results[0].Project.ProjectID)
	assert.Equal(t, []string{"creek"}, out.Effective.FreeTextTerms)
}

func TestDefaultRelaxationLadder_Order(t *testing.T) {
	var names []string
	for _, s := range DefaultRelaxationLadder(DefaultBudgetTolerance) {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{RelaxLocality, RelaxAmenities, RelaxPossession, RelaxBudget, RelaxBHK, RelaxCity}, names)
}

func TestDefaultRelaxationLadder_BudgetTolerance(t *testing.T) {
	var budget RelaxationStep
	for _, s := range DefaultRelaxationLadder(0.2) {
		if s.Name == RelaxBudget {
			budget = s
		}
	}
	f := model.Filter{BudgetLakhsMin: model.FloatPtr(100), BudgetLakhsMax: model.FloatPtr(200)}
	require.True(t, budget.Applies(f))
	relaxed := budget.Relax(f.Clone())
	assert.InDelta(t, 80.0, *relaxed.BudgetLakhsMin, 1e-9)
	assert.InDelta(t, 240.0, *relaxed.BudgetLakhsMax, 1e-9)
	assert.Equal(t, 100.0, *f.BudgetLakhsMin)

	assert.False(t, budget.Applies(model.Filter{}))
}

func TestRelaxation_Monotonic(t *testing.T) {
	rows := testDataset(t).Rows()
	e := NewSearchEngine()
	filters := []model.Filter{
		{City: model.StringPtr("pune"), Locality: model.StringPtr("baner"), BHK: model.IntPtr(2), Amenities: []string{"gym"}},
		{City: model.StringPtr("mumbai"), BudgetLakhsMax: model.FloatPtr(140), Possession: model.PossessionPtr(model.PossessionReady)},
		{BHK: model.IntPtr(5), BudgetLakhsMin: model.FloatPtr(10), BudgetLakhsMax: model.FloatPtr(20)},
	}
	for _, f := range filters {
		prev := len(e.filterRows(rows, f))
		cur := f.Clone()
		for _, step := range DefaultRelaxationLadder(DefaultBudgetTolerance) {
			if !step.Applies(cur) {
				continue
			}
			cur = step.Relax(cur)
			n := len(e.filterRows(rows, cur))
			assert.GreaterOrEqual(t, n, prev, "step %s shrank candidates", step.Name)
			prev = n
		}
	}
}

func TestSearch_Properties(t *testing.T) {
	rows := testDataset(t).Rows()
	e := NewSearchEngine()
	filters := []model.Filter{
		{},
		{City: model.StringPtr("pune")},
		{BHK: model.IntPtr(2), BudgetLakhsMax: model.FloatPtr(100)},
		{Amenities: []string{"gym"}, FreeTextTerms: []string{"heights"}},
		{City: model.StringPtr("atlantis"), Locality: model.StringPtr("nowhere"), Possession: model.PossessionPtr(model.PossessionReady)},
	}
	for _, f := range filters {
		for _, k := range []int{1, 3, 5, 10} {
			first := e.Search(rows, f, k)
			assert.LessOrEqual(t, len(first), k)
			assert.NotEmpty(t, first)
			for i := 1; i < len(first); i++ {
				assert.GreaterOrEqual(t, first[i-1].RelevanceScore, first[i].RelevanceScore)
			}
			assert.Equal(t, first, e.Search(rows, f, k))
		}
	}
}

func TestSearch_StrictMatchesOutrankNonMatches(t *testing.T) {
	rows := testDataset(t).Rows()
	e := NewSearchEngine()
	ranker := NewRanker(DefaultScoreWeights(), utils.FuzzyMatcher{})

	filters := []model.Filter{
		{City: model.StringPtr("pune"), Possession: model.PossessionPtr(model.PossessionReady)},
		{BHK: model.IntPtr(3), Amenities: []string{"gym"}},
		{City: model.StringPtr("mumbai"), Possession: model.PossessionPtr(model.PossessionUnderConstruction)},
		{Locality: model.StringPtr("whitefield"), BHK: model.IntPtr(3)},
	}
	for _, f := range filters {
		strict := e.SearchWithTrace(rows, f, len(rows))
		require.Empty(t, strict.Relaxations)
		require.NotEmpty(t, strict.Results)

		matched := map[string]bool{}
		lowest := strict.Results[len(strict.Results)-1].RelevanceScore
		for _, r := range strict.Results {
			matched[r.Project.ProjectID] = true
		}
		for i := range rows {
			if matched[rows[i].ProjectID] {
				continue
			}
			score, _ := ranker.Score(&rows[i], rows[i].BHK, rows[i].PriceLakhs, f)
			assert.Less(t, score, lowest, "%s outranks a strict match", rows[i].ProjectID)
		}
	}
}

func TestRanker_Score(t *testing.T) {
	row := &model.ProjectRow{
		ProjectID:   "PRJ001",
		ProjectName: "Sunshine Residency",
		City:        "pune",
		Locality:    "baner",
		Possession:  model.PossessionReady,
		Amenities:   model.StringList{"gym", "swimming pool"},
	}
	bhk, price := model.IntPtr(3), model.FloatPtr(120)

	tests := []struct {
		name        string
		filter      model.Filter
		want        float64
		wantReasons []string
	}{
		{name: "city", filter: model.Filter{City: model.StringPtr("pune")}, want: 40, wantReasons: []string{ReasonCityMatch}},
		{name: "exact locality", filter: model.Filter{Locality: model.StringPtr("baner")}, want: 30, wantReasons: []string{ReasonLocalityMatch}},
		{name: "misspelled locality", filter: model.Filter{Locality: model.StringPtr("banner")}, want: 25, wantReasons: []string{ReasonLocalityMatch}},
		{name: "bhk", filter: model.Filter{BHK: model.IntPtr(3)}, want: 25, wantReasons: []string{ReasonBHKMatch}},
		{name: "max budget", filter: model.Filter{BudgetLakhsMax: model.FloatPtr(200)}, want: 7, wantReasons: []string{ReasonPriceMatch}},
		{name: "budget range", filter: model.Filter{BudgetLakhsMin: model.FloatPtr(100), BudgetLakhsMax: model.FloatPtr(200)}, want: 9, wantReasons: []string{ReasonPriceMatch}},
		{name: "min budget", filter: model.Filter{BudgetLakhsMin: model.FloatPtr(100)}, want: 10, wantReasons: []string{ReasonPriceMatch}},
		{name: "over budget", filter: model.Filter{BudgetLakhsMax: model.FloatPtr(100)}, want: 0, wantReasons: []string{ReasonGeneralMatch}},
		{name: "possession", filter: model.Filter{Possession: model.PossessionPtr(model.PossessionReady)}, want: 10, wantReasons: []string{ReasonPossessionMatch}},
		{name: "amenities", filter: model.Filter{Amenities: []string{"gym", "lift", "swimming pool"}}, want: 10, wantReasons: []string{"Has gym", "Has swimming pool"}},
		{name: "free text", filter: model.Filter{FreeTextTerms: []string{"sunshine", "zebra"}}, want: 15, wantReasons: []string{`Matches "sunshine"`}},
		{name: "nothing matches", filter: model.Filter{City: model.StringPtr("mumbai"), BHK: model.IntPtr(1)}, want: 0, wantReasons: []string{ReasonGeneralMatch}},
	}

	ranker := NewRanker(DefaultScoreWeights(), utils.FuzzyMatcher{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reasons := ranker.Score(row, bhk, price, tt.filter)
			assert.InDelta(t, tt.want, score, 0.01)
			assert.Equal(t, tt.wantReasons, reasons)
		})
	}
}

func TestRanker_SubstringFallback(t *testing.T) {
	row := &model.ProjectRow{City: "pune", Locality: "baner"}
	ranker := NewRanker(DefaultScoreWeights(), nil)

	score, _ := ranker.Score(row, nil, nil, model.Filter{Locality: model.StringPtr("banner")})
	assert.Zero(t, score)

	score, _ = ranker.Score(row, nil, nil, model.Filter{Locality: model.StringPtr("baner")})
	assert.Equal(t, 30.0, score)
}

func TestPriceScore(t *testing.T) {
	tests := []struct {
		name   string
		price  *float64
		filter model.Filter
		want   float64
	}{
		{name: "unknown price", price: nil, filter: model.Filter{BudgetLakhsMax: model.FloatPtr(100)}, want: 0},
		{name: "over budget", price: model.FloatPtr(120), filter: model.Filter{BudgetLakhsMax: model.FloatPtr(100)}, want: 0},
		{name: "at the ceiling", price: model.FloatPtr(100), filter: model.Filter{BudgetLakhsMax: model.FloatPtr(100)}, want: 0.5},
		{name: "half the ceiling", price: model.FloatPtr(50), filter: model.Filter{BudgetLakhsMax: model.FloatPtr(100)}, want: 0.75},
		{name: "zero ceiling", price: model.FloatPtr(0), filter: model.Filter{BudgetLakhsMax: model.FloatPtr(0)}, want: 1},
		{name: "floor only", price: model.FloatPtr(80), filter: model.Filter{BudgetLakhsMin: model.FloatPtr(50)}, want: 1},
		{name: "bottom of a range", price: model.FloatPtr(50), filter: model.Filter{BudgetLakhsMin: model.FloatPtr(50), BudgetLakhsMax: model.FloatPtr(100)}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, priceScore(tt.price, tt.filter), 1e-9)
		})
	}
}

func TestWeightsFromConfig(t *testing.T) {
	w := WeightsFromConfig(config.RankingConfig{
		WeightCity:       40,
		WeightLocality:   30,
		WeightBHK:        25,
		WeightBudget:     10,
		WeightPossession: 10,
		WeightAmenity:    5,
		WeightFreeText:   15,
		FuzzyThreshold:   0.75,
	})
	assert.Equal(t, DefaultScoreWeights(), w)
}
