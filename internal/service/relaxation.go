package service

import "projectsearch/internal/model"

// Relaxation step names
const (
	RelaxLocality   = "locality"
	RelaxAmenities  = "amenities"
	RelaxPossession = "possession"
	RelaxBudget     = "budget"
	RelaxBHK        = "bhk"
	RelaxCity       = "city"
	RelaxUnfiltered = "unfiltered"
)

// DefaultBudgetTolerance widens budget bounds by 10%
const DefaultBudgetTolerance = 0.10

// RelaxationStep loosens one constraint of a filter
type RelaxationStep struct {
	Name    string
	Applies func(f model.Filter) bool
	Relax   func(f model.Filter) model.Filter
}

// DefaultRelaxationLadder returns the steps in the order they are tried
func DefaultRelaxationLadder(tolerance float64) []RelaxationStep {
	if tolerance < 0 {
		tolerance = DefaultBudgetTolerance
	}
	return []RelaxationStep{
		{
			Name:    RelaxLocality,
			Applies: func(f model.Filter) bool { return f.Locality != nil },
			Relax: func(f model.Filter) model.Filter {
				f.Locality = nil
				return f
			},
		},
		{
			Name:    RelaxAmenities,
			Applies: func(f model.Filter) bool { return len(f.Amenities) > 0 },
			Relax: func(f model.Filter) model.Filter {
				f.Amenities = nil
				return f
			},
		},
		{
			Name:    RelaxPossession,
			Applies: func(f model.Filter) bool { return f.Possession != nil },
			Relax: func(f model.Filter) model.Filter {
				f.Possession = nil
				return f
			},
		},
		{
			Name:    RelaxBudget,
			Applies: func(f model.Filter) bool { return f.HasBudget() && tolerance > 0 },
			Relax: func(f model.Filter) model.Filter {
				if f.BudgetLakhsMax != nil {
					f.BudgetLakhsMax = model.FloatPtr(*f.BudgetLakhsMax * (1 + tolerance))
				}
				if f.BudgetLakhsMin != nil {
					f.BudgetLakhsMin = model.FloatPtr(*f.BudgetLakhsMin * (1 - tolerance))
				}
				return f
			},
		},
		{
			Name:    RelaxBHK,
			Applies: func(f model.Filter) bool { return f.BHK != nil },
			Relax: func(f model.Filter) model.Filter {
				f.BHK = nil
				return f
			},
		},
		{
			Name:    RelaxCity,
			Applies: func(f model.Filter) bool { return f.City != nil },
			Relax: func(f model.Filter) model.Filter {
				f.City = nil
				return f
			},
		},
	}
}
