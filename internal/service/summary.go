package service

import (
	"fmt"
	"strings"

	"projectsearch/internal/format"
	"projectsearch/internal/model"
)

// Summarizer builds a short description of a result list. Every figure it
// mentions is computed from the results it is given.
type Summarizer struct{}

// NewSummarizer creates a summarizer
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize returns the summary sentence
func (s *Summarizer) Summarize(results []model.RankedResult, filter model.Filter) string {
	return s.SummarizeFacts(results, filter).Text
}

// SummarizeFacts returns the summary sentence plus the figures used to build it
func (s *Summarizer) SummarizeFacts(results []model.RankedResult, filter model.Filter) model.Summary {
	if len(results) == 0 {
		return model.Summary{Text: noMatchText(filter)}
	}

	facts := model.Summary{Count: len(results)}
	sentences := []string{countSentence(len(results))}

	if p := possessionSentence(results); p != "" {
		sentences = append(sentences, p)
	}

	for _, r := range results {
		if r.PriceLakhs == nil {
			continue
		}
		if facts.MinPriceLakhs == nil || *r.PriceLakhs < *facts.MinPriceLakhs {
			facts.MinPriceLakhs = model.FloatPtr(*r.PriceLakhs)
		}
		if facts.MaxPriceLakhs == nil || *r.PriceLakhs > *facts.MaxPriceLakhs {
			facts.MaxPriceLakhs = model.FloatPtr(*r.PriceLakhs)
		}
	}
	if facts.MinPriceLakhs != nil {
		sentences = append(sentences, fmt.Sprintf("Price range: %s — %s.",
			format.PriceLakhs(facts.MinPriceLakhs), format.PriceLakhs(facts.MaxPriceLakhs)))
	}

	if loc := topLocality(results); loc != "" {
		sentences = append(sentences, fmt.Sprintf("Most listings are in %s.", format.Title(loc)))
	}

	if note := relaxationNote(results[0].Relaxations); note != "" {
		sentences = append(sentences, note)
	}

	facts.Text = strings.Join(sentences, " ")
	return facts
}

func countSentence(n int) string {
	if n == 1 {
		return "1 matching project found."
	}
	return fmt.Sprintf("%d matching projects found.", n)
}

func possessionSentence(results []model.RankedResult) string {
	counts := map[model.PossessionStatus]int{}
	for _, r := range results {
		counts[r.Project.Possession]++
	}
	var parts []string
	for _, status := range []model.PossessionStatus{model.PossessionReady, model.PossessionUnderConstruction} {
		if n := counts[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", status.Label(), n))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "Possession status — " + strings.Join(parts, ", ") + "."
}

// topLocality returns the most common locality; ties go to the first one seen
func topLocality(results []model.RankedResult) string {
	counts := map[string]int{}
	order := []string{}
	for _, r := range results {
		loc := r.Project.Locality
		if loc == "" {
			continue
		}
		if counts[loc] == 0 {
			order = append(order, loc)
		}
		counts[loc]++
	}
	best := ""
	for _, loc := range order {
		if counts[loc] > counts[best] {
			best = loc
		}
	}
	return best
}

func relaxationNote(relaxed []string) string {
	if len(relaxed) == 0 {
		return ""
	}
	names := make([]string, 0, len(relaxed))
	for _, r := range relaxed {
		if r == RelaxUnfiltered {
			r = "all filters"
		}
		names = append(names, r)
	}
	return "Closest matches shown after relaxing " + strings.Join(names, ", ") + "."
}

func noMatchText(filter model.Filter) string {
	criteria := filter.Describe()
	if len(criteria) == 0 {
		return "No matches found."
	}
	return "No matches found for " + strings.Join(criteria, ", ") + "."
}
