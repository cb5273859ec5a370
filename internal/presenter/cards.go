// Package presenter turns ranked results into display cards.
package presenter

import (
	"fmt"
	"strings"

	"projectsearch/internal/format"
	"projectsearch/internal/model"
)

// ToCards converts results to cards in the same order
func ToCards(results []model.RankedResult) []model.Card {
	cards := make([]model.Card, 0, len(results))
	for _, r := range results {
		cards = append(cards, ToCard(r))
	}
	return cards
}

// ToCard converts one result
func ToCard(r model.RankedResult) model.Card {
	p := r.Project
	amenities := make([]string, 0, len(p.Amenities))
	for _, a := range p.Amenities {
		amenities = append(amenities, format.Title(a))
	}
	return model.Card{
		Title:          cardTitle(r),
		CityLocality:   cityLocality(p),
		BHK:            r.BHK,
		Price:          format.PriceLakhs(r.PriceLakhs),
		ProjectName:    p.ProjectName,
		Possession:     p.Possession.Label(),
		Amenities:      amenities,
		CTA:            CTA(r),
		RelevanceScore: r.RelevanceScore,
	}
}

// CTA builds the project link: /project/<name>-<locality>--<price>
func CTA(r model.RankedResult) string {
	slug := format.Slugify(r.Project.ProjectName)
	if loc := format.Slugify(r.Project.Locality); loc != "" {
		if slug != "" {
			slug += "-"
		}
		slug += loc
	}
	return fmt.Sprintf("/project/%s--%s", slug, format.PriceSlug(r.PriceLakhs))
}

func cardTitle(r model.RankedResult) string {
	place := r.Project.Locality
	if place == "" {
		place = r.Project.City
	}
	place = format.Title(place)
	if r.BHK == nil {
		if place == "" {
			return "Homes"
		}
		return "Homes in " + place
	}
	if place == "" {
		return fmt.Sprintf("%dBHK", *r.BHK)
	}
	return fmt.Sprintf("%dBHK in %s", *r.BHK, place)
}

func cityLocality(p model.ProjectRow) string {
	parts := make([]string, 0, 2)
	for _, s := range []string{p.City, p.Locality} {
		if s != "" {
			parts = append(parts, format.Title(s))
		}
	}
	return strings.Join(parts, ", ")
}
