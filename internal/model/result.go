package model

// RankedResult represents a project (or one of its variants) with its relevance score
type RankedResult struct {
	Project        ProjectRow            `json:"project"`
	BHK            *int                  `json:"bhk,omitempty"`
	PriceLakhs     *float64              `json:"price_lakhs,omitempty"`
	Variant        *ConfigurationVariant `json:"variant,omitempty"`
	RelevanceScore float64               `json:"relevance_score"`
	MatchedFilter  Filter                `json:"matched_filter"`
	Relaxations    []string              `json:"relaxations"`
	MatchedReasons []string              `json:"matched_reasons"`
}

// Summary is the generated sentence plus the figures it was built from
type Summary struct {
	Text          string   `json:"text"`
	Count         int      `json:"count"`
	MinPriceLakhs *float64 `json:"min_price_lakhs,omitempty"`
	MaxPriceLakhs *float64 `json:"max_price_lakhs,omitempty"`
}

// Card is the display form of a ranked result
type Card struct {
	Title          string   `json:"title"`
	CityLocality   string   `json:"city_locality"`
	BHK            *int     `json:"bhk"`
	Price          string   `json:"price"`
	ProjectName    string   `json:"project_name"`
	Possession     string   `json:"possession"`
	Amenities      []string `json:"amenities"`
	CTA            string   `json:"cta"`
	RelevanceScore float64  `json:"relevance_score"`
}
