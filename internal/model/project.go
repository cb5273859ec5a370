package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PossessionStatus is the occupancy state of a project
type PossessionStatus string

const (
	PossessionReady             PossessionStatus = "ready"
	PossessionUnderConstruction PossessionStatus = "under-construction"
	PossessionUnknown           PossessionStatus = "unknown"
)

// ParsePossession maps free-form status text to a PossessionStatus
func ParsePossession(s string) PossessionStatus {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.NewReplacer("_", " ", "-", " ").Replace(v)
	switch v {
	case "ready", "ready to move", "rtm", "completed", "ready for possession":
		return PossessionReady
	case "under construction", "uc", "upcoming", "launching", "new launch":
		return PossessionUnderConstruction
	}
	return PossessionUnknown
}

// Label returns the display form of the status
func (p PossessionStatus) Label() string {
	switch p {
	case PossessionReady:
		return "Ready"
	case PossessionUnderConstruction:
		return "Under Construction"
	}
	return "Unknown"
}

// ConfigurationVariant is one unit type/price combination within a project
type ConfigurationVariant struct {
	VariantID  string   `json:"variant_id" db:"variant_id"`
	BHK        *int     `json:"bhk,omitempty" db:"bhk"`
	PriceLakhs *float64 `json:"price_lakhs,omitempty" db:"price_lakhs"`
}

// ProjectRow represents one normalized housing project.
// Rows are built once by the dataset loader and must not be mutated afterwards.
type ProjectRow struct {
	ProjectID   string                 `json:"project_id" db:"project_id"`
	ProjectName string                 `json:"project_name" db:"project_name"`
	City        string                 `json:"city" db:"city"`
	Locality    string                 `json:"locality" db:"locality"`
	BHK         *int                   `json:"bhk,omitempty" db:"bhk"`
	PriceLakhs  *float64               `json:"price_lakhs,omitempty" db:"price_lakhs"`
	Possession  PossessionStatus       `json:"possession_status" db:"possession_status"`
	Amenities   StringList             `json:"amenities" db:"amenities"`
	Variants    []ConfigurationVariant `json:"configuration_variants,omitempty" db:"-"`
}

// HasVariants reports whether the project lists individual unit types
func (r *ProjectRow) HasVariants() bool {
	return len(r.Variants) > 0
}

// StringList represents a JSON array column
type StringList []string

// Value implements driver.Valuer interface
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner interface
func (s *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported amenities column type %T", value)
	}
}
