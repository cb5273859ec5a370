// Package dataset holds the immutable, normalized project table and the city and
// locality vocabularies derived from it.
package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"projectsearch/internal/model"
	"projectsearch/internal/utils"
)

var (
	// ErrEmptyDataset is returned when a source yields no usable project rows
	ErrEmptyDataset = errors.New("dataset is empty")
	// ErrMissingFile is returned when a required CSV file is absent
	ErrMissingFile = errors.New("dataset file missing")
)

// Dataset is read-only after New returns and safe for concurrent use.
type Dataset struct {
	rows           []model.ProjectRow
	cities         []string
	localities     []string
	localityCities map[string][]string
	fingerprint    string
}

// New normalizes rows and builds the vocabularies. Rows without an id or name are
// dropped; ErrEmptyDataset is returned if none remain.
func New(rows []model.ProjectRow) (*Dataset, error) {
	out := make([]model.ProjectRow, 0, len(rows))
	for _, r := range rows {
		r.ProjectID = strings.TrimSpace(r.ProjectID)
		r.ProjectName = strings.TrimSpace(r.ProjectName)
		if r.ProjectID == "" || r.ProjectName == "" {
			continue
		}
		out = append(out, normalizeRow(r))
	}
	if len(out) == 0 {
		return nil, ErrEmptyDataset
	}

	d := &Dataset{rows: out, localityCities: map[string][]string{}}
	citySeen := map[string]bool{}
	for _, r := range out {
		if r.City != "" && !citySeen[r.City] {
			citySeen[r.City] = true
			d.cities = append(d.cities, r.City)
		}
		if r.Locality == "" {
			continue
		}
		owners, known := d.localityCities[r.Locality]
		if !known {
			d.localities = append(d.localities, r.Locality)
		}
		if r.City != "" && !contains(owners, r.City) {
			owners = append(owners, r.City)
		}
		d.localityCities[r.Locality] = owners
	}
	sortLongestFirst(d.cities)
	sortLongestFirst(d.localities)
	d.fingerprint = fingerprint(out)
	return d, nil
}

// fingerprint hashes the normalized rows so two snapshots share a value only when
// every id, price, variant and attribute agrees
func fingerprint(rows []model.ProjectRow) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for i := range rows {
		if err := enc.Encode(&rows[i]); err != nil {
			_, _ = h.Write([]byte(rows[i].ProjectID + "\n"))
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func normalizeRow(r model.ProjectRow) model.ProjectRow {
	r.City = normalizePlace(r.City)
	r.Locality = normalizePlace(r.Locality)
	if r.Possession == "" {
		r.Possession = model.PossessionUnknown
	}
	r.BHK = positiveBHK(r.BHK)

	amenities := make(model.StringList, 0, len(r.Amenities))
	seen := map[string]bool{}
	for _, a := range r.Amenities {
		c, _ := utils.NormalizeAmenity(a)
		if c != "" && !seen[c] {
			seen[c] = true
			amenities = append(amenities, c)
		}
	}
	r.Amenities = amenities

	if len(r.Variants) > 0 {
		variants := make([]model.ConfigurationVariant, len(r.Variants))
		copy(variants, r.Variants)
		for i := range variants {
			variants[i].BHK = positiveBHK(variants[i].BHK)
		}
		r.Variants = variants
		if bhk := sharedBHK(variants); bhk != nil {
			r.BHK = bhk
		} else if r.BHK != nil && !allVariantsBHK(variants, *r.BHK) {
			r.BHK = nil
		}
		if p := minPrice(variants); p != nil {
			r.PriceLakhs = p
		}
	}
	return r
}

func positiveBHK(b *int) *int {
	if b == nil || *b <= 0 {
		return nil
	}
	v := *b
	return &v
}

func sharedBHK(variants []model.ConfigurationVariant) *int {
	var shared *int
	for _, v := range variants {
		if v.BHK == nil {
			return nil
		}
		if shared == nil {
			b := *v.BHK
			shared = &b
			continue
		}
		if *shared != *v.BHK {
			return nil
		}
	}
	return shared
}

func allVariantsBHK(variants []model.ConfigurationVariant, bhk int) bool {
	for _, v := range variants {
		if v.BHK == nil || *v.BHK != bhk {
			return false
		}
	}
	return true
}

func minPrice(variants []model.ConfigurationVariant) *float64 {
	var lowest *float64
	for _, v := range variants {
		if v.PriceLakhs == nil {
			continue
		}
		if lowest == nil || *v.PriceLakhs < *lowest {
			p := *v.PriceLakhs
			lowest = &p
		}
	}
	return lowest
}

func normalizePlace(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func sortLongestFirst(s []string) {
	sort.SliceStable(s, func(i, j int) bool {
		if len(s[i]) != len(s[j]) {
			return len(s[i]) > len(s[j])
		}
		return s[i] < s[j]
	})
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Rows returns the table. Callers must treat the rows as read-only.
func (d *Dataset) Rows() []model.ProjectRow {
	return d.rows
}

// Fingerprint identifies this snapshot of the table
func (d *Dataset) Fingerprint() string { return d.fingerprint }

// Len is the number of projects
func (d *Dataset) Len() int { return len(d.rows) }

// Cities lists distinct cities, longest first
func (d *Dataset) Cities() []string {
	return append([]string(nil), d.cities...)
}

// Localities lists distinct localities, longest first
func (d *Dataset) Localities() []string {
	return append([]string(nil), d.localities...)
}

// CityOfLocality returns the owning city when the locality belongs to exactly one city
func (d *Dataset) CityOfLocality(locality string) (string, bool) {
	owners := d.localityCities[normalizePlace(locality)]
	if len(owners) != 1 {
		return "", false
	}
	return owners[0], true
}
