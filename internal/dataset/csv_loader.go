package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"projectsearch/internal/model"
)

// File names of the four-table export
const (
	ProjectFile       = "project.csv"
	AddressFile       = "ProjectAddress.csv"
	ConfigurationFile = "ProjectConfiguration.csv"
	VariantFile       = "ProjectConfigurationVariant.csv"
)

// table is a CSV file keyed by lowercased header
type table struct {
	header  map[string]int
	records [][]string
}

func (t *table) col(candidates ...string) int {
	for _, c := range candidates {
		if i, ok := t.header[c]; ok {
			return i
		}
	}
	return -1
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	v := strings.TrimSpace(rec[i])
	if strings.EqualFold(v, "nan") || strings.EqualFold(v, "null") {
		return ""
	}
	return v
}

// readTable reads a CSV file, tolerating ragged and malformed lines
func readTable(path string, required bool) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if required {
				return nil, fmt.Errorf("%w: %s", ErrMissingFile, filepath.Base(path))
			}
			return &table{header: map[string]int{}}, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	head, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &table{header: map[string]int{}}, nil
		}
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	t := &table{header: make(map[string]int, len(head))}
	for i, h := range head {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := t.header[h]; !dup {
			t.header[h] = i
		}
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		t.records = append(t.records, rec)
	}
	return t, nil
}

// LoadCSVDir joins the project, address, configuration and variant exports found in dir.
// project.csv and ProjectAddress.csv are required; configuration and variant files are optional.
func LoadCSVDir(dir string) (*Dataset, error) {
	rows, err := ReadCSVDir(dir)
	if err != nil {
		return nil, err
	}
	return New(rows)
}

// ReadCSVDir performs the join without building a Dataset
func ReadCSVDir(dir string) ([]model.ProjectRow, error) {
	projects, err := readTable(filepath.Join(dir, ProjectFile), true)
	if err != nil {
		return nil, err
	}
	addresses, err := readTable(filepath.Join(dir, AddressFile), true)
	if err != nil {
		return nil, err
	}
	configs, err := readTable(filepath.Join(dir, ConfigurationFile), false)
	if err != nil {
		return nil, err
	}
	variants, err := readTable(filepath.Join(dir, VariantFile), false)
	if err != nil {
		return nil, err
	}

	type place struct{ city, locality string }
	addrByProject := map[string]place{}
	aProject := addresses.col("projectid", "project_id")
	aFull := addresses.col("fulladdress", "full_address", "address", "fulladdressline")
	aCity := addresses.col("city")
	aLocality := addresses.col("locality")
	for _, rec := range addresses.records {
		id := field(rec, aProject)
		if id == "" {
			continue
		}
		if _, seen := addrByProject[id]; seen {
			continue
		}
		city, locality := SplitAddress(field(rec, aFull))
		if c := field(rec, aCity); c != "" {
			city = normalizePlace(c)
		}
		if l := field(rec, aLocality); l != "" {
			locality = normalizePlace(l)
		}
		addrByProject[id] = place{city: city, locality: locality}
	}

	type configuration struct {
		id  string
		bhk *int
	}
	configsByProject := map[string][]configuration{}
	cID := configs.col("id")
	cProject := configs.col("projectid", "project_id")
	cBHK := configs.col("custombhk", "custom_bhk", "bhk", "type")
	for _, rec := range configs.records {
		pid := field(rec, cProject)
		if pid == "" {
			continue
		}
		configsByProject[pid] = append(configsByProject[pid], configuration{
			id:  field(rec, cID),
			bhk: NormalizeBHK(field(rec, cBHK)),
		})
	}

	variantsByConfig := map[string][]model.ConfigurationVariant{}
	vID := variants.col("id")
	vConfig := variants.col("configurationid", "configuration_id")
	vPrice := variants.col("price", "price_lakhs", "amount")
	for _, rec := range variants.records {
		cid := field(rec, vConfig)
		if cid == "" {
			continue
		}
		variantsByConfig[cid] = append(variantsByConfig[cid], model.ConfigurationVariant{
			VariantID:  field(rec, vID),
			PriceLakhs: ParsePriceLakhs(field(rec, vPrice)),
		})
	}

	pID := projects.col("id", "projectid", "project_id")
	pName := projects.col("projectname", "project_name", "name")
	pStatus := projects.col("status", "possession", "possession_status")
	pAmenities := projects.col("amenities", "amenity")

	rows := make([]model.ProjectRow, 0, len(projects.records))
	seen := map[string]bool{}
	for _, rec := range projects.records {
		id := field(rec, pID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		row := model.ProjectRow{
			ProjectID:   id,
			ProjectName: field(rec, pName),
			Possession:  model.ParsePossession(field(rec, pStatus)),
			Amenities:   SplitAmenities(field(rec, pAmenities)),
		}
		if p, ok := addrByProject[id]; ok {
			row.City, row.Locality = p.city, p.locality
		}
		for _, c := range configsByProject[id] {
			vs := variantsByConfig[c.id]
			if len(vs) == 0 {
				row.Variants = append(row.Variants, model.ConfigurationVariant{VariantID: c.id, BHK: c.bhk})
				continue
			}
			for _, v := range vs {
				v.BHK = c.bhk
				row.Variants = append(row.Variants, v)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
