package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectsearch/internal/model"
)

func TestLoadCSVDir(t *testing.T) {
	ds, err := LoadCSVDir("testdata")
	require.NoError(t, err)
	require.Equal(t, 5, ds.Len())

	byID := map[string]model.ProjectRow{}
	for _, r := range ds.Rows() {
		byID[r.ProjectID] = r
	}

	p1 := byID["p1"]
	assert.Equal(t, "Sunshine Residency", p1.ProjectName)
	assert.Equal(t, "pune", p1.City)
	assert.Equal(t, "baner", p1.Locality)
	require.NotNil(t, p1.BHK)
	assert.Equal(t, 3, *p1.BHK)
	require.NotNil(t, p1.PriceLakhs)
	assert.InDelta(t, 120.0, *p1.PriceLakhs, 1e-9)
	assert.Equal(t, model.PossessionReady, p1.Possession)
	assert.Equal(t, model.StringList{"gym", "swimming pool", "parking"}, p1.Amenities)

	p2 := byID["p2"]
	assert.Nil(t, p2.BHK, "variants disagree on bhk")
	require.NotNil(t, p2.PriceLakhs)
	assert.InDelta(t, 85.0, *p2.PriceLakhs, 1e-9, "row price is the cheapest variant")
	require.Len(t, p2.Variants, 2)
	assert.InDelta(t, 110.0, *p2.Variants[1].PriceLakhs, 1e-9, "raw rupees convert to lakhs")
	assert.Equal(t, model.PossessionUnderConstruction, p2.Possession)

	p3 := byID["p3"]
	assert.Equal(t, "Skyline Towers", p3.ProjectName, "first occurrence of a duplicate id wins")
	assert.Nil(t, p3.BHK, "studio is not a positive bhk")
	assert.Equal(t, "andheri west", p3.Locality)
	assert.Equal(t, model.PossessionReady, p3.Possession)

	p4 := byID["p4"]
	require.NotNil(t, p4.BHK)
	assert.Equal(t, 4, *p4.BHK)
	assert.Nil(t, p4.PriceLakhs)
	assert.Equal(t, model.StringList{"clubhouse", "gym"}, p4.Amenities)

	p5 := byID["p5"]
	assert.Equal(t, "", p5.City)
	assert.Equal(t, "kharadi", p5.Locality)
	assert.Equal(t, model.PossessionUnknown, p5.Possession)
}

func TestFingerprint(t *testing.T) {
	rows := func(price float64) []model.ProjectRow {
		return []model.ProjectRow{
			{ProjectID: "a", ProjectName: "A", City: "Pune", PriceLakhs: model.FloatPtr(price)},
			{ProjectID: "b", ProjectName: "B", City: "Mumbai"},
		}
	}
	first, err := New(rows(120))
	require.NoError(t, err)
	same, err := New(rows(120))
	require.NoError(t, err)
	changed, err := New(rows(125))
	require.NoError(t, err)

	assert.NotEmpty(t, first.Fingerprint())
	assert.Equal(t, first.Fingerprint(), same.Fingerprint())
	assert.NotEqual(t, first.Fingerprint(), changed.Fingerprint())
}

func TestVocabulary(t *testing.T) {
	ds, err := LoadCSVDir("testdata")
	require.NoError(t, err)

	assert.Equal(t, []string{"mumbai", "pune"}, ds.Cities())
	assert.Equal(t, []string{"andheri west", "kharadi", "baner", "wakad"}, ds.Localities())

	city, ok := ds.CityOfLocality("Baner")
	assert.True(t, ok)
	assert.Equal(t, "pune", city)

	_, ok = ds.CityOfLocality("kharadi")
	assert.False(t, ok, "locality without a city has no owner")
}

func TestLoadCSVDirErrors(t *testing.T) {
	_, err := LoadCSVDir("testdata/missing_address")
	assert.True(t, errors.Is(err, ErrMissingFile))

	_, err = LoadCSVDir(t.TempDir())
	assert.True(t, errors.Is(err, ErrMissingFile))
}

func TestNewEmpty(t *testing.T) {
	_, err := New(nil)
	assert.True(t, errors.Is(err, ErrEmptyDataset))

	_, err = New([]model.ProjectRow{{ProjectID: "x"}})
	assert.True(t, errors.Is(err, ErrEmptyDataset), "rows without a name are dropped")
}

func TestNewSharesVocabularyLocalityAcrossCities(t *testing.T) {
	ds, err := New([]model.ProjectRow{
		{ProjectID: "1", ProjectName: "A", City: "Pune", Locality: "Camp"},
		{ProjectID: "2", ProjectName: "B", City: "Bangalore", Locality: "camp"},
	})
	require.NoError(t, err)
	_, ok := ds.CityOfLocality("camp")
	assert.False(t, ok)
	assert.Equal(t, model.PossessionUnknown, ds.Rows()[0].Possession)
}

func TestParsePriceLakhs(t *testing.T) {
	tests := []struct {
		input string
		want  *float64
	}{
		{"1.2 Cr", model.FloatPtr(120)},
		{"₹ 2 Crore", model.FloatPtr(200)},
		{"85 Lakh", model.FloatPtr(85)},
		{"45L", model.FloatPtr(45)},
		{"72 lacs", model.FloatPtr(72)},
		{"950k", model.FloatPtr(9.5)},
		{"1,10,00,000", model.FloatPtr(110)},
		{"65", model.FloatPtr(65)},
		{"", nil},
		{"price on request", nil},
		{"nan", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParsePriceLakhs(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestNormalizeBHK(t *testing.T) {
	tests := []struct {
		input string
		want  *int
	}{
		{"3 BHK", model.IntPtr(3)},
		{"2BHK", model.IntPtr(2)},
		{"2.5 BHK", model.IntPtr(2)},
		{"Studio", nil},
		{"0 BHK", nil},
		{"villa", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBHK(tt.input))
		})
	}
}

func TestSplitAddress(t *testing.T) {
	city, locality := SplitAddress("Plot 12, Baner,  Pune ")
	assert.Equal(t, "pune", city)
	assert.Equal(t, "baner", locality)

	city, locality = SplitAddress("Kharadi")
	assert.Equal(t, "", city)
	assert.Equal(t, "kharadi", locality)

	city, locality = SplitAddress(" , ")
	assert.Empty(t, city)
	assert.Empty(t, locality)
}

func TestSplitAmenities(t *testing.T) {
	assert.Equal(t, []string{"Gym", "Pool"}, SplitAmenities("Gym|Pool"))
	assert.Equal(t, []string{"Gym", "Pool"}, SplitAmenities("Gym; Pool"))
	assert.Equal(t, []string{"Gym", "Pool"}, SplitAmenities("Gym, Pool"))
	assert.Nil(t, SplitAmenities("  "))
}
