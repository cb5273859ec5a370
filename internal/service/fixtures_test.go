package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"projectsearch/internal/dataset"
	"projectsearch/internal/model"
)

// testDataset builds a small normalized table:
//
//	PRJ001 pune/baner        3BHK 120L  ready     gym, swimming pool
//	PRJ002 pune/wakad        2BHK  90L  uc        parking
//	PRJ003 mumbai/andheri w  3BHK 250L  ready     gym, clubhouse
//	PRJ004 mumbai/powai      2BHK 150L  uc        security
//	PRJ005 bangalore/wf      2BHK 80L, 3BHK 110L  uc   gym, lift
//	PRJ006 thane/thane west  1BHK  45L  ready
//	PRJ007 pune/baner        4BHK  n/a  unknown   garden
func testDataset(t testing.TB) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New([]model.ProjectRow{
		{
			ProjectID: "PRJ001", ProjectName: "Sunshine Residency", City: "Pune", Locality: "Baner",
			BHK: model.IntPtr(3), PriceLakhs: model.FloatPtr(120), Possession: model.PossessionReady,
			Amenities: model.StringList{"Gym", "Swimming Pool"},
		},
		{
			ProjectID: "PRJ002", ProjectName: "Green Valley", City: "Pune", Locality: "Wakad",
			BHK: model.IntPtr(2), PriceLakhs: model.FloatPtr(90), Possession: model.PossessionUnderConstruction,
			Amenities: model.StringList{"Covered Parking", "parking"},
		},
		{
			ProjectID: "PRJ003", ProjectName: "Sea Breeze Towers", City: "Mumbai", Locality: "Andheri West",
			BHK: model.IntPtr(3), PriceLakhs: model.FloatPtr(250), Possession: model.PossessionReady,
			Amenities: model.StringList{"gym", "club house"},
		},
		{
			ProjectID: "PRJ004", ProjectName: "Lakeside Enclave", City: "Mumbai", Locality: "Powai",
			BHK: model.IntPtr(2), PriceLakhs: model.FloatPtr(150), Possession: model.PossessionUnderConstruction,
			Amenities: model.StringList{"CCTV"},
		},
		{
			ProjectID: "PRJ005", ProjectName: "Whitefield Heights", City: "Bangalore", Locality: "Whitefield",
			Possession: model.PossessionUnderConstruction,
			Amenities:  model.StringList{"gym", "elevator"},
			Variants: []model.ConfigurationVariant{
				{VariantID: "v1", BHK: model.IntPtr(2), PriceLakhs: model.FloatPtr(80)},
				{VariantID: "v2", BHK: model.IntPtr(3), PriceLakhs: model.FloatPtr(110)},
			},
		},
		{
			ProjectID: "PRJ006", ProjectName: "Creek View", City: "Thane", Locality: "Thane West",
			BHK: model.IntPtr(1), PriceLakhs: model.FloatPtr(45), Possession: model.PossessionReady,
		},
		{
			ProjectID: "PRJ007", ProjectName: "Hilltop Villas", City: "Pune", Locality: "Baner",
			BHK: model.IntPtr(4), Amenities: model.StringList{"lawn"},
		},
	})
	require.NoError(t, err)
	return ds
}

func resultIDs(results []model.RankedResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Project.ProjectID
	}
	return ids
}
