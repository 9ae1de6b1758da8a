package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionstats/internal/dataset"
)

func fixtureRecords() []dataset.Record {
	return dataset.Clean([][]string{
		{"SP", "2010", "CD", "300"},
		{"SP", "2010", "ASB", "120.5"},
		{"SP", "2011", "CD", "310"},
		{"DF", "2010", "CD", "80"},
		{"DF", "2010", "CD", "20"},
		{"DF", "2011", "TSB", "15"},
		{"DF", "2011", "CD", "110"},
		{"GO", "2011", "LB", "7"},
	}).Records
}

func TestBuild_Tables(t *testing.T) {
	tables := Build(fixtureRecords())

	assert.Equal(t, []RegionYear{
		{Region: "DF", Year: 2010, Count: 100},
		{Region: "DF", Year: 2011, Count: 125},
		{Region: "GO", Year: 2011, Count: 7},
		{Region: "SP", Year: 2010, Count: 420.5},
		{Region: "SP", Year: 2011, Count: 310},
	}, tables.RegionYear)

	assert.Equal(t, []NationalYear{
		{Year: 2010, Count: 520.5},
		{Year: 2011, Count: 442},
	}, tables.NationalYear)

	require.Len(t, tables.RegionCategoryYear, 7)
	assert.Equal(t, RegionCategoryYear{Region: "DF", Category: "Cirurgião Dentista", Year: 2010, Count: 100}, tables.RegionCategoryYear[0])
}

func TestBuild_RegionTotalsMatchCategoryRows(t *testing.T) {
	tables := Build(fixtureRecords())

	for _, ry := range tables.RegionYear {
		sum := 0.0
		for _, rcy := range tables.RegionCategoryYear {
			if rcy.Region == ry.Region && rcy.Year == ry.Year {
				sum += rcy.Count
			}
		}
		assert.InDelta(t, ry.Count, sum, 1e-9, "region %s year %d", ry.Region, ry.Year)
	}
}

func TestBuild_NationalTotalsMatchRegionRows(t *testing.T) {
	tables := Build(fixtureRecords())

	for _, ny := range tables.NationalYear {
		sum := 0.0
		for _, ry := range tables.Year(ny.Year) {
			sum += ry.Count
		}
		assert.InDelta(t, ny.Count, sum, 1e-9, "year %d", ny.Year)
	}
}

func TestBuild_Empty(t *testing.T) {
	tables := Build(nil)

	assert.True(t, tables.Empty())
	assert.Empty(t, tables.NationalYear)
	assert.Empty(t, tables.RegionCategoryYear)
	_, ok := tables.LatestYear()
	assert.False(t, ok)
	assert.Empty(t, tables.Regions())
}

func TestTables_Lookups(t *testing.T) {
	tables := Build(fixtureRecords())

	latest, ok := tables.LatestYear()
	require.True(t, ok)
	assert.Equal(t, 2011, latest)
	assert.Equal(t, []int{2010, 2011}, tables.Years())
	assert.Equal(t, []string{"DF", "GO", "SP"}, tables.Regions())
	assert.True(t, tables.HasRegion("GO"))
	assert.False(t, tables.HasRegion("RJ"))

	assert.Equal(t, []RegionYear{
		{Region: "DF", Year: 2011, Count: 125},
		{Region: "GO", Year: 2011, Count: 7},
		{Region: "SP", Year: 2011, Count: 310},
	}, tables.Year(2011))

	series := tables.RegionSeries("SP")
	require.Len(t, series, 2)
	assert.Equal(t, 2010, series[0].Year)

	assert.Len(t, tables.RegionCategories("DF"), 3)
	assert.Equal(t, map[string]float64{
		"Cirurgião Dentista":     110,
		"Técnico em Saúde Bucal": 15,
	}, tables.CategoryTotals("DF", 2011))
	assert.Equal(t, map[string]float64{
		"Cirurgião Dentista":              420,
		"Técnico em Saúde Bucal":          15,
		"Laboratório de Prótese Dentária": 7,
	}, tables.CategoryTotals("", 2011))
}

func TestNationalByCode(t *testing.T) {
	records := fixtureRecords()

	assert.Equal(t, []NationalYear{
		{Year: 2010, Count: 400},
		{Year: 2011, Count: 420},
	}, NationalByCode(records, "CD"))
	assert.Empty(t, NationalByCode(records, "ECIPO"))
}
