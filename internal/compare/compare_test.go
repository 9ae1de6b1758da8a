package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionstats/internal/aggregate"
	"regionstats/internal/analysis"
	"regionstats/internal/dataset"
)

func ranking(regions ...string) []analysis.RankEntry {
	entries := make([]analysis.RankEntry, len(regions))
	for i, r := range regions {
		entries[i] = analysis.RankEntry{Region: r, Rank: i + 1}
	}
	return entries
}

func TestSelectRegions(t *testing.T) {
	latest := ranking("SP", "MG", "RJ", "PR", "RS", "BA", "DF", "GO")
	present := []string{"BA", "DF", "GO", "MG", "PR", "RJ", "RS", "SP"}

	tests := []struct {
		name      string
		present   []string
		reference string
		fixed     []string
		want      []string
	}{
		{
			name:      "reference plus five peers",
			present:   present,
			reference: "DF",
			want:      []string{"DF", "SP", "MG", "RJ", "PR", "RS"},
		},
		{
			name:      "reference absent uses top four",
			present:   present,
			reference: "AM",
			want:      []string{"SP", "MG", "RJ", "PR"},
		},
		{
			name:      "fixed list filtered to present regions",
			present:   present,
			reference: "DF",
			fixed:     []string{"GO", "XX", "DF", "GO"},
			want:      []string{"GO", "DF"},
		},
		{
			name:      "fixed list with nothing present",
			present:   present,
			reference: "DF",
			fixed:     []string{"XX"},
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectRegions(latest, tt.present, tt.reference, tt.fixed))
		})
	}
}

func TestSelectRegions_FewRegions(t *testing.T) {
	assert.Equal(t, []string{"DF", "SP"}, SelectRegions(ranking("SP", "DF"), []string{"DF", "SP"}, "DF", nil))
	assert.Equal(t, []string{"SP"}, SelectRegions(ranking("SP"), []string{"SP"}, "DF", nil))
	assert.Nil(t, SelectRegions(nil, nil, "DF", nil))
}

func mixTables() *aggregate.Tables {
	return aggregate.Build(dataset.Clean([][]string{
		{"DF", "2020", "CD", "60"},
		{"DF", "2020", "ASB", "40"},
		{"SP", "2020", "CD", "240"},
		{"SP", "2020", "TPD", "60"},
		{"DF", "2019", "LB", "999"},
	}).Records)
}

func TestCategoryMix(t *testing.T) {
	mix := CategoryMix(mixTables(), "DF", 2020)
	require.Len(t, mix, 3)

	assert.Equal(t, "Cirurgião Dentista", mix[0].Category)
	assert.InDelta(t, 60.0, mix[0].RegionShare, 1e-9)
	assert.InDelta(t, 75.0, mix[0].NationalShare, 1e-9)

	byCategory := make(map[string]MixShare)
	for _, m := range mix {
		byCategory[m.Category] = m
	}
	assert.Equal(t, 0.0, byCategory["Técnico em Prótese Dentária"].RegionShare, "missing side filled with zero")
	assert.InDelta(t, 15.0, byCategory["Técnico em Prótese Dentária"].NationalShare, 1e-9)

	for i := 1; i < len(mix); i++ {
		assert.GreaterOrEqual(t, mix[i-1].NationalShare, mix[i].NationalShare)
	}

	regionSum, nationalSum := sums(mix)
	assert.InDelta(t, 100.0, regionSum, 1e-9)
	assert.InDelta(t, 100.0, nationalSum, 1e-9)
}

func TestCategoryMix_ReferenceAbsent(t *testing.T) {
	mix := CategoryMix(mixTables(), "AM", 2020)
	require.NotEmpty(t, mix)

	regionSum, nationalSum := sums(mix)
	assert.Equal(t, 0.0, regionSum)
	assert.InDelta(t, 100.0, nationalSum, 1e-9)
}

func TestCategoryMix_NoRowsForYear(t *testing.T) {
	assert.Empty(t, CategoryMix(mixTables(), "DF", 1990))
}

func TestRegionMix(t *testing.T) {
	counts := RegionMix(mixTables(), "DF", 2020)
	assert.Equal(t, []CategoryCount{
		{Category: "Cirurgião Dentista", Count: 60},
		{Category: "Auxiliar em Saúde Bucal", Count: 40},
	}, counts)

	assert.Empty(t, RegionMix(mixTables(), "AM", 2020))
}

func sums(mix []MixShare) (region, national float64) {
	for _, m := range mix {
		region += m.RegionShare
		national += m.NationalShare
	}
	return region, national
}
