// Package compare builds the reference-versus-rest views: which regions to
// chart side by side, and how the reference region's category mix differs
// from the national one.
package compare

import (
	"sort"

	"regionstats/internal/aggregate"
	"regionstats/internal/analysis"
)

const (
	// defaultPeers is how many regions join the reference in an automatic selection.
	defaultPeers = 5
	// defaultTopWithoutReference is the automatic selection size when the
	// reference region is not in the data.
	defaultTopWithoutReference = 4
)

// SelectRegions picks the comparison set. A fixed list is filtered to the
// regions present in the data. Otherwise the reference region leads,
// followed by up to five regions from the latest-year ranking; if the
// reference is absent the top four of that ranking are used instead.
func SelectRegions(latest []analysis.RankEntry, present []string, reference string, fixed []string) []string {
	available := make(map[string]bool, len(present))
	for _, region := range present {
		available[region] = true
	}

	if len(fixed) > 0 {
		seen := make(map[string]bool)
		var selected []string
		for _, region := range fixed {
			if available[region] && !seen[region] {
				seen[region] = true
				selected = append(selected, region)
			}
		}
		return selected
	}

	if available[reference] {
		selected := []string{reference}
		for _, e := range latest {
			if len(selected) == defaultPeers+1 {
				break
			}
			if e.Region != reference {
				selected = append(selected, e.Region)
			}
		}
		return selected
	}

	var selected []string
	for _, e := range analysis.Top(latest, defaultTopWithoutReference) {
		selected = append(selected, e.Region)
	}
	return selected
}

// MixShare is one category's share of the reference region and of the
// national total, in percent.
type MixShare struct {
	Category      string
	RegionCount   float64
	RegionShare   float64
	NationalCount float64
	NationalShare float64
}

// CategoryMix joins the reference region's category distribution for year
// with the national one. Categories missing on one side get zero there.
// Rows are ordered by national share descending.
func CategoryMix(t *aggregate.Tables, reference string, year int) []MixShare {
	regional := map[string]float64{}
	if reference != "" {
		regional = t.CategoryTotals(reference, year)
	}
	national := t.CategoryTotals("", year)
	regionalTotal := total(regional)
	nationalTotal := total(national)

	categories := make(map[string]bool)
	for c := range regional {
		categories[c] = true
	}
	for c := range national {
		categories[c] = true
	}

	mix := make([]MixShare, 0, len(categories))
	for c := range categories {
		share := MixShare{
			Category:      c,
			RegionCount:   regional[c],
			NationalCount: national[c],
		}
		if regionalTotal > 0 {
			share.RegionShare = 100 * regional[c] / regionalTotal
		}
		if nationalTotal > 0 {
			share.NationalShare = 100 * national[c] / nationalTotal
		}
		mix = append(mix, share)
	}

	sort.Slice(mix, func(i, j int) bool {
		if mix[i].NationalShare != mix[j].NationalShare {
			return mix[i].NationalShare > mix[j].NationalShare
		}
		return mix[i].Category < mix[j].Category
	})
	return mix
}

// CategoryCount is a category's absolute count within one region and year.
type CategoryCount struct {
	Category string
	Count    float64
}

// RegionMix lists the region's categories for year by count descending.
func RegionMix(t *aggregate.Tables, region string, year int) []CategoryCount {
	var counts []CategoryCount
	for category, count := range t.CategoryTotals(region, year) {
		counts = append(counts, CategoryCount{Category: category, Count: count})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Category < counts[j].Category
	})
	return counts
}

func total(m map[string]float64) float64 {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sum := 0.0
	for _, k := range keys {
		sum += m[k]
	}
	return sum
}
