// Package analysis derives growth rates, year-over-year changes and
// rankings from the aggregate tables. Ratios with no valid value are
// returned as undefined Optionals, never as errors.
package analysis

import (
	"math"
	"sort"

	"regionstats/internal/aggregate"
)

// Growth is the compound annual growth of one series between its own
// earliest and latest year. Key is a region code or a category label.
type Growth struct {
	Key        string
	StartYear  int
	EndYear    int
	StartValue float64
	EndValue   float64
	CAGR       Optional
}

// CAGR returns (v1/v0)^(1/n) - 1 as a fraction. It is undefined unless
// v0 > 0 and n > 0.
func CAGR(v0, v1 float64, n int) Optional {
	if v0 <= 0 || n <= 0 {
		return Undefined()
	}
	return Some(math.Pow(v1/v0, 1/float64(n)) - 1)
}

type yearPoint struct {
	year  int
	value float64
}

func growthOf(key string, points []yearPoint) (Growth, bool) {
	if len(points) == 0 {
		return Growth{}, false
	}

	first, last := points[0], points[0]
	for _, p := range points[1:] {
		if p.year < first.year {
			first = p
		}
		if p.year > last.year {
			last = p
		}
	}

	return Growth{
		Key:        key,
		StartYear:  first.year,
		EndYear:    last.year,
		StartValue: first.value,
		EndValue:   last.value,
		CAGR:       CAGR(first.value, last.value, last.year-first.year),
	}, true
}

// RegionGrowth computes CAGR for every region over its own year range,
// sorted by CAGR descending with undefined rates last.
func RegionGrowth(t *aggregate.Tables) []Growth {
	var growth []Growth
	for _, region := range t.Regions() {
		var points []yearPoint
		for _, row := range t.RegionSeries(region) {
			points = append(points, yearPoint{year: row.Year, value: row.Count})
		}
		if g, ok := growthOf(region, points); ok {
			growth = append(growth, g)
		}
	}

	sortGrowth(growth)
	return growth
}

// CategoryGrowth computes CAGR for each category within one region, each
// category over its own year range. Empty when the region has no rows.
func CategoryGrowth(t *aggregate.Tables, region string) []Growth {
	byCategory := make(map[string][]yearPoint)
	var categories []string
	for _, row := range t.RegionCategories(region) {
		if _, seen := byCategory[row.Category]; !seen {
			categories = append(categories, row.Category)
		}
		byCategory[row.Category] = append(byCategory[row.Category], yearPoint{year: row.Year, value: row.Count})
	}

	var growth []Growth
	for _, category := range categories {
		if g, ok := growthOf(category, byCategory[category]); ok {
			growth = append(growth, g)
		}
	}

	sortGrowth(growth)
	return growth
}

// DefinedGrowth drops entries whose CAGR is undefined and keeps at most
// limit of the rest. A limit <= 0 keeps all.
func DefinedGrowth(growth []Growth, limit int) []Growth {
	var out []Growth
	for _, g := range growth {
		if !g.CAGR.Defined() {
			continue
		}
		out = append(out, g)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func sortGrowth(growth []Growth) {
	sort.SliceStable(growth, func(i, j int) bool {
		a, aok := growth[i].CAGR.Get()
		b, bok := growth[j].CAGR.Get()
		if aok != bok {
			return aok
		}
		if aok && a != b {
			return a > b
		}
		return growth[i].Key < growth[j].Key
	})
}
