// Package aggregate groups cleaned records into the summary tables used by
// the metrics and chart stages.
package aggregate

import (
	"sort"

	"regionstats/internal/dataset"
)

type RegionYear struct {
	Region string
	Year   int
	Count  float64
}

type RegionCategoryYear struct {
	Region   string
	Category string
	Year     int
	Count    float64
}

type NationalYear struct {
	Year  int
	Count float64
}

// Tables holds the three summary tables. Rows are sorted by their key
// (region, category, year) so every consumer sees the same order.
type Tables struct {
	RegionYear         []RegionYear
	RegionCategoryYear []RegionCategoryYear
	NationalYear       []NationalYear
}

type regionCategoryKey struct {
	region   string
	category string
	year     int
}

// Build sums records into the summary tables. The region and national
// totals are folded from the finest table so the totals always reconcile.
func Build(records []dataset.Record) *Tables {
	cells := make(map[regionCategoryKey]float64)
	for _, r := range records {
		cells[regionCategoryKey{r.Region, r.Category, r.Year}] += r.Count
	}

	t := &Tables{RegionCategoryYear: make([]RegionCategoryYear, 0, len(cells))}
	for k, v := range cells {
		t.RegionCategoryYear = append(t.RegionCategoryYear, RegionCategoryYear{
			Region:   k.region,
			Category: k.category,
			Year:     k.year,
			Count:    v,
		})
	}
	sort.Slice(t.RegionCategoryYear, func(i, j int) bool {
		a, b := t.RegionCategoryYear[i], t.RegionCategoryYear[j]
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Year < b.Year
	})

	regionIndex := make(map[RegionYear]int)
	for _, row := range t.RegionCategoryYear {
		key := RegionYear{Region: row.Region, Year: row.Year}
		idx, exists := regionIndex[key]
		if !exists {
			idx = len(t.RegionYear)
			regionIndex[key] = idx
			t.RegionYear = append(t.RegionYear, key)
		}
		t.RegionYear[idx].Count += row.Count
	}
	sort.Slice(t.RegionYear, func(i, j int) bool {
		a, b := t.RegionYear[i], t.RegionYear[j]
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		return a.Year < b.Year
	})

	t.NationalYear = foldNational(t.RegionYear)

	return t
}

func foldNational(rows []RegionYear) []NationalYear {
	totals := make(map[int]float64)
	for _, row := range rows {
		totals[row.Year] += row.Count
	}

	national := make([]NationalYear, 0, len(totals))
	for _, year := range sortedYears(totals) {
		national = append(national, NationalYear{Year: year, Count: totals[year]})
	}
	return national
}

// NationalByCode builds the national per-year series restricted to one
// category code.
func NationalByCode(records []dataset.Record, code string) []NationalYear {
	totals := make(map[int]float64)
	for _, r := range records {
		if r.Code == code {
			totals[r.Year] += r.Count
		}
	}

	series := make([]NationalYear, 0, len(totals))
	for _, year := range sortedYears(totals) {
		series = append(series, NationalYear{Year: year, Count: totals[year]})
	}
	return series
}

func (t *Tables) Empty() bool {
	return len(t.RegionYear) == 0
}

// LatestYear returns the most recent year in the national table.
func (t *Tables) LatestYear() (int, bool) {
	if len(t.NationalYear) == 0 {
		return 0, false
	}
	return t.NationalYear[len(t.NationalYear)-1].Year, true
}

// Years returns every year present, ascending.
func (t *Tables) Years() []int {
	years := make([]int, len(t.NationalYear))
	for i, row := range t.NationalYear {
		years[i] = row.Year
	}
	return years
}

// Regions returns the region codes present, in table order.
func (t *Tables) Regions() []string {
	var regions []string
	for i, row := range t.RegionYear {
		if i == 0 || t.RegionYear[i-1].Region != row.Region {
			regions = append(regions, row.Region)
		}
	}
	return regions
}

func (t *Tables) HasRegion(region string) bool {
	for _, row := range t.RegionYear {
		if row.Region == region {
			return true
		}
	}
	return false
}

// RegionSeries returns the region's totals ordered by year.
func (t *Tables) RegionSeries(region string) []RegionYear {
	var series []RegionYear
	for _, row := range t.RegionYear {
		if row.Region == region {
			series = append(series, row)
		}
	}
	return series
}

// Year returns every region's total for year, in region order.
func (t *Tables) Year(year int) []RegionYear {
	var rows []RegionYear
	for _, row := range t.RegionYear {
		if row.Year == year {
			rows = append(rows, row)
		}
	}
	return rows
}

// RegionCategories returns the region's per-category rows, ordered by
// category then year.
func (t *Tables) RegionCategories(region string) []RegionCategoryYear {
	var rows []RegionCategoryYear
	for _, row := range t.RegionCategoryYear {
		if row.Region == region {
			rows = append(rows, row)
		}
	}
	return rows
}

// CategoryTotals sums counts per category for one year. An empty region
// selects every region.
func (t *Tables) CategoryTotals(region string, year int) map[string]float64 {
	totals := make(map[string]float64)
	for _, row := range t.RegionCategoryYear {
		if row.Year != year {
			continue
		}
		if region != "" && row.Region != region {
			continue
		}
		totals[row.Category] += row.Count
	}
	return totals
}

func sortedYears(m map[int]float64) []int {
	years := make([]int, 0, len(m))
	for year := range m {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}
