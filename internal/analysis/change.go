package analysis

import "regionstats/internal/aggregate"

// YearChange is the percent change of a series against its previous entry.
type YearChange struct {
	Year   int
	Value  float64
	Change Optional
}

// YoY computes period-over-period percent change over a year-ordered
// series. The first entry, and any entry whose predecessor is not
// positive, has an undefined change.
func YoY(series []aggregate.RegionYear) []YearChange {
	changes := make([]YearChange, len(series))
	for i, row := range series {
		changes[i] = YearChange{Year: row.Year, Value: row.Count}
		if i == 0 {
			continue
		}
		prev := series[i-1].Count
		if prev <= 0 {
			continue
		}
		changes[i].Change = Some((row.Count - prev) / prev * 100)
	}
	return changes
}

// YoYByRegion applies YoY to every region's total series.
func YoYByRegion(t *aggregate.Tables) map[string][]YearChange {
	out := make(map[string][]YearChange)
	for _, region := range t.Regions() {
		out[region] = YoY(t.RegionSeries(region))
	}
	return out
}
