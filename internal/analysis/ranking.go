package analysis

import (
	"sort"

	"regionstats/internal/aggregate"
)

type RankEntry struct {
	Year   int
	Region string
	Count  float64
	Rank   int
}

// RankYear orders the regions present in year by total descending. Equal
// totals keep table (region) order.
func RankYear(t *aggregate.Tables, year int) []RankEntry {
	rows := t.Year(year)
	return rank(year, rows)
}

func rank(year int, rows []aggregate.RegionYear) []RankEntry {
	entries := make([]RankEntry, len(rows))
	for i, row := range rows {
		entries[i] = RankEntry{Year: year, Region: row.Region, Count: row.Count}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// RankOf returns the rank of region within entries.
func RankOf(entries []RankEntry, region string) (int, bool) {
	for _, e := range entries {
		if e.Region == region {
			return e.Rank, true
		}
	}
	return 0, false
}

// RankTrajectory ranks every year and keeps the region's own entry for the
// years in which it appears.
func RankTrajectory(t *aggregate.Tables, region string) []RankEntry {
	var trajectory []RankEntry
	for _, year := range t.Years() {
		for _, e := range RankYear(t, year) {
			if e.Region == region {
				trajectory = append(trajectory, e)
				break
			}
		}
	}
	return trajectory
}

// Top returns at most n entries from the head of a ranking.
func Top(entries []RankEntry, n int) []RankEntry {
	if n < 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}
