// Package dataset reads registration count records and cleans them into
// typed Records. Malformed rows never fail a load; they are counted in
// LoadStats and dropped.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrInputUnreadable is returned when the input cannot be opened or parsed at all.
var ErrInputUnreadable = errors.New("input unreadable")

const fieldsPerRow = 4

var regionPattern = regexp.MustCompile(`^[A-Z]{2}$`)

// Record is one cleaned (region, year, category, count) observation.
type Record struct {
	Region   string
	Year     int
	Code     string
	Category string
	Count    float64
}

// LoadStats describes what happened to the raw rows during cleaning.
// Blank rows are not counted.
type LoadStats struct {
	Total    int
	Loaded   int
	Rejected int
}

// Rejection names an input row that cleaning dropped. Row is the 1-based
// line the record starts on in text input, or the sheet row in a workbook.
type Rejection struct {
	Row    int
	Reason string
}

type Dataset struct {
	Records    []Record
	Stats      LoadStats
	Rejections []Rejection
}

// Clean converts raw positional rows (region, year, category, count) into
// Records. Rows that fail coercion or shape checks are excluded and counted.
func Clean(rows [][]string) *Dataset {
	return cleanLines(rows, nil)
}

// cleanLines is Clean with the input line of each row. A nil lines numbers
// rows by position.
func cleanLines(rows [][]string, lines []int) *Dataset {
	ds := &Dataset{Records: make([]Record, 0, len(rows))}

	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		ds.Stats.Total++

		record, reason := cleanRow(row)
		if reason != "" {
			ds.Stats.Rejected++
			line := i + 1
			if i < len(lines) {
				line = lines[i]
			}
			ds.Rejections = append(ds.Rejections, Rejection{Row: line, Reason: reason})
			continue
		}

		ds.Records = append(ds.Records, record)
		ds.Stats.Loaded++
	}

	return ds
}

// cleanRow returns the record, or the reason the row was dropped.
func cleanRow(row []string) (Record, string) {
	if len(row) != fieldsPerRow {
		return Record{}, fmt.Sprintf("expected %d fields, got %d", fieldsPerRow, len(row))
	}

	region := strings.ToUpper(strings.TrimSpace(row[0]))
	code := strings.ToUpper(strings.TrimSpace(row[2]))

	year, ok := parseYear(row[1])
	if !ok {
		return Record{}, fmt.Sprintf("invalid year %q", row[1])
	}

	count, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	if err != nil || math.IsNaN(count) || math.IsInf(count, 0) || count < 0 {
		return Record{}, fmt.Sprintf("invalid count %q", row[3])
	}

	if !regionPattern.MatchString(region) {
		return Record{}, fmt.Sprintf("invalid region %q", row[0])
	}

	return Record{
		Region:   region,
		Year:     year,
		Code:     code,
		Category: CategoryLabel(code),
		Count:    count,
	}, ""
}

// parseYear accepts plain integers and integral decimals such as "2012.0",
// which spreadsheet exports commonly produce.
func parseYear(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if year, err := strconv.Atoi(raw); err == nil {
		return year, true
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Years returns the distinct years present, ascending.
func (d *Dataset) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for _, r := range d.Records {
		if !seen[r.Year] {
			seen[r.Year] = true
			years = append(years, r.Year)
		}
	}
	sort.Ints(years)
	return years
}

// Regions returns the distinct region codes present, sorted.
func (d *Dataset) Regions() []string {
	return d.distinct(func(r Record) string { return r.Region })
}

// Categories returns the distinct category labels present, sorted.
func (d *Dataset) Categories() []string {
	return d.distinct(func(r Record) string { return r.Category })
}

// Codes returns the distinct category codes present, sorted.
func (d *Dataset) Codes() []string {
	return d.distinct(func(r Record) string { return r.Code })
}

func (d *Dataset) distinct(key func(Record) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.Records {
		k := key(r)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
