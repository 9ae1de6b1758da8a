// Package chart turns the computed tables into chart descriptions and
// renders them. Build is pure: it decides which charts exist and what they
// contain. A Renderer turns one description into an image file.
package chart

import (
	"fmt"
	"sort"
	"strings"

	"regionstats/internal/aggregate"
	"regionstats/internal/analysis"
	"regionstats/internal/compare"
)

type Kind int

const (
	Line Kind = iota
	Bar
	GroupedBar
	HeatMap
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case Bar:
		return "bar"
	case GroupedBar:
		return "grouped_bar"
	case HeatMap:
		return "heat_map"
	}
	return "unknown"
}

// Series is a named list of points. For Line charts X holds years; for bar
// kinds Y is aligned with Chart.Categories and X is unused.
type Series struct {
	Name string
	X    []float64
	Y    []float64
}

// Grid is a heat map laid out as Rows (years) by Columns (regions).
// Values[r][c] may be undefined.
type Grid struct {
	Columns []string
	Rows    []int
	Values  [][]analysis.Optional
}

// Defined reports whether any cell holds a value.
func (g *Grid) Defined() bool {
	for _, row := range g.Values {
		for _, v := range row {
			if v.Defined() {
				return true
			}
		}
	}
	return false
}

type Chart struct {
	Name       string
	Title      string
	XLabel     string
	YLabel     string
	Kind       Kind
	Series     []Series
	Categories []string
	Grid       *Grid
	// InvertY draws the smallest value at the top (rank 1 first).
	InvertY bool
	// ValueFormat, when set, labels each bar with its value.
	ValueFormat string
}

// Skip records a chart that was not produced and why.
type Skip struct {
	Name   string
	Reason string
}

type Plan struct {
	Charts  []Chart
	Skipped []Skip
}

// Input carries everything the charts are drawn from.
type Input struct {
	Reference    string
	TopN         int
	HeadlineCode string
	LatestYear   int

	Tables         *aggregate.Tables
	Latest         []analysis.RankEntry
	Selected       []string
	YoY            map[string][]analysis.YearChange
	RegionGrowth   []analysis.Growth
	CategoryGrowth []analysis.Growth
	Mix            []compare.MixShare
	RegionMix      []compare.CategoryCount
	Trajectory     []analysis.RankEntry
	Headline       []aggregate.NationalYear
}

const topCategories = 10

// Build lays out the fixed chart sequence. Charts without data are skipped
// rather than drawn empty; every chart about the reference region is
// skipped when that region has no rows.
func Build(in Input) Plan {
	var plan Plan
	ref := strings.ToLower(in.Reference)
	hasReference := in.Tables != nil && in.Tables.HasRegion(in.Reference)

	add := func(c Chart, reason string) {
		if reason != "" {
			plan.Skipped = append(plan.Skipped, Skip{Name: c.Name, Reason: reason})
			return
		}
		plan.Charts = append(plan.Charts, c)
	}
	needReference := func(reason string) string {
		if !hasReference {
			return fmt.Sprintf("reference region %s has no rows", in.Reference)
		}
		return reason
	}

	add(nationalTotal(in))
	add(topRegions(in))
	add(selectedEvolution(in))
	c, reason := referenceMix(in, ref)
	add(c, needReference(reason))
	add(yoyHeatMap(in))
	add(regionGrowth(in))
	c, reason = referenceVsNationalMix(in, ref)
	add(c, needReference(reason))
	add(headlineCategory(in))
	c, reason = referenceVsNationalTotal(in, ref)
	add(c, needReference(reason))
	c, reason = referenceRank(in, ref)
	add(c, needReference(reason))
	c, reason = referenceCategoryGrowth(in, ref)
	add(c, needReference(reason))

	return plan
}

func nationalTotal(in Input) (Chart, string) {
	c := Chart{
		Name:   "national_total_by_year.png",
		Title:  "National total by year (all categories)",
		XLabel: "Year",
		YLabel: "Count",
		Kind:   Line,
	}
	if in.Tables == nil || in.Tables.Empty() {
		return c, "national table is empty"
	}
	c.Series = []Series{nationalSeries("National", in.Tables.NationalYear)}
	return c, ""
}

func topRegions(in Input) (Chart, string) {
	c := Chart{
		Name:   fmt.Sprintf("top_%d_regions_%d.png", in.TopN, in.LatestYear),
		Title:  fmt.Sprintf("Top %d regions by count, %d", in.TopN, in.LatestYear),
		XLabel: "Region",
		YLabel: "Count",
		Kind:   Bar,
	}
	top := analysis.Top(in.Latest, in.TopN)
	if len(top) == 0 {
		return c, "no ranking for the latest year"
	}

	s := Series{Name: "Count"}
	for _, e := range top {
		c.Categories = append(c.Categories, e.Region)
		s.Y = append(s.Y, e.Count)
	}
	c.Series = []Series{s}
	return c, ""
}

func selectedEvolution(in Input) (Chart, string) {
	c := Chart{
		Name:   "selected_regions_evolution.png",
		Title:  "Total by year, selected regions",
		XLabel: "Year",
		YLabel: "Count",
		Kind:   Line,
	}
	if in.Tables == nil {
		return c, "no tables"
	}
	for _, region := range in.Selected {
		if s := regionSeries(region, in.Tables.RegionSeries(region)); len(s.X) > 0 {
			c.Series = append(c.Series, s)
		}
	}
	if len(c.Series) == 0 {
		return c, "no selected region has data"
	}
	return c, ""
}

func referenceMix(in Input, ref string) (Chart, string) {
	c := Chart{
		Name:   fmt.Sprintf("%s_category_mix_%d.png", ref, in.LatestYear),
		Title:  fmt.Sprintf("%s by category, %d", in.Reference, in.LatestYear),
		XLabel: "Category",
		YLabel: "Count",
		Kind:   Bar,
	}
	if len(in.RegionMix) == 0 {
		return c, "reference region has no rows in the latest year"
	}

	s := Series{Name: in.Reference}
	for _, m := range in.RegionMix {
		c.Categories = append(c.Categories, m.Category)
		s.Y = append(s.Y, m.Count)
	}
	c.Series = []Series{s}
	return c, ""
}

// yoyHeatMap uses the selected regions when all of them have a series,
// otherwise every region.
func yoyHeatMap(in Input) (Chart, string) {
	c := Chart{
		Name:   "selected_regions_yoy_heatmap.png",
		Title:  "Year-over-year change (%), selected regions",
		XLabel: "Region",
		YLabel: "Year",
		Kind:   HeatMap,
	}
	if len(in.YoY) == 0 {
		return c, "no year-over-year series"
	}

	columns := in.Selected
	for _, region := range in.Selected {
		if _, ok := in.YoY[region]; !ok {
			columns = nil
			break
		}
	}
	if len(columns) == 0 {
		for region := range in.YoY {
			columns = append(columns, region)
		}
		sort.Strings(columns)
	}

	yearSet := make(map[int]bool)
	for _, region := range columns {
		for _, ch := range in.YoY[region] {
			yearSet[ch.Year] = true
		}
	}
	grid := &Grid{Columns: columns}
	for year := range yearSet {
		grid.Rows = append(grid.Rows, year)
	}
	sort.Ints(grid.Rows)

	rowIndex := make(map[int]int, len(grid.Rows))
	grid.Values = make([][]analysis.Optional, len(grid.Rows))
	for i, year := range grid.Rows {
		rowIndex[year] = i
		grid.Values[i] = make([]analysis.Optional, len(columns))
	}
	for col, region := range columns {
		for _, ch := range in.YoY[region] {
			grid.Values[rowIndex[ch.Year]][col] = ch.Change
		}
	}

	if !grid.Defined() {
		return c, "no defined year-over-year value"
	}
	c.Grid = grid
	return c, ""
}

func regionGrowth(in Input) (Chart, string) {
	c := Chart{
		Name:        fmt.Sprintf("cagr_top_%d_regions.png", in.TopN),
		Title:       fmt.Sprintf("CAGR by region (top %d), each region's available period", in.TopN),
		XLabel:      "Region",
		YLabel:      "CAGR (% per year)",
		Kind:        Bar,
		ValueFormat: "%.1f%%",
	}
	growth := analysis.DefinedGrowth(in.RegionGrowth, in.TopN)
	if len(growth) == 0 {
		return c, "no region has a defined CAGR"
	}
	c.Categories, c.Series = growthBars(growth)
	return c, ""
}

func referenceVsNationalMix(in Input, ref string) (Chart, string) {
	c := Chart{
		Name:   fmt.Sprintf("%s_vs_national_mix_%d.png", ref, in.LatestYear),
		Title:  fmt.Sprintf("Category mix, %s vs national (%d)", in.Reference, in.LatestYear),
		XLabel: "Category",
		YLabel: "Share (%)",
		Kind:   GroupedBar,
	}
	if len(in.RegionMix) == 0 || len(in.Mix) == 0 {
		return c, "reference region has no rows in the latest year"
	}

	regional := Series{Name: in.Reference}
	national := Series{Name: "National"}
	for _, m := range in.Mix {
		c.Categories = append(c.Categories, m.Category)
		regional.Y = append(regional.Y, m.RegionShare)
		national.Y = append(national.Y, m.NationalShare)
	}
	c.Series = []Series{regional, national}
	return c, ""
}

func headlineCategory(in Input) (Chart, string) {
	code := strings.ToLower(in.HeadlineCode)
	c := Chart{
		Name:   fmt.Sprintf("national_%s_by_year.png", code),
		Title:  fmt.Sprintf("National %s (%s) by year", categoryTitle(in.HeadlineCode), in.HeadlineCode),
		XLabel: "Year",
		YLabel: "Count",
		Kind:   Line,
	}
	if len(in.Headline) == 0 {
		return c, fmt.Sprintf("no rows for category %s", in.HeadlineCode)
	}
	c.Series = []Series{nationalSeries(in.HeadlineCode, in.Headline)}
	return c, ""
}

func referenceVsNationalTotal(in Input, ref string) (Chart, string) {
	c := Chart{
		Name:   fmt.Sprintf("%s_vs_national_total_by_year.png", ref),
		Title:  fmt.Sprintf("%s vs national, total by year", in.Reference),
		XLabel: "Year",
		YLabel: "Count",
		Kind:   Line,
	}
	if in.Tables == nil {
		return c, "no tables"
	}
	reference := regionSeries(in.Reference+" (total)", in.Tables.RegionSeries(in.Reference))
	if len(reference.X) == 0 {
		return c, "reference region has no series"
	}
	c.Series = []Series{nationalSeries("National (total)", in.Tables.NationalYear), reference}
	return c, ""
}

func referenceRank(in Input, ref string) (Chart, string) {
	c := Chart{
		Name:    fmt.Sprintf("%s_rank_by_year.png", ref),
		Title:   fmt.Sprintf("%s position in the regional ranking by year", in.Reference),
		XLabel:  "Year",
		YLabel:  "Position (1 = top)",
		Kind:    Line,
		InvertY: true,
	}
	if len(in.Trajectory) == 0 {
		return c, "reference region has no rank trajectory"
	}

	s := Series{Name: in.Reference}
	for _, e := range in.Trajectory {
		s.X = append(s.X, float64(e.Year))
		s.Y = append(s.Y, float64(e.Rank))
	}
	c.Series = []Series{s}
	return c, ""
}

func referenceCategoryGrowth(in Input, ref string) (Chart, string) {
	c := Chart{
		Name:        fmt.Sprintf("%s_cagr_top_categories.png", ref),
		Title:       fmt.Sprintf("%s CAGR by category (top %d)", in.Reference, topCategories),
		XLabel:      "Category",
		YLabel:      "CAGR (% per year)",
		Kind:        Bar,
		ValueFormat: "%.1f%%",
	}
	growth := analysis.DefinedGrowth(in.CategoryGrowth, topCategories)
	if len(growth) == 0 {
		return c, "no category has a defined CAGR"
	}
	c.Categories, c.Series = growthBars(growth)
	return c, ""
}

func growthBars(growth []analysis.Growth) ([]string, []Series) {
	labels := make([]string, len(growth))
	s := Series{Name: "CAGR", Y: make([]float64, len(growth))}
	for i, g := range growth {
		labels[i] = g.Key
		s.Y[i] = g.CAGR.Scale(100).Float()
	}
	return labels, []Series{s}
}

func nationalSeries(name string, rows []aggregate.NationalYear) Series {
	s := Series{Name: name}
	for _, row := range rows {
		s.X = append(s.X, float64(row.Year))
		s.Y = append(s.Y, row.Count)
	}
	return s
}

func regionSeries(name string, rows []aggregate.RegionYear) Series {
	s := Series{Name: name}
	for _, row := range rows {
		s.X = append(s.X, float64(row.Year))
		s.Y = append(s.Y, row.Count)
	}
	return s
}

func categoryTitle(code string) string {
	if code == "CD" {
		return "dentists"
	}
	return "registrations"
}
