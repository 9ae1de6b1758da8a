package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"regionstats/internal/analysis"
	"regionstats/internal/dataset"
)

// Overview is the console summary printed after a run.
type Overview struct {
	Stats      dataset.LoadStats
	Years      []int
	Regions    []string
	Categories []string
	LatestYear int
	Reference  string
	Ranking    []analysis.RankEntry
	Selected   []string
	TopN       int
	Written    int
	Skipped    int
}

var heading = color.New(color.FgYellow, color.Bold)

// PrintOverview writes the dataset overview and the latest-year ranking.
// Colour is dropped when w is not a terminal.
func PrintOverview(w io.Writer, o Overview) {
	heading.Fprintln(w, "\nDataset overview")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Item", "Value"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.Append([]string{"Rows read", strconv.Itoa(o.Stats.Total)})
	table.Append([]string{"Rows loaded", strconv.Itoa(o.Stats.Loaded)})
	table.Append([]string{"Rows rejected", strconv.Itoa(o.Stats.Rejected)})
	table.Append([]string{"Years", yearRange(o.Years)})
	table.Append([]string{"Regions", fmt.Sprintf("%d", len(o.Regions))})
	table.Append([]string{"Categories", strings.Join(o.Categories, ", ")})
	table.Append([]string{"Latest year", strconv.Itoa(o.LatestYear)})
	table.Append([]string{"Reference region", referenceRank(o)})
	table.Append([]string{"Comparison set", strings.Join(o.Selected, ", ")})
	table.Append([]string{"Charts written", strconv.Itoa(o.Written)})
	table.Append([]string{"Charts skipped", strconv.Itoa(o.Skipped)})
	table.Render()

	top := analysis.Top(o.Ranking, o.TopN)
	if len(top) == 0 {
		return
	}
	heading.Fprintf(w, "\nTop %d regions, %d\n", len(top), o.LatestYear)
	table = tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "Region", "Count"})
	for _, e := range top {
		table.Append([]string{strconv.Itoa(e.Rank), e.Region, formatNumber(e.Count)})
	}
	table.Render()
}

func referenceRank(o Overview) string {
	rank, ok := analysis.RankOf(o.Ranking, o.Reference)
	if !ok {
		return fmt.Sprintf("%s (not in data)", o.Reference)
	}
	return fmt.Sprintf("%s (rank %d of %d in %d)", o.Reference, rank, len(o.Ranking), o.LatestYear)
}

func yearRange(years []int) string {
	if len(years) == 0 {
		return "-"
	}
	return fmt.Sprintf("%d-%d", years[0], years[len(years)-1])
}

func formatNumber(num float64) string {
	if num >= 1000000 {
		return fmt.Sprintf("%.2fM", num/1000000)
	} else if num >= 1000 {
		return fmt.Sprintf("%.1fK", num/1000)
	}
	return fmt.Sprintf("%.0f", num)
}
