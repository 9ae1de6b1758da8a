// Package export writes the computed tables outside the chart set: a
// summary workbook and a console overview.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"regionstats/internal/aggregate"
	"regionstats/internal/analysis"
	"regionstats/internal/compare"
)

// Summary is everything the workbook tabulates.
type Summary struct {
	Reference    string
	LatestYear   int
	Tables       *aggregate.Tables
	Ranking      []analysis.RankEntry
	Mix          []compare.MixShare
	RegionGrowth []analysis.Growth
	YoY          map[string][]analysis.YearChange
}

// WorkbookName is the file name of the summary workbook.
func WorkbookName(reference string, latestYear int) string {
	return fmt.Sprintf("summary_%s_%d.xlsx", strings.ToLower(reference), latestYear)
}

type sheet struct {
	name    string
	headers []string
	rows    [][]interface{}
}

// WriteWorkbook saves the summary as one sheet per table. Undefined metrics
// are left as empty cells.
func WriteWorkbook(path string, s Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DCE6F1"}},
	})
	if err != nil {
		return fmt.Errorf("workbook style: %w", err)
	}

	for i, sh := range sheets(s) {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sh.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("new sheet %s: %w", sh.name, err)
		}
		if err := writeSheet(f, sh, headerStyle); err != nil {
			return fmt.Errorf("sheet %s: %w", sh.name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sh sheet, headerStyle int) error {
	for i, header := range sh.headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sh.name, cell, header); err != nil {
			return err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sh.name, col, col, 18); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(sh.name, 1, 1, headerStyle); err != nil {
		return err
	}
	if err := f.SetPanes(sh.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	for i, row := range sh.rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func sheets(s Summary) []sheet {
	ref := strings.ToLower(s.Reference)
	out := []sheet{
		{name: "region_year", headers: []string{"Region", "Year", "Count"}},
		{name: "region_category_year", headers: []string{"Region", "Category", "Year", "Count"}},
		{name: "national_year", headers: []string{"Year", "Count"}},
		{name: fmt.Sprintf("ranking_%d", s.LatestYear), headers: []string{"Rank", "Region", "Count"}},
		{
			name: fmt.Sprintf("mix_%s_%d", ref, s.LatestYear),
			headers: []string{
				"Category",
				s.Reference + " count", s.Reference + " share (%)",
				"National count", "National share (%)",
			},
		},
		{name: "cagr_regions", headers: []string{"Region", "Start year", "End year", "Start count", "End count", "CAGR (%)"}},
		{name: "yoy_regions", headers: []string{"Region", "Year", "Count", "YoY (%)"}},
	}

	if s.Tables != nil {
		for _, r := range s.Tables.RegionYear {
			out[0].rows = append(out[0].rows, []interface{}{r.Region, r.Year, r.Count})
		}
		for _, r := range s.Tables.RegionCategoryYear {
			out[1].rows = append(out[1].rows, []interface{}{r.Region, r.Category, r.Year, r.Count})
		}
		for _, r := range s.Tables.NationalYear {
			out[2].rows = append(out[2].rows, []interface{}{r.Year, r.Count})
		}
	}
	for _, e := range s.Ranking {
		out[3].rows = append(out[3].rows, []interface{}{e.Rank, e.Region, e.Count})
	}
	for _, m := range s.Mix {
		out[4].rows = append(out[4].rows, []interface{}{
			m.Category, m.RegionCount, m.RegionShare, m.NationalCount, m.NationalShare,
		})
	}
	for _, g := range s.RegionGrowth {
		out[5].rows = append(out[5].rows, []interface{}{
			g.Key, g.StartYear, g.EndYear, g.StartValue, g.EndValue, cellValue(g.CAGR.Scale(100)),
		})
	}

	regions := make([]string, 0, len(s.YoY))
	for region := range s.YoY {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	for _, region := range regions {
		for _, ch := range s.YoY[region] {
			out[6].rows = append(out[6].rows, []interface{}{region, ch.Year, ch.Value, cellValue(ch.Change)})
		}
	}
	return out
}

// cellValue maps an undefined metric to an empty cell.
func cellValue(o analysis.Optional) interface{} {
	if v, ok := o.Get(); ok {
		return v
	}
	return nil
}
