package dataset

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestClean_FiltersMalformedRows(t *testing.T) {
	rows := [][]string{
		{" df ", "2010", " cd ", "100"},
		{"SP", "2010", "TSB", "50.5"},
		{"SP", "abc", "CD", "10"},      // bad year
		{"SP", "2011", "CD", "many"},   // bad count
		{"SPX", "2011", "CD", "10"},    // region too long
		{"S1", "2011", "CD", "10"},     // region not letters
		{"RJ", "2011", "CD"},           // short row
		{"RJ", "2011", "CD", "1", "x"}, // long row
		{"RJ", "2011", "CD", "-3"},     // negative count
		{"", "", "", ""},               // blank, not counted
		{"RJ", "2012.0", "XYZ", "7"},
	}

	ds := Clean(rows)

	assert.Equal(t, 10, ds.Stats.Total)
	assert.Equal(t, 3, ds.Stats.Loaded)
	assert.Equal(t, 7, ds.Stats.Rejected)
	require.Len(t, ds.Records, 3)

	assert.Equal(t, Record{Region: "DF", Year: 2010, Code: "CD", Category: "Cirurgião Dentista", Count: 100}, ds.Records[0])
	assert.Equal(t, "Técnico em Saúde Bucal", ds.Records[1].Category)
	assert.Equal(t, 2012, ds.Records[2].Year)
	assert.Equal(t, "XYZ", ds.Records[2].Category, "unknown codes keep their code as label")
}

func TestClean_RecordsRejectionReasons(t *testing.T) {
	ds := Clean([][]string{
		{"DF", "2010", "CD", "1"},
		{"", ""},
		{"DF", "20x0", "CD", "1"},
		{"DF", "2010", "CD"},
		{"D", "2010", "CD", "1"},
		{"DF", "2010", "CD", "NaN"},
	})

	assert.Equal(t, []Rejection{
		{Row: 3, Reason: `invalid year "20x0"`},
		{Row: 4, Reason: "expected 4 fields, got 3"},
		{Row: 5, Reason: `invalid region "D"`},
		{Row: 6, Reason: `invalid count "NaN"`},
	}, ds.Rejections)
	assert.Equal(t, len(ds.Rejections), ds.Stats.Rejected)
}

func TestClean_RecordsAreWellFormed(t *testing.T) {
	rows := [][]string{
		{"df", "2010", "cd", "1"},
		{"mg", "2011", "asb", "2"},
		{"12", "2011", "asb", "2"},
		{"go", "x", "asb", "2"},
	}
	pattern := regexp.MustCompile(`^[A-Z]{2}$`)

	for _, r := range Clean(rows).Records {
		assert.Regexp(t, pattern, r.Region)
		assert.Greater(t, r.Year, 0)
		assert.GreaterOrEqual(t, r.Count, 0.0)
	}
}

func TestClean_Empty(t *testing.T) {
	ds := Clean(nil)
	assert.Empty(t, ds.Records)
	assert.Equal(t, LoadStats{}, ds.Stats)
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Auxiliar em Saúde Bucal", CategoryLabel("ASB"))
	assert.Equal(t, "NEW", CategoryLabel("NEW"))
	assert.True(t, KnownCategory("ECIPO"))
	assert.False(t, KnownCategory("NEW"))
}

func TestReadDelimited(t *testing.T) {
	input := "\ufeffDF,2010,CD,10\nSP;2010;CD;20\n\"GO,2011,CD,5\n"

	rows, malformed, err := ReadDelimited(strings.NewReader(input), ',')
	require.NoError(t, err)
	assert.Equal(t, 0, malformed)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"DF", "2010", "CD", "10"}, rows[0])

	ds := Clean(rows)
	assert.Equal(t, 1, ds.Stats.Loaded)
	assert.Equal(t, "DF", ds.Records[0].Region)
}

func TestReadDelimited_CustomDelimiter(t *testing.T) {
	rows, _, err := ReadDelimited(strings.NewReader("SP;2010;CD;20\n"), ';')
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"SP", "2010", "CD", "20"}}, rows)
}

func TestLoad_FirstRowIsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte("DF,2010,CD,10\nDF,2011,CD,12\n"), 0o644))

	ds, err := Load(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Stats.Loaded)
	assert.Equal(t, []int{2010, 2011}, ds.Years())
	assert.Equal(t, []string{"DF"}, ds.Regions())
	assert.Equal(t, []string{"Cirurgião Dentista"}, ds.Categories())
	assert.Equal(t, []string{"CD"}, ds.Codes())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), LoadOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInputUnreadable)
}

func TestLoad_Workbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"DF", 2010, "CD", 10}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"SP", 2010, "TPD", 4.5}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"??", 2010, "TPD", 1}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := Load(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Stats.Loaded)
	assert.Equal(t, 1, ds.Stats.Rejected)
	assert.Equal(t, 4.5, ds.Records[1].Count)
}

func TestLoad_WorkbookFormattedNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"DF", 2010, "CD", 1234}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"SP", 2011, "CD", 25000.5}))
	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "B1", "D2", thousands))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := Load(path, LoadOptions{})
	require.NoError(t, err)
	assert.Empty(t, ds.Rejections)
	require.Equal(t, 2, ds.Stats.Loaded)
	assert.Equal(t, Record{Region: "DF", Year: 2010, Code: "CD", Category: "Cirurgião Dentista", Count: 1234}, ds.Records[0])
	assert.Equal(t, 2011, ds.Records[1].Year)
	assert.Equal(t, 25000.5, ds.Records[1].Count)
}

func TestLoad_RejectionsReportInputLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	input := "DF,2010,\"C\nD\",5\n\nSP,2010,CD,many\nGO,2010,CD,1\n"
	require.NoError(t, os.WriteFile(path, []byte(input), 0o644))

	ds, err := Load(path, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Stats.Loaded)
	assert.Equal(t, []Rejection{{Row: 4, Reason: `invalid count "many"`}}, ds.Rejections)
}

func TestLoad_CorruptWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := Load(path, LoadOptions{})
	assert.ErrorIs(t, err, ErrInputUnreadable)
}
