package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// LoadOptions controls how the input file is read.
type LoadOptions struct {
	// Delimiter separates fields in text input. Zero means ','.
	Delimiter rune
	Logger    *slog.Logger
}

// Load reads the input at path and returns the cleaned dataset. Workbooks
// (.xlsx) are read from their first sheet; any other file is treated as
// delimited text without a header row.
func Load(path string, opts LoadOptions) (*Dataset, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		rows      [][]string
		lines     []int
		malformed int
		err       error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = readWorkbookRows(path)
	} else {
		rows, lines, malformed, err = readDelimitedRows(path, opts.Delimiter)
	}
	if err != nil {
		return nil, err
	}

	ds := cleanLines(rows, lines)
	ds.Stats.Total += malformed
	ds.Stats.Rejected += malformed

	for _, r := range ds.Rejections {
		logger.Debug("row rejected", slog.Int("row", r.Row), slog.String("reason", r.Reason))
	}
	var unknown []string
	for _, code := range ds.Codes() {
		if !KnownCategory(code) {
			unknown = append(unknown, code)
		}
	}
	if len(unknown) > 0 {
		logger.Warn("unrecognised category codes kept as labels", slog.Any("codes", unknown))
	}

	logger.Info("input loaded",
		slog.String("path", path),
		slog.Int("rows_total", ds.Stats.Total),
		slog.Int("rows_loaded", ds.Stats.Loaded),
		slog.Int("rows_rejected", ds.Stats.Rejected))

	return ds, nil
}

// ReadDelimited parses delimited text from r. Lines the CSV parser cannot
// split are counted in malformed instead of aborting the read.
func ReadDelimited(r io.Reader, delimiter rune) (rows [][]string, malformed int, err error) {
	rows, _, malformed, err = readDelimited(r, delimiter)
	return rows, malformed, err
}

// readDelimited also returns the input line each row starts on.
func readDelimited(r io.Reader, delimiter rune) (rows [][]string, lines []int, malformed int, err error) {
	if delimiter == 0 {
		delimiter = ','
	}

	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				malformed++
				continue
			}
			return nil, nil, 0, fmt.Errorf("%w: %v", ErrInputUnreadable, err)
		}

		line, _ := reader.FieldPos(0)
		if len(rows) == 0 && len(record) > 0 {
			record[0] = strings.TrimPrefix(record[0], utf8BOM)
		}
		rows = append(rows, record)
		lines = append(lines, line)
	}

	return rows, lines, malformed, nil
}

func readDelimitedRows(path string, delimiter rune) ([][]string, []int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%w: %v", ErrInputUnreadable, err)
	}
	defer file.Close()

	return readDelimited(file, delimiter)
}

func readWorkbookRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputUnreadable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook %s has no sheets", ErrInputUnreadable, path)
	}

	// Raw values, so number formats such as "#,##0" do not reach the parser.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %v", ErrInputUnreadable, sheets[0], err)
	}

	// GetRows trims trailing empty cells, so pad short rows back to the
	// positional width before shape checks.
	for i, row := range rows {
		if len(row) > 0 && len(row) < fieldsPerRow {
			padded := make([]string, fieldsPerRow)
			copy(padded, row)
			rows[i] = padded
		}
	}

	return rows, nil
}
