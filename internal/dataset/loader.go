package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/types"
)

// ErrLoad marks a source that cannot be used at all.
var ErrLoad = errors.New("dataset load failed")

// RequiredColumns must be present in every source.
var RequiredColumns = []string{"date", "spend", "impressions", "clicks", "purchases", "revenue"}

// derived columns some exports carry; they are recomputed from sums and never used as dimensions
var ignoredColumns = map[string]bool{
	"roas": true, "ctr": true, "cpc": true, "cpm": true, "conversion_rate": true,
}

var dateLayouts = []string{types.DateLayout, "2006-01-02 15:04:05", time.RFC3339, "01/02/2006"}

// Table is a loaded source: its rows, dimension columns and rows that failed to parse.
type Table struct {
	Path       string
	Rows       []types.Row
	Dimensions []string
	Skipped    int
}

// Load reads a .csv or .xlsx file and returns its rows.
func Load(path string) ([]types.Row, error) {
	t, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	return t.Rows, nil
}

// LoadTable reads a .csv or .xlsx file. Header names are matched case-insensitively.
func LoadTable(path string) (*Table, error) {
	return LoadTableWithLogger(path, logger.New())
}

// LoadTableWithLogger is LoadTable logging through l.
func LoadTableWithLogger(path string, l *logger.Logger) (*Table, error) {
	log := l.WithComponent("dataset.loader").WithField("path", path)

	records, err := readRecords(path)
	if err != nil {
		log.WithError(err).Error("read failed")
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	if len(records) <= 1 {
		return nil, fmt.Errorf("%w: %s: no data rows", ErrLoad, path)
	}

	header := make([]string, len(records[0]))
	index := map[string]int{}
	for i, h := range records[0] {
		n := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		header[i] = n
		if _, dup := index[n]; !dup {
			index[n] = i
		}
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: missing required columns %s", ErrLoad, path, strings.Join(missing, ", "))
	}

	required := map[string]bool{}
	for _, c := range RequiredColumns {
		required[c] = true
	}
	var dims []string
	for i, h := range header {
		if h == "" || required[h] || ignoredColumns[h] || index[h] != i {
			continue
		}
		dims = append(dims, h)
	}

	t := &Table{Path: path, Dimensions: dims}
	for i, rec := range records[1:] {
		row, err := parseRow(rec, index, dims)
		if err != nil {
			t.Skipped++
			log.WithField("line", i+2).WithError(err).Debug("skipping row")
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("%w: %s: no parseable rows (%d skipped)", ErrLoad, path, t.Skipped)
	}

	log.WithField("rows", len(t.Rows)).
		WithField("skipped", t.Skipped).
		WithField("dimensions", strings.Join(dims, ",")).
		Info("dataset loaded")
	return t, nil
}

func readRecords(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	default:
		return readCSV(path)
	}
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

func parseRow(rec []string, index map[string]int, dims []string) (types.Row, error) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var row types.Row
	d, err := parseDate(cell("date"))
	if err != nil {
		return row, err
	}
	row.Date = d

	nums := []struct {
		col string
		dst *float64
	}{
		{"spend", &row.Spend},
		{"impressions", &row.Impressions},
		{"clicks", &row.Clicks},
		{"purchases", &row.Purchases},
		{"revenue", &row.Revenue},
	}
	for _, n := range nums {
		v, err := parseNumber(cell(n.col))
		if err != nil {
			return row, fmt.Errorf("%s: %w", n.col, err)
		}
		*n.dst = v
	}

	row.Dimensions = make(map[string]string, len(dims))
	for _, dim := range dims {
		row.Dimensions[dim] = cell(dim)
	}
	return row, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// blank numeric cells count as zero
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
