package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vanderheijden86/trackr/pkg/metrics"
	"github.com/vanderheijden86/trackr/pkg/model"
)

// Column names of the estimates export.
const (
	ColEntity      = "Country/Region"
	ColDate        = "Date"
	ColParameter   = "days_infectious"
	ColValue       = "R"
	ColCI65Upper   = "ci_65_u"
	ColCI65Lower   = "ci_65_l"
	ColCI95Upper   = "ci_95_u"
	ColCI95Lower   = "ci_95_l"
	ColLastUpdated = "last_updated"
)

// requiredColumns lists the header fields every export must carry, in the
// order WriteCSV emits them.
var requiredColumns = []string{
	ColEntity, ColDate, ColParameter, ColValue,
	ColCI65Upper, ColCI65Lower, ColCI95Upper, ColCI95Lower,
}

// ErrBadHeader is returned when the CSV header lacks a required column.
var ErrBadHeader = errors.New("csv header is missing a required column")

// dateLayouts are tried in order when parsing date cells.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// RowWarning is called for every data row that could not be parsed.
// line is 1-based and counts the header.
type RowWarning func(line int, err error)

// ReadCSVFile opens path and parses it with ParseCSV.
func ReadCSVFile(path string, warn RowWarning) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	ds, err := ParseCSV(f, warn)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ds, nil
}

// ParseCSV reads an estimates export. Columns may appear in any order;
// extra columns are ignored. Malformed rows are skipped and reported to
// warn when it is non-nil. LastUpdated is the latest last_updated cell,
// or the latest Date when that column is absent or empty.
func ParseCSV(r io.Reader, warn RowWarning) (*model.Dataset, error) {
	defer metrics.Timer(metrics.CSVParse)()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrBadHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	ds := &model.Dataset{}
	var lastUpdated, maxDate time.Time
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				if warn != nil {
					warn(line, err)
				}
				continue
			}
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		rec, updated, err := parseRow(row, idx)
		if err != nil {
			if warn != nil {
				warn(line, err)
			}
			continue
		}
		ds.Records = append(ds.Records, rec)
		if rec.Date.After(maxDate) {
			maxDate = rec.Date
		}
		if updated.After(lastUpdated) {
			lastUpdated = updated
		}
	}

	ds.LastUpdated = lastUpdated
	if ds.LastUpdated.IsZero() {
		ds.LastUpdated = maxDate
	}
	return ds, nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrBadHeader, strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(row []string, idx map[string]int) (model.Record, time.Time, error) {
	cell := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var rec model.Record
	rec.EntityID = cell(ColEntity)
	if rec.EntityID == "" {
		return rec, time.Time{}, errors.New("empty Country/Region")
	}

	date, err := parseDate(cell(ColDate))
	if err != nil {
		return rec, time.Time{}, fmt.Errorf("Date: %w", err)
	}
	rec.Date = date

	param, err := parseParameter(cell(ColParameter))
	if err != nil {
		return rec, time.Time{}, fmt.Errorf("days_infectious: %w", err)
	}
	rec.Parameter = param

	floats := []struct {
		col string
		dst *float64
	}{
		{ColValue, &rec.Value},
		{ColCI65Upper, &rec.CI65Upper},
		{ColCI65Lower, &rec.CI65Lower},
		{ColCI95Upper, &rec.CI95Upper},
		{ColCI95Lower, &rec.CI95Lower},
	}
	for _, f := range floats {
		v, err := parseFloat(cell(f.col))
		if err != nil {
			return rec, time.Time{}, fmt.Errorf("%s: %w", f.col, err)
		}
		*f.dst = v
	}

	var updated time.Time
	if s := cell(ColLastUpdated); s != "" {
		if t, err := parseDate(s); err == nil {
			updated = t
		}
	}
	return rec, updated, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseParameter accepts integer cells and float cells with no fraction
// ("7" and "7.0").
func parseParameter(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("non-integer value %q", s)
	}
	return int(f), nil
}

// parseFloat maps empty and NA cells to NaN.
func parseFloat(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// WriteCSV writes ds in the export layout, one row per record in dataset
// order. last_updated carries ds.LastUpdated on every row.
func WriteCSV(w io.Writer, ds *model.Dataset) error {
	cw := csv.NewWriter(w)
	header := append(append([]string(nil), requiredColumns...), ColLastUpdated)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	updated := ""
	if ds != nil && !ds.LastUpdated.IsZero() {
		updated = ds.LastUpdated.UTC().Format("2006-01-02 15:04:05")
	}
	row := make([]string, len(header))
	for _, r := range recordsOf(ds) {
		row[0] = r.EntityID
		row[1] = r.Date.Format("2006-01-02")
		row[2] = strconv.Itoa(r.Parameter)
		row[3] = formatFloat(r.Value)
		row[4] = formatFloat(r.CI65Upper)
		row[5] = formatFloat(r.CI65Lower)
		row[6] = formatFloat(r.CI95Upper)
		row[7] = formatFloat(r.CI95Lower)
		row[8] = updated
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write %s %s: %w", r.EntityID, row[1], err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DownloadName returns the attachment file name for a CSV download made at now.
func DownloadName(now time.Time) string {
	return "database_" + now.Format("20060102_150405") + ".csv"
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func recordsOf(ds *model.Dataset) []model.Record {
	if ds == nil {
		return nil
	}
	return ds.Records
}
