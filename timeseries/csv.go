package timeseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// IntegerDates selects how integer values in the date column are read. The
// choice applies to the whole column.
type IntegerDates string

const (
	// IntegerSteps reads integers as day offsets from Epoch.
	IntegerSteps IntegerDates = "step"
	// IntegerYears reads integers as calendar years.
	IntegerYears IntegerDates = "year"
)

// CSVOptions holds options for loading a long-format panel from CSV.
type CSVOptions struct {
	IDColumns   []string     // Columns forming the series identifier (default: "unique_id")
	DateColumn  string       // Column name for timestamps (default: "ds")
	ValueColumn string       // Column name for values (default: "y", or a model name)
	SplitColumn string       // Optional backtest split column (default: "cutoff")
	DateFormat  string       // Preferred date format (default: "2006-01-02")
	IntDates    IntegerDates // Integer date handling (default: IntegerSteps)
	Delimiter   rune         // Field delimiter (default: ',')
	SkipRows    int          // Number of rows to skip before the header
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		IDColumns:   []string{"unique_id"},
		DateColumn:  "ds",
		ValueColumn: "y",
		SplitColumn: "cutoff",
		DateFormat:  "2006-01-02",
		IntDates:    IntegerSteps,
		Delimiter:   ',',
	}
}

// LoadPanelCSV loads a panel of the given kind from a CSV file.
func LoadPanelCSV(filename string, kind Kind, opts *CSVOptions) (*Panel, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	p, err := LoadPanelFromReader(file, kind, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return p, nil
}

// LoadPanelFromReader loads a panel from an io.Reader. The header row is
// required; the identifier, date and value columns must all be present.
// Rows whose value is empty, NA, NaN or null are skipped.
func LoadPanelFromReader(r io.Reader, kind Kind, opts *CSVOptions) (*Panel, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}
	intDates := opts.IntDates
	switch intDates {
	case "":
		intDates = IntegerSteps
	case IntegerSteps, IntegerYears:
	default:
		return nil, fmt.Errorf("unknown integer date mode %q", intDates)
	}

	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.TrimLeadingSpace = true

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", ErrNoData)
	}
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[clean(h)] = i
	}

	lookup := func(name string) (int, error) {
		idx, ok := columns[name]
		if !ok {
			return -1, fmt.Errorf("%w: missing column %q", ErrSchemaMismatch, name)
		}
		return idx, nil
	}

	idCols := opts.IDColumns
	if len(idCols) == 0 {
		idCols = []string{"unique_id"}
	}
	idIdx := make([]int, len(idCols))
	for i, c := range idCols {
		if idIdx[i], err = lookup(c); err != nil {
			return nil, err
		}
	}
	dateIdx, err := lookup(orDefault(opts.DateColumn, "ds"))
	if err != nil {
		return nil, err
	}
	valueIdx, err := lookup(orDefault(opts.ValueColumn, "y"))
	if err != nil {
		return nil, err
	}
	splitIdx := -1
	if opts.SplitColumn != "" {
		if idx, ok := columns[opts.SplitColumn]; ok {
			splitIdx = idx
		}
	}

	p := &Panel{Kind: kind}
	line := 1 + opts.SkipRows
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		valStr := clean(record[valueIdx])
		if valStr == "" || valStr == "NA" || valStr == "NaN" || valStr == "null" {
			continue
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid value %q", ErrSchemaMismatch, line, valStr)
		}

		ts, err := parseTime(clean(record[dateIdx]), opts.DateFormat, intDates)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrSchemaMismatch, line, err)
		}

		parts := make([]string, len(idIdx))
		for i, idx := range idIdx {
			parts[i] = clean(record[idx])
		}

		obs := Observation{ID: CompositeID(parts...), Timestamp: ts, Value: val}
		if splitIdx >= 0 {
			obs.Split = clean(record[splitIdx])
		}
		p.Observations = append(p.Observations, obs)
	}

	if len(p.Observations) == 0 {
		return nil, ErrNoData
	}
	return p, nil
}

// parseTime accepts integer dates, read according to mode, as well as
// calendar dates.
func parseTime(s, preferred string, mode IntegerDates) (time.Time, error) {
	if i, err := strconv.Atoi(s); err == nil {
		if mode == IntegerYears {
			return time.Date(i, time.January, 1, 0, 0, 0, 0, time.UTC), nil
		}
		return Step(i), nil
	}
	formats := []string{
		preferred,
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006/01/02",
		"01/02/2006",
		"02-Jan-2006",
	}
	for _, f := range formats {
		if f == "" {
			continue
		}
		if ts, err := time.Parse(f, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func clean(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\""))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
