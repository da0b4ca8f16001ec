package table

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
)

// Layouts accepted for the datetime column, tried in order.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006/01/02 15:04:05",
	"2006-1-2T15:4:5Z",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime parses a logger timestamp. Zone-less values are taken as UTC
// wall-clock times; zoned values are converted to UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("table: empty time")
	}
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("table: invalid time %q", s)
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "na", "null", "none":
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// ReadOptions describes how to read a sensor CSV file.
type ReadOptions struct {
	// Headers names the columns. When empty, the names are taken from
	// the header row (HasHeader must then be set).
	Headers []string

	// HasHeader reports whether the first row is a header row.
	HasHeader bool

	// StringCols are columns always kept as text.
	StringCols []string
}

// ReadFile reads a sensor CSV file. See ReadCSV.
func ReadFile(fname, name string, opts ReadOptions) (*Table, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadCSV(f, name, opts)
	if err != nil {
		return nil, fmt.Errorf("%w (file=%s)", err, fname)
	}
	return t, nil
}

// ReadCSV reads CSV records into a table.
// The first column is parsed as the datetime column; unparseable times are
// stored as missing. Columns listed in opts.StringCols are kept as text; any
// other column is numeric when all its non-empty cells parse as numbers.
// Rows shorter than the header are padded with missing values.
func ReadCSV(r io.Reader, name string, opts ReadOptions) (*Table, error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true
	rd.ReuseRecord = false

	headers := opts.Headers
	if opts.HasHeader {
		rec, err := rd.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("table: %q: missing header row", name)
			}
			return nil, fmt.Errorf("table: %q: could not read header: %w", name, err)
		}
		if len(headers) == 0 {
			headers = make([]string, len(rec))
			for i, h := range rec {
				headers[i] = strings.TrimSpace(h)
			}
		}
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("table: %q: no column headers", name)
	}

	cells := make([][]string, len(headers))
	line := 0
	for {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("table: %q: record %d: %w", name, line, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) > len(headers) {
			return nil, fmt.Errorf(
				"table: %q: record %d has %d fields, expected %d (headers=%v)",
				name, line, len(rec), len(headers), headers,
			)
		}
		for i := range headers {
			v := ""
			if i < len(rec) {
				v = rec[i]
			}
			cells[i] = append(cells[i], v)
		}
	}

	forced := make(map[string]bool, len(opts.StringCols))
	for _, s := range opts.StringCols {
		forced[s] = true
	}

	t := New(name)
	for i, h := range headers {
		var err error
		switch {
		case i == 0:
			ts := make([]time.Time, len(cells[i]))
			for j, s := range cells[i] {
				v, perr := ParseTime(s)
				if perr == nil {
					ts[j] = v
				}
			}
			err = t.AddTime(h, ts)
		case forced[h]:
			err = t.AddString(h, trimAll(cells[i]))
		default:
			vs, ok := parseFloats(cells[i])
			if ok {
				err = t.AddFloat(h, vs)
			} else {
				err = t.AddString(h, trimAll(cells[i]))
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

func parseFloats(cells []string) ([]float64, bool) {
	vs := make([]float64, len(cells))
	for i, s := range cells {
		v, ok := parseFloat(s)
		if !ok {
			return nil, false
		}
		vs[i] = v
	}
	return vs, true
}

func trimAll(cells []string) []string {
	o := make([]string, len(cells))
	for i, s := range cells {
		o[i] = strings.TrimSpace(s)
	}
	return o
}

// WriteCSV writes the table as CSV, with a header row.
// Times are written as 2006-01-02 15:04:05 and missing values as empty cells.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	err := cw.Write(t.Names())
	if err != nil {
		return err
	}
	rec := make([]string, len(t.cols))
	for i := 0; i < t.n; i++ {
		for j, c := range t.cols {
			switch c.kind {
			case Time:
				rec[j] = ""
				if v := c.times[i]; !v.IsZero() {
					rec[j] = v.Format("2006-01-02 15:04:05")
				}
			case String:
				rec[j] = c.strs[i]
			default:
				rec[j] = ""
				if v := c.floats[i]; !math.IsNaN(v) {
					rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
				}
			}
		}
		err = cw.Write(rec)
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
