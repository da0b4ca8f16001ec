package table

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Set is an ordered collection of sensor tables, each with the list of
// variables to analyse.
type Set struct {
	names  []string
	tables map[string]*Table
	vars   map[string][]string
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{
		tables: make(map[string]*Table),
		vars:   make(map[string][]string),
	}
}

// Add adds or replaces the table of a sensor.
func (s *Set) Add(sensor string, t *Table, vars []string) {
	if _, ok := s.tables[sensor]; !ok {
		s.names = append(s.names, sensor)
	}
	s.tables[sensor] = t
	s.vars[sensor] = vars
}

// Names returns the sensor names in insertion order.
func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of tables.
func (s *Set) Len() int { return len(s.names) }

// Table returns the table of a sensor, or nil.
func (s *Set) Table(sensor string) *Table {
	return s.tables[sensor]
}

// Vars returns the analysed variables of a sensor.
func (s *Set) Vars(sensor string) []string {
	return s.vars[sensor]
}

// Trim keeps, in every table, the rows whose datetime lies in [beg, end].
// Rows with a missing datetime are dropped.
func Trim(s *Set, beg, end time.Time) (*Set, error) {
	o := NewSet()
	for _, name := range s.names {
		t := s.tables[name]
		ts := t.Times(TimeCol)
		if ts == nil {
			return nil, fmt.Errorf("%w %q in table %q", ErrNoColumn, TimeCol, t.Name)
		}
		trimmed := t.Filter(func(i int) bool {
			v := ts[i]
			return !v.IsZero() && !v.Before(beg) && !v.After(end)
		})
		o.Add(name, trimmed, s.vars[name])
	}
	return o, nil
}

const dirTimeFormat = "2006-01-02_15-04-05"

// RangeDir creates and returns the plot directory for a datetime range:
// root/<beg>_<end>, or root/full_timeseries when either bound is unset.
func RangeDir(root string, beg, end time.Time) (string, error) {
	dir := filepath.Join(root, "full_timeseries")
	if !beg.IsZero() && !end.IsZero() {
		dir = filepath.Join(
			root,
			beg.Format(dirTimeFormat)+"_"+end.Format(dirTimeFormat),
		)
	}
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", err
	}
	return dir, nil
}

// ShortName returns the last 4 characters of a device identifier.
func ShortName(node string) string {
	rs := []rune(node)
	if len(rs) <= 4 {
		return node
	}
	return string(rs[len(rs)-4:])
}

// ShortNames applies ShortName to every identifier.
func ShortNames(nodes []string) []string {
	o := make([]string, len(nodes))
	for i, n := range nodes {
		o[i] = ShortName(n)
	}
	return o
}

// AddShortName appends the from_short_name column derived from from_node.
func AddShortName(t *Table) error {
	if !t.Has(NodeCol) {
		return fmt.Errorf(
			"table: %q has no %q column, cannot determine the short name: %w",
			t.Name, NodeCol, ErrNoColumn,
		)
	}
	nodes := t.Strings(NodeCol)
	if nodes == nil {
		return fmt.Errorf("table: %q column %q is not text", t.Name, NodeCol)
	}
	if t.Has(ShortNameCol) {
		return fmt.Errorf("table: %q already has a %q column", t.Name, ShortNameCol)
	}
	return t.AddString(ShortNameCol, ShortNames(nodes))
}
