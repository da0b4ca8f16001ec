// Package table holds labelled, column-oriented sensor tables.
package table

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Well-known column names of the mesh logger data.
const (
	TimeCol      = "datetime"
	NodeCol      = "from_node"
	ShortNameCol = "from_short_name"
	SensorCol    = "from_sensor"
)

// ErrNoColumn is returned when a requested column does not exist.
var ErrNoColumn = errors.New("table: no such column")

// Kind is the type of the values held by a column.
type Kind int

const (
	Float Kind = iota
	Time
	String
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Time:
		return "time"
	case String:
		return "string"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type column struct {
	name   string
	kind   Kind
	floats []float64
	times  []time.Time
	strs   []string
}

func (c *column) len() int {
	switch c.kind {
	case Time:
		return len(c.times)
	case String:
		return len(c.strs)
	}
	return len(c.floats)
}

func (c *column) take(idx []int) *column {
	o := &column{name: c.name, kind: c.kind}
	switch c.kind {
	case Float:
		o.floats = make([]float64, len(idx))
		for i, j := range idx {
			o.floats[i] = c.floats[j]
		}
	case Time:
		o.times = make([]time.Time, len(idx))
		for i, j := range idx {
			o.times[i] = c.times[j]
		}
	case String:
		o.strs = make([]string, len(idx))
		for i, j := range idx {
			o.strs[i] = c.strs[j]
		}
	}
	return o
}

func (c *column) clone() *column {
	o := &column{name: c.name, kind: c.kind}
	o.floats = append([]float64(nil), c.floats...)
	o.times = append([]time.Time(nil), c.times...)
	o.strs = append([]string(nil), c.strs...)
	return o
}

// Table is an ordered list of equal-length named columns.
// A missing time is the zero time.Time and a missing float is NaN.
type Table struct {
	Name string
	cols []*column
	idx  map[string]int
	n    int
}

// New returns an empty table.
func New(name string) *Table {
	return &Table{
		Name: name,
		idx:  make(map[string]int),
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.n }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.name
	}
	return names
}

// Has reports whether the table has the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.idx[name]
	return ok
}

// Kind returns the kind of the named column.
func (t *Table) Kind(name string) (Kind, error) {
	c, err := t.col(name)
	if err != nil {
		return 0, err
	}
	return c.kind, nil
}

func (t *Table) col(name string) (*column, error) {
	i, ok := t.idx[name]
	if !ok {
		return nil, fmt.Errorf("%w %q in table %q", ErrNoColumn, name, t.Name)
	}
	return t.cols[i], nil
}

// Floats returns the values of a float column, or nil.
// The returned slice is shared with the table.
func (t *Table) Floats(name string) []float64 {
	c, err := t.col(name)
	if err != nil || c.kind != Float {
		return nil
	}
	return c.floats
}

// Times returns the values of a time column, or nil.
func (t *Table) Times(name string) []time.Time {
	c, err := t.col(name)
	if err != nil || c.kind != Time {
		return nil
	}
	return c.times
}

// Strings returns the values of a string column, or nil.
func (t *Table) Strings(name string) []string {
	c, err := t.col(name)
	if err != nil || c.kind != String {
		return nil
	}
	return c.strs
}

// FloatNames returns the names of the float columns, in order.
func (t *Table) FloatNames() []string {
	var names []string
	for _, c := range t.cols {
		if c.kind == Float {
			names = append(names, c.name)
		}
	}
	return names
}

func (t *Table) add(c *column) error {
	if _, dup := t.idx[c.name]; dup {
		return fmt.Errorf("table: duplicate column %q in table %q", c.name, t.Name)
	}
	n := c.len()
	if len(t.cols) > 0 && n != t.n {
		return fmt.Errorf(
			"table: column %q has %d rows, table %q has %d",
			c.name, n, t.Name, t.n,
		)
	}
	t.idx[c.name] = len(t.cols)
	t.cols = append(t.cols, c)
	t.n = n
	return nil
}

// AddFloat appends a float column.
func (t *Table) AddFloat(name string, vs []float64) error {
	return t.add(&column{name: name, kind: Float, floats: vs})
}

// AddTime appends a time column.
func (t *Table) AddTime(name string, vs []time.Time) error {
	return t.add(&column{name: name, kind: Time, times: vs})
}

// AddString appends a string column.
func (t *Table) AddString(name string, vs []string) error {
	return t.add(&column{name: name, kind: String, strs: vs})
}

// Rename renames a column in place.
func (t *Table) Rename(old, name string) error {
	i, ok := t.idx[old]
	if !ok {
		return fmt.Errorf("%w %q in table %q", ErrNoColumn, old, t.Name)
	}
	if old == name {
		return nil
	}
	if _, dup := t.idx[name]; dup {
		return fmt.Errorf("table: duplicate column %q in table %q", name, t.Name)
	}
	delete(t.idx, old)
	t.idx[name] = i
	t.cols[i].name = name
	return nil
}

// Select returns a copy of the table restricted to the named columns,
// in the requested order.
func (t *Table) Select(names ...string) (*Table, error) {
	o := New(t.Name)
	for _, name := range names {
		c, err := t.col(name)
		if err != nil {
			return nil, err
		}
		err = o.add(c.clone())
		if err != nil {
			return nil, err
		}
	}
	o.n = t.n
	return o, nil
}

// Take returns a new table made of the rows at the given indices.
func (t *Table) Take(idx []int) *Table {
	o := New(t.Name)
	for _, c := range t.cols {
		o.idx[c.name] = len(o.cols)
		o.cols = append(o.cols, c.take(idx))
	}
	o.n = len(idx)
	return o
}

// Filter returns a new table with the rows for which keep returns true.
func (t *Table) Filter(keep func(i int) bool) *Table {
	idx := make([]int, 0, t.n)
	for i := 0; i < t.n; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return t.Take(idx)
}

// SortByTime returns a copy of the table stably sorted on the named time
// column. Missing times sort last.
func (t *Table) SortByTime(name string) (*Table, error) {
	c, err := t.col(name)
	if err != nil {
		return nil, err
	}
	if c.kind != Time {
		return nil, fmt.Errorf("table: column %q is %v, not time", name, c.kind)
	}
	ts := c.times
	idx := make([]int, t.n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		ti, tj := ts[idx[i]], ts[idx[j]]
		switch {
		case ti.IsZero():
			return false
		case tj.IsZero():
			return true
		}
		return ti.Before(tj)
	})
	return t.Take(idx), nil
}

// DropNaT returns a copy of the table without the rows whose named time is
// missing, along with the number of dropped rows.
func (t *Table) DropNaT(name string) (*Table, int, error) {
	c, err := t.col(name)
	if err != nil {
		return nil, 0, err
	}
	if c.kind != Time {
		return nil, 0, fmt.Errorf("table: column %q is %v, not time", name, c.kind)
	}
	ts := c.times
	o := t.Filter(func(i int) bool { return !ts[i].IsZero() })
	return o, t.n - o.n, nil
}

// Span returns the earliest and latest non-missing times of the named column.
func (t *Table) Span(name string) (beg, end time.Time, ok bool) {
	for _, v := range t.Times(name) {
		if v.IsZero() {
			continue
		}
		if !ok || v.Before(beg) {
			beg = v
		}
		if !ok || v.After(end) {
			end = v
		}
		ok = true
	}
	return beg, end, ok
}

// Group is the set of rows sharing one key.
type Group struct {
	Key  string
	Rows *Table
}

// GroupBy splits the table on the values of a string column.
// Groups are sorted by key and rows keep their original order.
func (t *Table) GroupBy(name string) ([]Group, error) {
	c, err := t.col(name)
	if err != nil {
		return nil, err
	}
	if c.kind != String {
		return nil, fmt.Errorf("table: column %q is %v, not string", name, c.kind)
	}
	rows := make(map[string][]int)
	for i, k := range c.strs {
		rows[k] = append(rows[k], i)
	}
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]Group, len(keys))
	for i, k := range keys {
		groups[i] = Group{Key: k, Rows: t.Take(rows[k])}
	}
	return groups, nil
}

// Concat stacks tables sharing the same columns (names, order and kinds).
func Concat(name string, tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return New(name), nil
	}
	ref := tables[0]
	o := New(name)
	for _, c := range ref.cols {
		o.idx[c.name] = len(o.cols)
		o.cols = append(o.cols, &column{name: c.name, kind: c.kind})
	}

	want := 0
	for _, t := range tables {
		if len(t.cols) != len(ref.cols) {
			return nil, fmt.Errorf(
				"table: cannot concatenate %q (columns %v) with %q (columns %v)",
				t.Name, t.Names(), ref.Name, ref.Names(),
			)
		}
		for i, c := range t.cols {
			oc := o.cols[i]
			if c.name != oc.name || c.kind != oc.kind {
				return nil, fmt.Errorf(
					"table: cannot concatenate %q (columns %v) with %q (columns %v)",
					t.Name, t.Names(), ref.Name, ref.Names(),
				)
			}
			oc.floats = append(oc.floats, c.floats...)
			oc.times = append(oc.times, c.times...)
			oc.strs = append(oc.strs, c.strs...)
		}
		want += t.n
	}
	if len(o.cols) > 0 {
		o.n = o.cols[0].len()
	}
	if o.n != want {
		return nil, fmt.Errorf("table: concatenated %d rows, want %d", o.n, want)
	}
	return o, nil
}

// NaNs returns a slice of n NaN values.
func NaNs(n int) []float64 {
	vs := make([]float64, n)
	for i := range vs {
		vs[i] = math.NaN()
	}
	return vs
}
