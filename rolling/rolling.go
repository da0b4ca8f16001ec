// Package rolling computes time-windowed moving averages of sensor tables.
package rolling

import (
	"fmt"
	"math"
	"time"

	"github.com/smesh-lab/smesh/table"
)

// Mean returns a copy of t, sorted by datetime, where every float column is
// replaced by its rolling mean over the window (t_i-window, t_i].
// Only rows up to i take part in the mean of row i and NaN values are
// ignored; a window without any value yields NaN.
// Rows with a missing datetime are dropped; their number is returned.
func Mean(t *table.Table, window time.Duration) (*table.Table, int, error) {
	if window <= 0 {
		return nil, 0, fmt.Errorf("rolling: invalid window %v", window)
	}
	kind, err := t.Kind(table.TimeCol)
	if err != nil {
		return nil, 0, fmt.Errorf("rolling: %w", err)
	}
	if kind != table.Time {
		return nil, 0, fmt.Errorf("rolling: column %q is %v, not time", table.TimeCol, kind)
	}

	clean, dropped, err := t.DropNaT(table.TimeCol)
	if err != nil {
		return nil, 0, fmt.Errorf("rolling: %w", err)
	}
	sorted, err := clean.SortByTime(table.TimeCol)
	if err != nil {
		return nil, 0, fmt.Errorf("rolling: %w", err)
	}

	ts := sorted.Times(table.TimeCol)
	for _, name := range sorted.FloatNames() {
		vs := sorted.Floats(name)
		copy(vs, window1D(ts, vs, window))
	}
	return sorted, dropped, nil
}

func window1D(ts []time.Time, vs []float64, window time.Duration) []float64 {
	o := make([]float64, len(vs))
	var (
		sum float64
		n   int
		beg int
	)
	for i := range vs {
		if v := vs[i]; !math.IsNaN(v) {
			sum += v
			n++
		}
		lo := ts[i].Add(-window)
		for beg <= i && !ts[beg].After(lo) {
			if v := vs[beg]; !math.IsNaN(v) {
				sum -= v
				n--
			}
			beg++
		}
		if n == 0 {
			o[i] = math.NaN()
			sum = 0
			continue
		}
		o[i] = sum / float64(n)
	}
	return o
}

// Series is the rolling mean of the data of one node.
type Series struct {
	Node    string
	Table   *table.Table
	Dropped int
}

// PerNode splits t on the key column (from_short_name when empty) and
// returns the rolling means of the datetime and vars columns of every
// node, ordered by node.
func PerNode(t *table.Table, vars []string, window time.Duration, key string) ([]Series, error) {
	if key == "" {
		key = table.ShortNameCol
	}
	groups, err := t.GroupBy(key)
	if err != nil {
		return nil, fmt.Errorf("rolling: %w", err)
	}

	cols := append([]string{table.TimeCol}, vars...)
	o := make([]Series, 0, len(groups))
	for _, g := range groups {
		sub, err := g.Rows.Select(cols...)
		if err != nil {
			return nil, fmt.Errorf("rolling: node %q: %w", g.Key, err)
		}
		for _, v := range vars {
			k, _ := sub.Kind(v)
			if k != table.Float {
				return nil, fmt.Errorf("rolling: node %q: column %q is %v, not float", g.Key, v, k)
			}
		}
		avg, dropped, err := Mean(sub, window)
		if err != nil {
			return nil, fmt.Errorf("rolling: node %q: %w", g.Key, err)
		}
		o = append(o, Series{Node: g.Key, Table: avg, Dropped: dropped})
	}
	return o, nil
}
