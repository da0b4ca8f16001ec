package plots

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/smesh-lab/smesh/table"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// NodeIntervals holds the time elapsed between consecutive readings of a
// node. Secs[i] is the interval ending at Times[i].
type NodeIntervals struct {
	Node  string
	Times []time.Time
	Secs  []float64
}

// Median returns the median interval, or NaN.
func (ni NodeIntervals) Median() float64 {
	if len(ni.Secs) == 0 {
		return math.NaN()
	}
	vs := append([]float64(nil), ni.Secs...)
	sort.Float64s(vs)
	return stat.Quantile(0.5, stat.Empirical, vs, nil)
}

// Intervals returns the reading intervals of every node of t, ordered by
// node. Readings with a missing datetime are ignored.
func Intervals(t *table.Table) ([]NodeIntervals, error) {
	ns, err := nodes(t)
	if err != nil {
		return nil, err
	}
	o := make([]NodeIntervals, 0, len(ns))
	for _, n := range ns {
		rows, _, err := n.rows.DropNaT(table.TimeCol)
		if err != nil {
			return nil, fmt.Errorf("plots: %w", err)
		}
		rows, err = rows.SortByTime(table.TimeCol)
		if err != nil {
			return nil, fmt.Errorf("plots: %w", err)
		}
		ts := rows.Times(table.TimeCol)
		ni := NodeIntervals{Node: n.name}
		for i := 1; i < len(ts); i++ {
			ni.Times = append(ni.Times, ts[i])
			ni.Secs = append(ni.Secs, ts[i].Sub(ts[i-1]).Seconds())
		}
		o = append(o, ni)
	}
	return o, nil
}

// IntervalScatter plots the reading intervals of every node against time.
func IntervalScatter(t *table.Table, sensor string, events []time.Time) (*Figure, error) {
	ivs, err := Intervals(t)
	if err != nil {
		return nil, err
	}
	beg, end, err := span(t)
	if err != nil {
		return nil, err
	}

	p := newTimePlot(beg, end, events)
	p.Title.Text = fmt.Sprintf("Interval between %s readings", sensor)
	p.X.Label.Text = "Date and Time"
	p.Y.Label.Text = "Interval (s)"
	p.Legend.Top = true
	for j, ni := range ivs {
		if len(ni.Secs) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(ni.Secs))
		for i := range ni.Secs {
			pts[i] = plotter.XY{X: unix(ni.Times[i]), Y: ni.Secs[i]}
		}
		s, err := newScatter(pts, nodeColor(j), vg.Points(1.5))
		if err != nil {
			return nil, fmt.Errorf("plots: %q: %w", sensor, err)
		}
		p.Add(s)
		p.Legend.Add(ni.Node, thumb(s))
	}
	setTimeRange(beg, end, p)

	fig := newFigure(1, 1, figWidth, 4*vg.Inch)
	fig.Plots[0][0] = p
	return fig, nil
}

// IntervalBox summarizes the reading intervals of every node as a box plot,
// or as a violin plot when violin is set.
// When bounds is not nil, only the intervals within [min, max] are
// summarized and the y axis is fixed to the bounds.
func IntervalBox(t *table.Table, sensor string, bounds *[2]float64, violin bool) (*Figure, error) {
	ivs, err := Intervals(t)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Add(plotter.NewGrid())
	p.Title.Text = fmt.Sprintf("Interval between %s readings", sensor)
	p.Y.Label.Text = "Interval (s)"
	p.X.Label.Text = "Node"

	var names []string
	for _, ni := range ivs {
		vs := ni.Secs
		if bounds != nil {
			vs = within(vs, bounds[0], bounds[1])
		}
		if len(vs) == 0 {
			continue
		}
		loc := float64(len(names))
		names = append(names, ni.Node)

		if violin {
			v, err := newViolin(loc, vs, bounds)
			if err != nil {
				return nil, fmt.Errorf("plots: %q: node %q: %w", sensor, ni.Node, err)
			}
			v.FillColor = faded(nodeColor(len(names)-1), 128)
			p.Add(v)
			continue
		}
		b, err := plotter.NewBoxPlot(vg.Points(20), loc, plotter.Values(vs))
		if err != nil {
			return nil, fmt.Errorf("plots: %q: node %q: %w", sensor, ni.Node, err)
		}
		p.Add(b)
	}
	if len(names) == 0 {
		return nil, ErrNoData
	}
	p.NominalX(names...)

	if bounds != nil {
		p.Y.Min = bounds[0]
		p.Y.Max = bounds[1]
	}

	w := vg.Length(len(names)+2) * vg.Inch
	if w < 6*vg.Inch {
		w = 6 * vg.Inch
	}
	fig := newFigure(1, 1, w, 5*vg.Inch)
	fig.Plots[0][0] = p
	return fig, nil
}

func within(vs []float64, lo, hi float64) []float64 {
	o := make([]float64, 0, len(vs))
	for _, v := range vs {
		if v < lo || v > hi {
			continue
		}
		o = append(o, v)
	}
	return o
}
