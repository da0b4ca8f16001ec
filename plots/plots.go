// Package plots renders the diagnostic plots of sensor tables.
//
// Times are drawn on the x axis as UTC wall-clock times, night hours are
// shaded in grey and event datetimes are marked with dashed vertical lines.
package plots

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/smesh-lab/smesh/table"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("plots: no data")

const timeFormat = "2006-01-02\n15:04"

// unix returns t as fractional seconds since the epoch.
func unix(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func nodeColor(i int) color.Color {
	return plotutil.Color(i)
}

func faded(c color.Color, alpha uint8) color.Color {
	o := color.NRGBAModel.Convert(c).(color.NRGBA)
	o.A = alpha
	return o
}

// node is the data of one node of a sensor table.
type node struct {
	name string
	rows *table.Table
}

func nodes(t *table.Table) ([]node, error) {
	if t == nil || t.Len() == 0 {
		return nil, ErrNoData
	}
	groups, err := t.GroupBy(table.ShortNameCol)
	if err != nil {
		return nil, fmt.Errorf("plots: %w", err)
	}
	o := make([]node, len(groups))
	for i, g := range groups {
		o[i] = node{name: g.Key, rows: g.Rows}
	}
	return o, nil
}

// xys returns the (datetime, v) points of a table, without missing values.
// When positive is set, non-positive values are dropped as well.
func xys(t *table.Table, v string, positive bool) (plotter.XYs, error) {
	ts := t.Times(table.TimeCol)
	if ts == nil {
		return nil, fmt.Errorf("plots: %w %q in table %q", table.ErrNoColumn, table.TimeCol, t.Name)
	}
	vs := t.Floats(v)
	if vs == nil {
		return nil, fmt.Errorf("plots: %w %q (float) in table %q", table.ErrNoColumn, v, t.Name)
	}
	o := make(plotter.XYs, 0, len(vs))
	for i, y := range vs {
		if ts[i].IsZero() || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		if positive && y <= 0 {
			continue
		}
		o = append(o, plotter.XY{X: unix(ts[i]), Y: y})
	}
	return o, nil
}

func span(t *table.Table) (beg, end time.Time, err error) {
	beg, end, ok := t.Span(table.TimeCol)
	if !ok {
		return beg, end, ErrNoData
	}
	return beg, end, nil
}

func newTimePlot(beg, end time.Time, events []time.Time) *plot.Plot {
	p := plot.New()
	p.X.Tick.Marker = plot.TimeTicks{Format: timeFormat}
	p.Add(nightShade(beg, end))
	p.Add(plotter.NewGrid())
	if len(events) > 0 {
		p.Add(eventLines(events))
	}
	return p
}

// setTimeRange shares the x range of all plots.
func setTimeRange(beg, end time.Time, ps ...*plot.Plot) {
	lo, hi := unix(beg), unix(end)
	if lo == hi {
		lo -= 60
		hi += 60
	}
	for _, p := range ps {
		p.X.Min = lo
		p.X.Max = hi
	}
}

func setLogY(p *plot.Plot) {
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	if math.IsInf(p.Y.Min, 0) || math.IsInf(p.Y.Max, 0) || p.Y.Min <= 0 {
		p.Y.Min = 1
		if p.Y.Max <= p.Y.Min {
			p.Y.Max = 10
		}
	}
	if p.Y.Min == p.Y.Max {
		p.Y.Min /= 10
		p.Y.Max *= 10
	}
}

func newScatter(pts plotter.XYs, c color.Color, radius vg.Length) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = radius
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	return s, nil
}
