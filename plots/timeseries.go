package plots

import (
	"fmt"
	"time"

	"github.com/smesh-lab/smesh/rolling"
	"github.com/smesh-lab/smesh/table"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	figWidth  = 12 * vg.Inch
	rowHeight = 3 * vg.Inch
)

// legendGlyph is a legend thumbnail larger than the plotted glyphs.
type legendGlyph struct {
	draw.GlyphStyle
}

func (g legendGlyph) Thumbnail(c *draw.Canvas) {
	c.DrawGlyph(g.GlyphStyle, c.Center())
}

func thumb(s *plotter.Scatter) legendGlyph {
	sty := s.GlyphStyle
	sty.Radius = 3 * sty.Radius
	return legendGlyph{sty}
}

// TimeSeries plots every variable of t against time, one row per variable
// and one color per node. With logY, non-positive values are dropped and
// the y axes are logarithmic.
func TimeSeries(t *table.Table, vars []string, events []time.Time, logY bool) (*Figure, error) {
	if len(vars) == 0 {
		return nil, ErrNoData
	}
	ns, err := nodes(t)
	if err != nil {
		return nil, err
	}
	beg, end, err := span(t)
	if err != nil {
		return nil, err
	}

	fig := newFigure(len(vars), 1, figWidth, vg.Length(len(vars))*rowHeight)
	for i, v := range vars {
		p := newTimePlot(beg, end, events)
		p.Y.Label.Text = v
		p.Legend.Top = true
		for j, n := range ns {
			pts, err := xys(n.rows, v, logY)
			if err != nil {
				return nil, err
			}
			if len(pts) == 0 {
				continue
			}
			s, err := newScatter(pts, nodeColor(j), vg.Points(1))
			if err != nil {
				return nil, fmt.Errorf("plots: %q: %w", v, err)
			}
			p.Add(s)
			p.Legend.Add(n.name, thumb(s))
		}
		if i == len(vars)-1 {
			p.X.Label.Text = "Date and Time"
		}
		setTimeRange(beg, end, p)
		if logY {
			setLogY(p)
		}
		fig.Plots[i][0] = p
	}
	return fig, nil
}

// MovingAverages plots, for every variable, the raw data of every node as
// faded points and its moving average as a line.
func MovingAverages(t *table.Table, avgs []rolling.Series, vars []string, events []time.Time) (*Figure, error) {
	if len(vars) == 0 {
		return nil, ErrNoData
	}
	ns, err := nodes(t)
	if err != nil {
		return nil, err
	}
	beg, end, err := span(t)
	if err != nil {
		return nil, err
	}
	byNode := make(map[string]*table.Table, len(avgs))
	for _, s := range avgs {
		byNode[s.Node] = s.Table
	}

	fig := newFigure(len(vars), 1, figWidth, vg.Length(len(vars))*rowHeight)
	for i, v := range vars {
		p := newTimePlot(beg, end, events)
		p.Y.Label.Text = v
		p.Legend.Top = true
		for j, n := range ns {
			col := nodeColor(j)
			raw, err := xys(n.rows, v, false)
			if err != nil {
				return nil, err
			}
			if len(raw) > 0 {
				s, err := newScatter(raw, faded(col, 48), vg.Points(1))
				if err != nil {
					return nil, fmt.Errorf("plots: %q: %w", v, err)
				}
				p.Add(s)
			}

			avg, ok := byNode[n.name]
			if !ok {
				continue
			}
			pts, err := xys(avg, v, false)
			if err != nil {
				return nil, err
			}
			if len(pts) == 0 {
				continue
			}
			l, err := plotter.NewLine(pts)
			if err != nil {
				return nil, fmt.Errorf("plots: %q: %w", v, err)
			}
			l.LineStyle.Color = col
			l.LineStyle.Width = vg.Points(1.5)
			p.Add(l)
			p.Legend.Add(n.name, l)
		}
		if i == len(vars)-1 {
			p.X.Label.Text = "Date and Time"
		}
		setTimeRange(beg, end, p)
		fig.Plots[i][0] = p
	}
	return fig, nil
}

var _ plot.Thumbnailer = legendGlyph{}
