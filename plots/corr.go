package plots

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/smesh-lab/smesh/table"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Correlation returns the Pearson correlation matrix of the vars columns.
// Each coefficient is computed over the rows where both values are
// present; it is NaN when fewer than 2 such rows exist or when one of the
// series is constant.
func Correlation(t *table.Table, vars []string) (*mat.SymDense, error) {
	cols := make([][]float64, len(vars))
	for i, v := range vars {
		cols[i] = t.Floats(v)
		if cols[i] == nil {
			return nil, fmt.Errorf("plots: %w %q (float) in table %q", table.ErrNoColumn, v, t.Name)
		}
	}

	n := len(vars)
	if n == 0 {
		return nil, ErrNoData
	}
	m := mat.NewSymDense(n, nil)
	x := make([]float64, 0, t.Len())
	y := make([]float64, 0, t.Len())
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			x, y = x[:0], y[:0]
			for k := range cols[i] {
				a, b := cols[i][k], cols[j][k]
				if math.IsNaN(a) || math.IsNaN(b) {
					continue
				}
				x = append(x, a)
				y = append(y, b)
			}
			r := math.NaN()
			if len(x) >= 2 {
				r = stat.Correlation(x, y, nil)
			}
			if !math.IsNaN(r) {
				r = math.Max(-1, math.Min(1, r))
			}
			m.SetSym(i, j, r)
		}
	}
	return m, nil
}

// corrGrid presents a correlation matrix as a heat map grid, with the
// first variable at the top.
type corrGrid struct {
	m *mat.SymDense
}

func (g corrGrid) Dims() (c, r int) {
	n := g.m.SymmetricDim()
	return n, n
}

func (g corrGrid) Z(c, r int) float64 {
	n := g.m.SymmetricDim()
	return g.m.At(n-1-r, c)
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

func corrColorMap() palette.ColorMap {
	cm := moreland.SmoothPurpleOrange()
	cm.SetMin(-1)
	cm.SetMax(+1)
	return cm
}

// CorrMatrix plots the correlation matrix of the vars columns as an
// annotated heat map.
func CorrMatrix(t *table.Table, vars []string) (*Figure, error) {
	if t == nil || t.Len() == 0 || len(vars) == 0 {
		return nil, ErrNoData
	}
	m, err := Correlation(t, vars)
	if err != nil {
		return nil, err
	}
	n := len(vars)

	cm := corrColorMap()
	hm := plotter.NewHeatMap(corrGrid{m}, cm.Palette(255))
	hm.Min = -1
	hm.Max = +1
	hm.NaN = color.White

	var (
		lbls = plotter.XYLabels{
			XYs:    make(plotter.XYs, 0, n*n),
			Labels: make([]string, 0, n*n),
		}
		vals = make([]float64, 0, n*n)
	)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			r := m.At(i, j)
			lbls.XYs = append(lbls.XYs, plotter.XY{X: float64(j), Y: float64(n - 1 - i)})
			lbls.Labels = append(lbls.Labels, fmt.Sprintf("%.2f", r))
			vals = append(vals, r)
		}
	}
	labels, err := plotter.NewLabels(lbls)
	if err != nil {
		return nil, err
	}
	for i, r := range vals {
		sty := &labels.TextStyle[i]
		sty.XAlign = text.XCenter
		sty.YAlign = text.YCenter
		sty.Color = color.Black
		if math.Abs(r) > 0.5 {
			sty.Color = color.White
		}
	}

	p := plot.New()
	p.Add(hm, labels)
	p.NominalX(vars...)
	rev := make([]string, n)
	for i, v := range vars {
		rev[n-1-i] = v
	}
	p.NominalY(rev...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	bar := plot.New()
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true, Colors: 255})
	bar.HideX()
	bar.Y.Padding = 0

	side := vg.Length(n+1) * vg.Inch
	if side < 4*vg.Inch {
		side = 4 * vg.Inch
	}
	fig := newFigure(1, 1, side+vg.Inch, side)
	fig.Plots[0][0] = p
	fig.Bar = bar
	fig.BarWidth = vg.Inch
	return fig, nil
}

// CorrScatter plots every pair of vars against each other, colored by the
// number of days since the first reading.
func CorrScatter(t *table.Table, vars []string) (*Figure, error) {
	if t == nil || t.Len() == 0 || len(vars) == 0 {
		return nil, ErrNoData
	}
	beg, end, err := span(t)
	if err != nil {
		return nil, err
	}
	ts := t.Times(table.TimeCol)
	days := make([]float64, len(ts))
	for i, v := range ts {
		days[i] = math.NaN()
		if !v.IsZero() {
			days[i] = v.Sub(beg).Hours() / 24
		}
	}
	maxDays := end.Sub(beg).Hours() / 24
	if maxDays <= 0 {
		maxDays = 1
	}

	cm := moreland.Kindlmann()
	cm.SetMin(0)
	cm.SetMax(maxDays)

	n := len(vars)
	cols := make([][]float64, n)
	for i, v := range vars {
		cols[i] = t.Floats(v)
		if cols[i] == nil {
			return nil, fmt.Errorf("plots: %w %q (float) in table %q", table.ErrNoColumn, v, t.Name)
		}
	}

	side := vg.Length(2*n) * vg.Inch
	if side < 4*vg.Inch {
		side = 4 * vg.Inch
	}
	fig := newFigure(n, n, side+1.5*vg.Inch, side)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			p, err := pairScatter(cols[i], cols[j], days, cm)
			if err != nil {
				return nil, fmt.Errorf("plots: %q vs %q: %w", vars[i], vars[j], err)
			}
			if j == 0 {
				p.Title.Text = vars[i]
			}
			if j == n-1 {
				p.X.Label.Text = vars[i]
			}
			if i == 0 {
				p.Y.Label.Text = vars[j]
			}
			fig.Plots[j][i] = p
		}
	}

	bar := plot.New()
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true, Colors: 255})
	bar.HideX()
	bar.Y.Label.Text = "Date (at midnight)"
	bar.Y.Tick.Marker = midnightTicks(beg, end)
	fig.Bar = bar
	fig.BarWidth = 1.5 * vg.Inch
	return fig, nil
}

func pairScatter(xs, ys, days []float64, cm palette.ColorMap) (*plot.Plot, error) {
	pts := make(plotter.XYs, 0, len(xs))
	var cs []float64
	for k := range xs {
		x, y, d := xs[k], ys[k], days[k]
		if math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(d) {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
		cs = append(cs, d)
	}

	p := plot.New()
	p.Add(plotter.NewGrid())
	if len(pts) == 0 {
		return p, nil
	}
	s, err := newScatter(pts, color.Black, vg.Points(0.75))
	if err != nil {
		return nil, err
	}
	sty := s.GlyphStyle
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		o := sty
		c, err := cm.At(cs[i])
		if err == nil {
			o.Color = c
		}
		return o
	}
	p.Add(s)
	return p, nil
}

// midnightTicks marks every midnight after beg, in days since beg.
func midnightTicks(beg, end time.Time) plot.ConstantTicks {
	var ticks plot.ConstantTicks
	first := time.Date(beg.Year(), beg.Month(), beg.Day(), 0, 0, 0, 0, beg.Location())
	for day := first.AddDate(0, 0, 1); !day.After(end); day = day.AddDate(0, 0, 1) {
		ticks = append(ticks, plot.Tick{
			Value: day.Sub(beg).Hours() / 24,
			Label: day.Format("2006-01-02"),
		})
	}
	return ticks
}
