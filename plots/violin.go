package plots

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	violinPoints = 100
	violinWidth  = 0.4 // maximum half-width, in x units
)

// violin draws the Gaussian kernel density estimate of a sample,
// mirrored around its location.
type violin struct {
	loc    float64
	ys     []float64
	widths []float64
	median float64

	FillColor   color.Color
	LineStyle   draw.LineStyle
	MedianStyle draw.LineStyle
}

// Bandwidth returns the Scott's rule bandwidth of a Gaussian kernel
// density estimate of vs.
func Bandwidth(vs []float64) float64 {
	if len(vs) < 2 {
		return 0
	}
	sd := stat.StdDev(vs, nil)
	return sd * math.Pow(float64(len(vs)), -1.0/5.0)
}

// KDE evaluates the Gaussian kernel density estimate of vs at y.
func KDE(vs []float64, h, y float64) float64 {
	if h <= 0 || len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		z := (y - v) / h
		sum += math.Exp(-0.5 * z * z)
	}
	return sum / (float64(len(vs)) * h * math.Sqrt(2*math.Pi))
}

func newViolin(loc float64, vs []float64, bounds *[2]float64) (*violin, error) {
	if len(vs) == 0 {
		return nil, ErrNoData
	}
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("plots: invalid violin value %v", v)
		}
	}

	sorted := append([]float64(nil), vs...)
	floats.Argsort(sorted, make([]int, len(sorted)))
	v := &violin{
		loc:    loc,
		median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		LineStyle: draw.LineStyle{
			Color: color.Black,
			Width: vg.Points(0.5),
		},
		MedianStyle: draw.LineStyle{
			Color: color.Black,
			Width: vg.Points(1.5),
		},
	}

	h := Bandwidth(vs)
	lo, hi := floats.Min(vs), floats.Max(vs)
	if h == 0 {
		v.ys = []float64{lo, hi}
		v.widths = []float64{violinWidth, violinWidth}
		return v, nil
	}
	lo -= 3 * h
	hi += 3 * h
	if bounds != nil {
		lo = math.Max(lo, bounds[0])
		hi = math.Min(hi, bounds[1])
	}

	v.ys = make([]float64, violinPoints)
	floats.Span(v.ys, lo, hi)
	v.widths = make([]float64, violinPoints)
	for i, y := range v.ys {
		v.widths[i] = KDE(vs, h, y)
	}
	if m := floats.Max(v.widths); m > 0 {
		floats.Scale(violinWidth/m, v.widths)
	}
	return v, nil
}

func (v *violin) outline(trX, trY func(float64) vg.Length) []vg.Point {
	pts := make([]vg.Point, 0, 2*len(v.ys))
	for i, y := range v.ys {
		pts = append(pts, vg.Point{X: trX(v.loc + v.widths[i]), Y: trY(y)})
	}
	for i := len(v.ys) - 1; i >= 0; i-- {
		pts = append(pts, vg.Point{X: trX(v.loc - v.widths[i]), Y: trY(v.ys[i])})
	}
	return pts
}

func (v *violin) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	pts := v.outline(trX, trY)

	if v.FillColor != nil {
		c.FillPolygon(v.FillColor, c.ClipPolygonXY(pts))
	}
	closed := append(pts, pts[0])
	c.StrokeLines(v.LineStyle, c.ClipLinesXY(closed)...)

	y := trY(v.median)
	if c.ContainsY(y) {
		c.StrokeLine2(
			v.MedianStyle,
			trX(v.loc-violinWidth/2), y,
			trX(v.loc+violinWidth/2), y,
		)
	}
}

func (v *violin) DataRange() (xmin, xmax, ymin, ymax float64) {
	return v.loc - 0.5, v.loc + 0.5, v.ys[0], v.ys[len(v.ys)-1]
}

var _ plot.DataRanger = (*violin)(nil)
