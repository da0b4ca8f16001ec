package plots

import (
	"image/color"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	sunrise = 6 * time.Hour
	sunset  = 18 * time.Hour
)

var (
	nightColor = color.NRGBA{R: 128, G: 128, B: 128, A: 64}
	eventStyle = draw.LineStyle{
		Color:  color.Black,
		Width:  vg.Points(1),
		Dashes: []vg.Length{vg.Points(4), vg.Points(3)},
	}
)

// Nights returns the [sunset, sunrise] spans covering the days from beg to
// end: from the evening before the first day to the morning after the last.
func Nights(beg, end time.Time) [][2]time.Time {
	first := time.Date(beg.Year(), beg.Month(), beg.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	n := int(last.Sub(first).Hours()/24) + 2

	o := make([][2]time.Time, n)
	for i := range o {
		day := first.AddDate(0, 0, i)
		o[i] = [2]time.Time{
			day.AddDate(0, 0, -1).Add(sunset),
			day.Add(sunrise),
		}
	}
	return o
}

// nights shades the night hours. It does not take part in the data range.
type nights struct {
	spans [][2]float64
}

func nightShade(beg, end time.Time) *nights {
	spans := Nights(beg.UTC(), end.UTC())
	o := &nights{spans: make([][2]float64, len(spans))}
	for i, s := range spans {
		o.spans[i] = [2]float64{unix(s[0]), unix(s[1])}
	}
	return o
}

func (n *nights) Plot(c draw.Canvas, p *plot.Plot) {
	trX, _ := p.Transforms(&c)
	for _, s := range n.spans {
		x0, x1 := trX(s[0]), trX(s[1])
		if x1 <= c.Min.X || x0 >= c.Max.X {
			continue
		}
		if x0 < c.Min.X {
			x0 = c.Min.X
		}
		if x1 > c.Max.X {
			x1 = c.Max.X
		}
		c.FillPolygon(nightColor, []vg.Point{
			{X: x0, Y: c.Min.Y},
			{X: x1, Y: c.Min.Y},
			{X: x1, Y: c.Max.Y},
			{X: x0, Y: c.Max.Y},
		})
	}
}

// events draws a dashed vertical line at every event datetime.
type events struct {
	xs []float64
}

func eventLines(ts []time.Time) *events {
	o := &events{xs: make([]float64, len(ts))}
	for i, t := range ts {
		o.xs[i] = unix(t)
	}
	return o
}

func (e *events) Plot(c draw.Canvas, p *plot.Plot) {
	trX, _ := p.Transforms(&c)
	for _, v := range e.xs {
		x := trX(v)
		if !c.ContainsX(x) {
			continue
		}
		c.StrokeLine2(eventStyle, x, c.Min.Y, x, c.Max.Y)
	}
}
