package plots

import (
	"fmt"
	"image/color"
	"time"

	"github.com/smesh-lab/smesh/table"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// HistBins returns the number of 15-minute bins of the datetime histogram
// of readings spanning [beg, end].
func HistBins(beg, end time.Time) int {
	days := int(end.Sub(beg).Hours()/24) + 1
	return days * 24 * 4
}

// DatetimeHist plots the histogram of the reading times of a sensor.
func DatetimeHist(t *table.Table, sensor string, events []time.Time) (*Figure, error) {
	if t == nil || t.Len() == 0 {
		return nil, ErrNoData
	}
	beg, end, err := span(t)
	if err != nil {
		return nil, err
	}

	vs := make(plotter.Values, 0, t.Len())
	for _, v := range t.Times(table.TimeCol) {
		if v.IsZero() {
			continue
		}
		vs = append(vs, unix(v))
	}

	h, err := plotter.NewHist(vs, HistBins(beg, end))
	if err != nil {
		return nil, fmt.Errorf("plots: %q: %w", sensor, err)
	}
	h.FillColor = color.NRGBA{R: 31, G: 119, B: 180, A: 255}
	h.LineStyle.Width = 0

	p := newTimePlot(beg, end, events)
	p.Title.Text = fmt.Sprintf("Temporal Histogram of %s readings", sensor)
	p.X.Label.Text = "Date and Time"
	p.Y.Label.Text = "Number of measurements per 15 minutes"
	p.Add(h)

	fig := newFigure(1, 1, 8*vg.Inch, 4*vg.Inch)
	fig.Plots[0][0] = p
	return fig, nil
}
