package plots

import (
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Figure is a grid of plots drawn on one image, with an optional color bar
// on its right side.
type Figure struct {
	Plots  [][]*plot.Plot
	Width  vg.Length
	Height vg.Length

	// Bar, when set, is drawn in a column of width BarWidth.
	Bar      *plot.Plot
	BarWidth vg.Length
}

func newFigure(rows, cols int, w, h vg.Length) *Figure {
	ps := make([][]*plot.Plot, rows)
	for i := range ps {
		ps[i] = make([]*plot.Plot, cols)
	}
	return &Figure{Plots: ps, Width: w, Height: h}
}

// Draw draws the figure onto dc.
func (f *Figure) Draw(dc draw.Canvas) {
	rows := len(f.Plots)
	if rows == 0 {
		return
	}
	cols := len(f.Plots[0])

	main := dc
	if f.Bar != nil {
		bw := f.BarWidth
		if bw <= 0 {
			bw = 1.2 * vg.Inch
		}
		main = draw.Crop(dc, 0, -bw, 0, 0)
		bar := draw.Crop(dc, dc.Max.X-dc.Min.X-bw, 0, 0.5*vg.Inch, -0.5*vg.Inch)
		f.Bar.Draw(bar)
	}

	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(2),
		PadBottom: vg.Points(2),
		PadLeft:   vg.Points(2),
		PadRight:  vg.Points(2),
	}
	cs := plot.Align(f.Plots, tiles, main)
	for j := range f.Plots {
		for i, p := range f.Plots[j] {
			if p == nil {
				continue
			}
			p.Draw(cs[j][i])
		}
	}
}

// Save renders the figure as a PNG image with the given resolution.
func (f *Figure) Save(fname string, dpi int) (err error) {
	if dpi <= 0 {
		return fmt.Errorf("plots: invalid DPI %d", dpi)
	}
	img := vgimg.NewWith(
		vgimg.UseWH(f.Width, f.Height),
		vgimg.UseDPI(dpi),
	)
	f.Draw(draw.New(img))

	o, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer func() {
		e := o.Close()
		if err == nil {
			err = e
		}
		if err != nil {
			os.Remove(fname)
		}
	}()

	_, err = vgimg.PngCanvas{Canvas: img}.WriteTo(o)
	if err != nil {
		return fmt.Errorf("plots: could not encode %q: %w", fname, err)
	}
	return nil
}
