package charts

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pieChart draws one wedge per value, clockwise from twelve o'clock.
// Values must be non-negative with a positive total.
type pieChart struct {
	values []float64
	colors []color.Color
}

// Plot implements plot.Plotter.
func (pc *pieChart) Plot(c draw.Canvas, _ *plot.Plot) {
	total := 0.0
	for _, v := range pc.values {
		total += v
	}
	if total <= 0 {
		return
	}

	size := c.Max.Sub(c.Min)
	radius := 0.45 * math.Min(float64(size.X), float64(size.Y))
	center := c.Center()

	start := math.Pi / 2
	for i, v := range pc.values {
		if v <= 0 {
			continue
		}
		sweep := -2 * math.Pi * v / total

		var path vg.Path
		path.Move(center)
		path.Arc(center, vg.Length(radius), start, sweep)
		path.Close()

		c.SetColor(pc.colors[i])
		c.Fill(path)
		start += sweep
	}
}

// swatch is a legend thumbnail filled with one colour.
type swatch struct {
	color color.Color
}

// Thumbnail implements plot.Thumbnailer.
func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, pts)
}
