// Package report writes run summaries as chart images
package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/lixenwraith/path-evolution/genetic"
	"github.com/lixenwraith/path-evolution/obstacle"
	"github.com/lixenwraith/path-evolution/vmath"
)

var ErrNoData = errors.New("nothing to plot")

var (
	bestColor     = color.RGBA{R: 0, G: 160, B: 60, A: 255}
	averageColor  = color.RGBA{R: 0, G: 80, B: 255, A: 255}
	worstColor    = color.RGBA{R: 200, G: 0, B: 0, A: 255}
	obstacleColor = color.RGBA{R: 128, G: 128, B: 128, A: 120}
)

// SaveConvergence plots best, average and worst fitness per generation
// Non-finite and saturated scores are skipped
func SaveConvergence(history []genetic.PoolStats[float64], title, path string) error {
	best := make(plotter.XYs, 0, len(history))
	avg := make(plotter.XYs, 0, len(history))
	worst := make(plotter.XYs, 0, len(history))

	for _, s := range history {
		g := float64(s.Generation)
		if plottable(s.BestScore) {
			best = append(best, plotter.XY{X: g, Y: s.BestScore})
		}
		if plottable(s.AverageScore) {
			avg = append(avg, plotter.XY{X: g, Y: s.AverageScore})
		}
		if plottable(s.WorstScore) {
			worst = append(worst, plotter.XY{X: g, Y: s.WorstScore})
		}
	}
	if len(best) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness"
	p.Add(plotter.NewGrid())

	for _, series := range []struct {
		name  string
		xys   plotter.XYs
		color color.Color
	}{
		{"best", best, bestColor},
		{"average", avg, averageColor},
		{"worst", worst, worstColor},
	} {
		if len(series.xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(series.xys)
		if err != nil {
			return fmt.Errorf("%s line: %w", series.name, err)
		}
		line.Color = series.color
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(series.name, line)
	}

	p.Legend.Top = true
	p.Legend.Left = true

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

// SaveRoute draws the obstacle cover and a route in domain coordinates
// Y is flipped so the chart matches the image orientation
func SaveRoute(field *obstacle.Field, route []vmath.Vec2, title, path string) error {
	if len(route) == 0 {
		return ErrNoData
	}
	size := field.Size()

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"
	p.X.Min, p.X.Max = 0, size.X
	p.Y.Min, p.Y.Max = 0, size.Y

	for _, r := range field.Rects() {
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: r.Left, Y: size.Y - r.Top},
			{X: r.Right(), Y: size.Y - r.Top},
			{X: r.Right(), Y: size.Y - r.Bottom()},
			{X: r.Left, Y: size.Y - r.Bottom()},
		})
		if err != nil {
			return fmt.Errorf("obstacle polygon: %w", err)
		}
		poly.Color = obstacleColor
		poly.LineStyle.Width = 0
		p.Add(poly)
	}

	xys := make(plotter.XYs, 0, len(route))
	for _, pt := range route {
		if vmath.V2Finite(pt) {
			xys = append(xys, plotter.XY{X: pt.X, Y: size.Y - pt.Y})
		}
	}
	if len(xys) == 0 {
		return ErrNoData
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("route line: %w", err)
	}
	line.Color = averageColor
	line.Width = vg.Points(1.8)
	p.Add(line)
	p.Legend.Add("route", line)

	start, err := plotter.NewScatter(xys[:1])
	if err != nil {
		return err
	}
	start.GlyphStyle.Shape = draw.CircleGlyph{}
	start.GlyphStyle.Color = bestColor
	start.GlyphStyle.Radius = vg.Points(4)
	p.Add(start)
	p.Legend.Add("start", start)

	end, err := plotter.NewScatter(xys[len(xys)-1:])
	if err != nil {
		return err
	}
	end.GlyphStyle.Shape = draw.CrossGlyph{}
	end.GlyphStyle.Color = worstColor
	end.GlyphStyle.Radius = vg.Points(4)
	p.Add(end)
	p.Legend.Add("end", end)

	return p.Save(6*vg.Inch, 6*vg.Inch*vg.Length(size.Y/size.X), path)
}

func plottable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) < math.MaxFloat64
}
