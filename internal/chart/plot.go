package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Renderer writes one chart to path.
type Renderer interface {
	Render(c Chart, path string) error
}

// PlotRenderer draws charts as PNG images with gonum/plot.
type PlotRenderer struct {
	Width  vg.Length
	Height vg.Length
}

func NewPlotRenderer() *PlotRenderer {
	return &PlotRenderer{Width: 12 * vg.Inch, Height: 7 * vg.Inch}
}

var (
	barColor  = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	lineColor = color.RGBA{R: 0, G: 100, B: 0, A: 255}
	nanColor  = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

const heatPaletteSize = 12

func (r *PlotRenderer) Render(c Chart, path string) error {
	p := plot.New()
	p.Title.Text = c.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel

	var err error
	switch c.Kind {
	case Line:
		err = drawLines(p, c)
	case Bar:
		err = drawBars(p, c)
	case GroupedBar:
		err = drawGroupedBars(p, c)
	case HeatMap:
		err = drawHeatMap(p, c)
	default:
		err = fmt.Errorf("unsupported chart kind %v", c.Kind)
	}
	if err != nil {
		return fmt.Errorf("draw %s: %w", c.Name, err)
	}

	if err := p.Save(r.Width, r.Height, path); err != nil {
		return fmt.Errorf("save %s: %w", c.Name, err)
	}
	return nil
}

func drawLines(p *plot.Plot, c Chart) error {
	p.Add(plotter.NewGrid())
	p.X.Tick.Marker = integerTicks{}
	if c.InvertY {
		p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
		p.Y.Tick.Marker = integerTicks{}
	}

	if len(c.Series) == 1 {
		line, points, err := plotter.NewLinePoints(xys(c.Series[0]))
		if err != nil {
			return err
		}
		line.Color = lineColor
		line.Width = vg.Points(2)
		points.Color = lineColor
		points.Shape = draw.CircleGlyph{}
		p.Add(line, points)
		return nil
	}

	var vs []any
	for _, s := range c.Series {
		vs = append(vs, s.Name, xys(s))
	}
	p.Legend.Top = true
	return plotutil.AddLinePoints(p, vs...)
}

func drawBars(p *plot.Plot, c Chart) error {
	if len(c.Series) == 0 {
		return fmt.Errorf("bar chart without series")
	}
	values := plotter.Values(c.Series[0].Y)

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return err
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)

	p.Add(bars)
	nominalCategories(p, c.Categories)

	if c.ValueFormat == "" {
		return nil
	}
	return addValueLabels(p, values, c.ValueFormat)
}

func drawGroupedBars(p *plot.Plot, c Chart) error {
	width := vg.Points(14)
	n := len(c.Series)
	for i, s := range c.Series {
		bars, err := plotter.NewBarChart(plotter.Values(s.Y), width)
		if err != nil {
			return err
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * width

		p.Add(bars)
		p.Legend.Add(s.Name, bars)
	}
	p.Legend.Top = true
	nominalCategories(p, c.Categories)
	return nil
}

func drawHeatMap(p *plot.Plot, c Chart) error {
	if c.Grid == nil || !c.Grid.Defined() {
		return fmt.Errorf("heat map without defined values")
	}
	g := heatGrid{c.Grid}

	h := plotter.NewHeatMap(g, palette.Heat(heatPaletteSize, 1))
	h.NaN = nanColor
	if h.Min == h.Max {
		h.Min, h.Max = h.Min-1, h.Max+1
	}
	p.Add(h)

	var xy []plotter.XY
	var labels []string
	for r, row := range c.Grid.Values {
		for col, v := range row {
			if value, ok := v.Get(); ok {
				xy = append(xy, plotter.XY{X: float64(col), Y: float64(r)})
				labels = append(labels, fmt.Sprintf("%.1f", value))
			}
		}
	}
	cells, err := plotter.NewLabels(plotter.XYLabels{XYs: xy, Labels: labels})
	if err != nil {
		return err
	}
	for i := range cells.TextStyle {
		cells.TextStyle[i].XAlign = draw.XCenter
		cells.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(cells)

	p.NominalX(c.Grid.Columns...)
	years := make([]string, len(c.Grid.Rows))
	for i, year := range c.Grid.Rows {
		years[i] = fmt.Sprintf("%d", year)
	}
	p.NominalY(years...)
	return nil
}

func addValueLabels(p *plot.Plot, values plotter.Values, format string) error {
	maxValue := 0.0
	for _, v := range values {
		maxValue = math.Max(maxValue, math.Abs(v))
	}

	xy := make([]plotter.XY, len(values))
	labels := make([]string, len(values))
	for i, v := range values {
		offset := maxValue * 0.02
		if v < 0 {
			offset = -offset
		}
		xy[i] = plotter.XY{X: float64(i), Y: v + offset}
		labels[i] = fmt.Sprintf(format, v)
	}

	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xy, Labels: labels})
	if err != nil {
		return err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = draw.XCenter
	}
	p.Add(l)
	return nil
}

// nominalCategories rotates long category labels so they do not overlap.
func nominalCategories(p *plot.Plot, labels []string) {
	p.NominalX(labels...)
	for _, label := range labels {
		if len(label) > 4 {
			p.X.Tick.Label.Rotation = math.Pi / 6
			p.X.Tick.Label.XAlign = draw.XRight
			p.X.Tick.Label.YAlign = draw.YCenter
			return
		}
	}
}

func xys(s Series) plotter.XYs {
	points := make(plotter.XYs, 0, len(s.X))
	for i := range s.X {
		if math.IsNaN(s.Y[i]) || math.IsInf(s.Y[i], 0) {
			continue
		}
		points = append(points, plotter.XY{X: s.X[i], Y: s.Y[i]})
	}
	return points
}

// heatGrid adapts Grid to plotter.GridXYZ with cell indices as coordinates.
type heatGrid struct{ g *Grid }

func (h heatGrid) Dims() (c, r int) { return len(h.g.Columns), len(h.g.Rows) }
func (h heatGrid) Z(c, r int) float64 { return h.g.Values[r][c].Float() }
func (h heatGrid) X(c int) float64 { return float64(c) }
func (h heatGrid) Y(r int) float64 { return float64(r) }

// integerTicks labels whole numbers only, so years and ranks never show
// fractional ticks.
type integerTicks struct{}

func (integerTicks) Ticks(min, max float64) []plot.Tick {
	lo, hi := math.Ceil(min), math.Floor(max)
	if hi < lo {
		return nil
	}
	step := math.Max(1, math.Ceil((hi-lo+1)/12))

	var ticks []plot.Tick
	for v := lo; v <= hi; v += step {
		ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf("%.0f", v)})
	}
	return ticks
}
