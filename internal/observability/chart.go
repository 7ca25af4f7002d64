package observability

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/wonny/inout/backend/internal/contracts"
)

// chartSeries is one stacked panel
type chartSeries struct {
	title string
	ymax  float64
	value func(d *contracts.Decision) float64
}

var panels = []chartSeries{
	{"in_market", 1.1, func(d *contracts.Decision) float64 { return float64(d.After.Regime.Indicator()) }},
	{"num_out_signals", 0, func(d *contracts.Decision) float64 { return float64(d.BreachCount) }},
	{"wait_days", 0, func(d *contracts.Decision) float64 { return float64(d.After.WaitDays) }},
}

// RenderChart draws the regime, breach count and wait days of the committed
// daily decisions as three stacked panels and writes a PNG to path.
func RenderChart(decisions []contracts.Decision, path string) error {
	var daily []*contracts.Decision
	for i := range decisions {
		d := &decisions[i]
		if d.Kind == contracts.KindDailyOutCheck && !d.Skipped {
			daily = append(daily, d)
		}
	}
	if len(daily) == 0 {
		return fmt.Errorf("no daily decisions to chart")
	}

	plots := make([][]*plot.Plot, len(panels))
	for i, panel := range panels {
		pts := make(plotter.XYs, len(daily))
		for j, d := range daily {
			pts[j].X = float64(d.AsOf.Unix())
			pts[j].Y = panel.value(d)
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("%s line: %w", panel.title, err)
		}
		line.Color = plotutil.Color(i)
		line.StepStyle = plotter.PostStep

		p := plot.New()
		p.Title.Text = panel.title
		p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
		p.Y.Min = 0
		if panel.ymax > 0 {
			p.Y.Max = panel.ymax
		}
		p.Add(plotter.NewGrid(), line)
		plots[i] = []*plot.Plot{p}
	}

	width, height := 10*vg.Inch, 9*vg.Inch
	img := vgimg.New(width, height)
	dc := draw.New(img)
	dc.SetColor(color.White)
	dc.Fill(dc.Rectangle.Path())

	tiles := draw.Tiles{
		Rows:      len(panels),
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Points(10),
		PadBottom: vg.Points(10),
		PadLeft:   vg.Points(10),
		PadRight:  vg.Points(10),
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return f.Close()
}
