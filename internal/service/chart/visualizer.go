package chart

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"StockPricePrediction/internal/domain/models"
	domsvc "StockPricePrediction/internal/domain/service"
	applogger "StockPricePrediction/pkg/logger"
)

// Options sets the figure layout.
type Options struct {
	Title  string
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length
	DPI    int
}

func DefaultOptions() Options {
	return Options{
		Title:  "Stock Price Prediction with SVR",
		XLabel: "Day Index",
		YLabel: "Close Price",
		Width:  10 * vg.Inch,
		Height: 6 * vg.Inch,
		DPI:    150,
	}
}

// Visualizer draws the observed series and each model's fitted curve. Every
// Render builds and releases its own plot, so calls may run concurrently.
type Visualizer struct {
	opts Options
	l    *applogger.Logger
}

func NewVisualizer(opts Options) *Visualizer {
	d := DefaultOptions()
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = d.Width, d.Height
	}
	if opts.DPI <= 0 {
		opts.DPI = d.DPI
	}
	return &Visualizer{opts: opts, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (v *Visualizer) SetLogger(l *applogger.Logger) {
	if l != nil {
		v.l = l
	}
}

func (v *Visualizer) Render(ctx context.Context, s models.Series, set *models.FittedModelSet, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Len() == 0 {
		return models.InvalidSeriesf("nothing to plot")
	}

	p, err := v.build(s, set)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create plot dir: %w", err)
		}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" || ext == "png" {
		return v.savePNG(p, path)
	}
	return p.Save(v.opts.Width, v.opts.Height, path)
}

func (v *Visualizer) build(s models.Series, set *models.FittedModelSet) (*gplot.Plot, error) {
	p := gplot.New()
	p.Title.Text = v.opts.Title
	p.X.Label.Text = v.opts.XLabel
	p.Y.Label.Text = v.opts.YLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	idx := s.Indices()
	pts := make(plotter.XYs, s.Len())
	for i, o := range s.Observations {
		pts[i].X = idx[i]
		pts[i].Y = o.Value
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("scatter: %w", err)
	}
	sc.Color = color.Black
	sc.Shape = draw.CircleGlyph{}
	p.Add(sc)
	p.Legend.Add("Data", sc)

	for i, m := range set.Models() {
		fitted := make(plotter.XYs, len(idx))
		for j, x := range idx {
			fitted[j].X = x
			fitted[j].Y = m.Predict(x)
		}
		line, err := plotter.NewLine(fitted)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", m.Name(), err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(strings.ToUpper(m.Name())+" model", line)
	}
	return p, nil
}

func (v *Visualizer) savePNG(p *gplot.Plot, path string) error {
	c := vgimg.NewWith(vgimg.UseWH(v.opts.Width, v.opts.Height), vgimg.UseDPI(v.opts.DPI))
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot: %w", err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode plot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close plot: %w", err)
	}
	v.l.Debug("plot rendered", applogger.String("path", path))
	return nil
}

var _ domsvc.Renderer = (*Visualizer)(nil)
