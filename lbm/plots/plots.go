// Package plots renders the capillary pressure and relative permeability
// curves as PNG figures.
package plots

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/mplbm/micromodel/lbm/config"
	"github.com/mplbm/micromodel/lbm/results"
)

// Figure file names, written into the simulation directory.
const (
	PcFile       = "pc_curve.png"
	RelPermFile  = "relperm_curve.png"
	CombinedFile = "pc_and_relperm_curve.png"
)

// DPI is the resolution of every figure.
const DPI = 300

var errNoData = errors.New("no data points to plot")

// points pairs x and y into plotter.XYs.
func points(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	return pts
}

func addSeries(p *plot.Plot, label string, idx int, pts plotter.XYs) error {
	line, scatter, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("plot %s: %w", label, err)
	}
	c := plotutil.Color(idx)
	line.Color = c
	line.Width = vg.Points(1.5)
	scatter.Color = c
	scatter.Shape = draw.CircleGlyph{}
	scatter.Radius = vg.Points(3)
	p.Add(line, scatter)
	p.Legend.Add(label, line, scatter)
	return nil
}

func saturationAxis(p *plot.Plot) {
	p.X.Label.Text = "Wetting phase saturation, Sw"
	p.X.Min = 0
	p.X.Max = 1
	p.Add(plotter.NewGrid())
}

func pcPlot(c *results.Curves) (*plot.Plot, error) {
	if len(c.Sw) == 0 {
		return nil, errNoData
	}
	p := plot.New()
	p.Title.Text = "Capillary pressure curve"
	p.Y.Label.Text = "Capillary pressure (lattice units)"
	saturationAxis(p)
	p.Y.Min = 0
	if top := floats.Max(c.Pc); top > 0 {
		p.Y.Max = 1.1 * top
	}
	if err := addSeries(p, "Pc", 0, points(c.Sw, c.Pc)); err != nil {
		return nil, err
	}
	p.Legend.Top = true
	return p, nil
}

func relPermPlot(c *results.Curves) (*plot.Plot, error) {
	if len(c.Sw) == 0 {
		return nil, errNoData
	}
	p := plot.New()
	p.Title.Text = "Relative permeability curves"
	p.Y.Label.Text = "Relative permeability, kr"
	saturationAxis(p)
	p.Y.Min = 0
	p.Y.Max = 1
	if err := addSeries(p, "krw", 1, points(c.Sw, c.Krw)); err != nil {
		return nil, err
	}
	if err := addSeries(p, "krnw", 2, points(c.Sw, c.Krnw)); err != nil {
		return nil, err
	}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.XOffs = 10
	p.Legend.YOffs = -10
	return p, nil
}

// save draws the plots stacked top to bottom on one w×h figure and writes it
// as PNG.
func save(path string, w, h vg.Length, plots ...*plot.Plot) error {
	img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(DPI))
	dc := draw.New(img)

	grid := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		grid[i] = []*plot.Plot{p}
	}
	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      1,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(8),
		PadY:      vg.Points(16),
	}
	canvases := plot.Align(grid, tiles, dc)
	for i, p := range plots {
		p.Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// CapillaryPressure writes the Sw-Pc curve as a 10x8 inch figure.
func CapillaryPressure(c *results.Curves, path string) error {
	p, err := pcPlot(c)
	if err != nil {
		return err
	}
	return save(path, 10*vg.Inch, 8*vg.Inch, p)
}

// RelPerm writes the Sw-krw and Sw-krnw curves as a 10x8 inch figure.
func RelPerm(c *results.Curves, path string) error {
	p, err := relPermPlot(c)
	if err != nil {
		return err
	}
	return save(path, 10*vg.Inch, 8*vg.Inch, p)
}

// PcAndRelPerm writes both curves as two stacked panels of a 6x10 inch
// figure, capillary pressure on top.
func PcAndRelPerm(c *results.Curves, path string) error {
	pc, err := pcPlot(c)
	if err != nil {
		return err
	}
	kr, err := relPermPlot(c)
	if err != nil {
		return err
	}
	return save(path, 6*vg.Inch, 10*vg.Inch, pc, kr)
}

// ProcessAndPlot reduces the solver output to data files and draws the three
// figures into the simulation directory. It returns the figure paths.
func ProcessAndPlot(in *config.Inputs) ([]string, error) {
	c, err := results.Process(in)
	if err != nil {
		return nil, err
	}
	return WriteFigures(in, c)
}

// WriteFigures draws the three figures of c into the simulation directory.
func WriteFigures(in *config.Inputs, c *results.Curves) ([]string, error) {
	figures := []struct {
		name  string
		write func(*results.Curves, string) error
	}{
		{PcFile, CapillaryPressure},
		{RelPermFile, RelPerm},
		{CombinedFile, PcAndRelPerm},
	}
	paths := make([]string, 0, len(figures))
	for _, fig := range figures {
		path := filepath.Join(in.InputOutput.SimulationDirectory, fig.name)
		if err := fig.write(c, path); err != nil {
			return nil, err
		}
		logrus.Infof("Saved %s", path)
		paths = append(paths, path)
	}
	return paths, nil
}
