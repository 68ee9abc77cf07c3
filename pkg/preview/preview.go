// Package preview renders a flat-pattern image of a geometry plan. The
// rendering is illustrative only: a sanity view of the strip before sending
// the board file to fabrication, with no correctness contract.
package preview

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/coilworks/fpcwind/pkg/layout"
)

// layerColors cycles over copper layers, top first.
var layerColors = []color.RGBA{
	{R: 200, G: 52, B: 52, A: 255},
	{R: 52, G: 90, B: 200, A: 255},
	{R: 52, G: 160, B: 90, A: 255},
	{R: 200, G: 160, B: 52, A: 255},
	{R: 150, G: 52, B: 200, A: 255},
	{R: 52, G: 180, B: 180, A: 255},
}

// Export renders the flat pattern to an image file; the format follows the
// extension (png, svg, pdf).
func Export(g *layout.GeometryPlan, filename string) error {
	p := plot.New()
	p.Title.Text = "FPC winding flat pattern"
	p.X.Label.Text = "Arc length (mm)"
	p.Y.Label.Text = "Cross-section (mm)"

	if err := addOutline(p, g); err != nil {
		return err
	}
	if err := addTraces(p, g); err != nil {
		return err
	}
	if err := addVias(p, g); err != nil {
		return err
	}
	if err := addPads(p, g); err != nil {
		return err
	}

	height := 4 * vg.Inch
	width := height * vg.Length(g.Board.WidthMM/g.Board.HeightMM)
	if width > 16*vg.Inch {
		width = 16 * vg.Inch
	}
	if err := p.Save(width, height, filename); err != nil {
		return fmt.Errorf("preview: saving %s: %w", filename, err)
	}
	return nil
}

func addOutline(p *plot.Plot, g *layout.GeometryPlan) error {
	pts := make(plotter.XYs, len(g.Outline))
	for i, pt := range g.Outline {
		pts[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = color.Black
	p.Add(line)

	for _, slit := range g.Slits {
		seg, err := plotter.NewLine(plotter.XYs{
			{X: slit.From.X, Y: slit.From.Y},
			{X: slit.To.X, Y: slit.To.Y},
		})
		if err != nil {
			return err
		}
		seg.LineStyle.Color = color.Black
		p.Add(seg)
	}

	for _, fold := range g.FoldSegments {
		seg, err := plotter.NewLine(plotter.XYs{
			{X: fold.From.X, Y: fold.From.Y},
			{X: fold.To.X, Y: fold.To.Y},
		})
		if err != nil {
			return err
		}
		seg.LineStyle.Color = color.RGBA{R: 128, G: 128, B: 128, A: 255}
		p.Add(seg)
	}
	return nil
}

func addTraces(p *plot.Plot, g *layout.GeometryPlan) error {
	for _, tr := range g.Traces {
		pts := make(plotter.XYs, len(tr.Points))
		for i, pt := range tr.Points {
			pts[i] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(1)
		line.LineStyle.Color = layerColors[tr.Layer%len(layerColors)]
		p.Add(line)
	}
	return nil
}

func addVias(p *plot.Plot, g *layout.GeometryPlan) error {
	if len(g.Vias) == 0 {
		return nil
	}
	pts := make(plotter.XYs, len(g.Vias))
	for i, via := range g.Vias {
		pts[i] = plotter.XY{X: via.At.X, Y: via.At.Y}
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)
	scatter.GlyphStyle.Color = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	p.Add(scatter)
	return nil
}

func addPads(p *plot.Plot, g *layout.GeometryPlan) error {
	if len(g.Pads) == 0 {
		return nil
	}
	pts := make(plotter.XYs, len(g.Pads))
	for i, pad := range g.Pads {
		pts[i] = plotter.XY{X: pad.At.X, Y: pad.At.Y}
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Radius = vg.Points(3)
	scatter.GlyphStyle.Color = color.RGBA{R: 220, G: 120, B: 0, A: 255}
	p.Add(scatter)
	return nil
}
