package kicad

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/coilworks/fpcwind/pkg/layout"
)

// GeneratorName is stamped into every emitted board file.
const GeneratorName = "fpcwind"

// sw is a streaming s-expression writer: nodes open and close explicitly and
// everything goes straight to the underlying writer, so the emitter never
// builds the document in memory.
type sw struct {
	w     *bufio.Writer
	depth int
	err   error
}

func newSW(w io.Writer) *sw {
	return &sw{w: bufio.NewWriter(w)}
}

func (s *sw) open(name string) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, "\n%s(%s", strings.Repeat("  ", s.depth), name)
	s.depth++
}

func (s *sw) close() {
	if s.err != nil {
		return
	}
	s.depth--
	_, s.err = s.w.WriteString(")")
}

func (s *sw) atom(format string, args ...interface{}) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, " "+format, args...)
}

// node writes a complete child list on the current line.
func (s *sw) node(name, format string, args ...interface{}) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, " (%s "+format+")", append([]interface{}{name}, args...)...)
}

func (s *sw) flush() error {
	if s.err != nil {
		return s.err
	}
	return s.w.Flush()
}

// mm renders a millimeter value the way KiCad writes them: fixed precision,
// so identical plans emit byte-identical files.
func mm(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

// Write serializes a geometry plan as a .kicad_pcb document. All copper joins
// one net ("WINDING"); the emitter is purely mechanical and trusts the plan.
func Write(w io.Writer, g *layout.GeometryPlan) error {
	s := newSW(w)
	total := g.Board.CopperLayers
	if total < 2 {
		total = 2
	}

	if _, err := s.w.WriteString("(kicad_pcb (version 20240108) (generator \"" + GeneratorName + "\")"); err != nil {
		return err
	}

	s.open("general")
	s.node("thickness", "0.2")
	s.close()
	s.atom("\n  (paper \"A4\")")

	s.open("layers")
	for i := 0; i < total; i++ {
		s.atom("\n    (%d %q signal)", copperNumber(i, total), copperName(i, total))
	}
	s.atom("\n    (%d \"B.SilkS\" user)", layerBSilk)
	s.atom("\n    (%d \"F.SilkS\" user)", layerFSilk)
	s.atom("\n    (%d \"Edge.Cuts\" user)", layerEdgeCuts)
	s.atom("\n    (%d \"User.1\" user)", layerUser1)
	s.close()

	s.open("net")
	s.atom("0 \"\"")
	s.close()
	s.open("net")
	s.atom("1 \"WINDING\"")
	s.close()

	writeOutline(s, g)
	writeSlits(s, g)
	writeTraces(s, g, total)
	writeVias(s, g, total)
	writePads(s, g, total)
	writeFoldLines(s, g)
	writeStiffeners(s, g)
	writeTexts(s, g)

	if s.err == nil {
		_, s.err = s.w.WriteString("\n)\n")
	}
	return s.flush()
}

func writeEdgeLine(s *sw, from, to layout.Point) {
	s.open("gr_line")
	s.node("start", "%s %s", mm(from.X), mm(from.Y))
	s.node("end", "%s %s", mm(to.X), mm(to.Y))
	s.atom("(stroke (width 0.1) (type solid))")
	s.node("layer", "%q", "Edge.Cuts")
	s.close()
}

func writeOutline(s *sw, g *layout.GeometryPlan) {
	for i := 0; i+1 < len(g.Outline); i++ {
		writeEdgeLine(s, g.Outline[i], g.Outline[i+1])
	}
}

func writeSlits(s *sw, g *layout.GeometryPlan) {
	for _, slit := range g.Slits {
		writeEdgeLine(s, slit.From, slit.To)
	}
}

func writeTraces(s *sw, g *layout.GeometryPlan, total int) {
	for _, tr := range g.Traces {
		for i := 0; i+1 < len(tr.Points); i++ {
			s.open("segment")
			s.node("start", "%s %s", mm(tr.Points[i].X), mm(tr.Points[i].Y))
			s.node("end", "%s %s", mm(tr.Points[i+1].X), mm(tr.Points[i+1].Y))
			s.node("width", "%s", mm(tr.WidthMM))
			s.node("layer", "%q", copperName(tr.Layer, total))
			s.node("net", "1")
			s.close()
		}
	}
}

func writeVias(s *sw, g *layout.GeometryPlan, total int) {
	for _, via := range g.Vias {
		s.open("via")
		s.node("at", "%s %s", mm(via.At.X), mm(via.At.Y))
		s.node("size", "%s", mm(via.PadMM))
		s.node("drill", "%s", mm(via.DrillMM))
		s.atom("(layers %q %q)", copperName(via.FromLayer, total), copperName(via.ToLayer, total))
		s.node("net", "1")
		s.close()
	}
}

func writePads(s *sw, g *layout.GeometryPlan, total int) {
	for _, pad := range g.Pads {
		s.open("footprint")
		s.atom("%q", GeneratorName+":PAD_"+pad.Name)
		s.node("layer", "%q", "F.Cu")
		s.node("at", "%s %s", mm(pad.At.X), mm(pad.At.Y))

		s.open("pad")
		s.atom("%q", pad.Name)
		if pad.DrillMM > 0 {
			s.atom("thru_hole circle")
			s.node("at", "0 0")
			s.node("size", "%s %s", mm(pad.WidthMM), mm(pad.HeightMM))
			s.node("drill", "%s", mm(pad.DrillMM))
			s.atom("(layers \"*.Cu\" \"*.Mask\")")
		} else {
			s.atom("smd rect")
			s.node("at", "0 0")
			s.node("size", "%s %s", mm(pad.WidthMM), mm(pad.HeightMM))
			s.atom("(layers %q)", copperName(pad.Layer, total))
		}
		s.node("net", "1 %q", "WINDING")
		s.close()
		s.close()
	}
}

func writeFoldLines(s *sw, g *layout.GeometryPlan) {
	for _, seg := range g.FoldSegments {
		s.open("gr_line")
		s.node("start", "%s %s", mm(seg.From.X), mm(seg.From.Y))
		s.node("end", "%s %s", mm(seg.To.X), mm(seg.To.Y))
		s.atom("(stroke (width 0.15) (type solid))")
		s.node("layer", "%q", "F.SilkS")
		s.close()
	}
}

func writeStiffeners(s *sw, g *layout.GeometryPlan) {
	for _, r := range g.Stiffeners {
		s.open("gr_rect")
		s.node("start", "%s %s", mm(r.Min.X), mm(r.Min.Y))
		s.node("end", "%s %s", mm(r.Max.X), mm(r.Max.Y))
		s.atom("(stroke (width 0.1) (type solid))")
		s.atom("(fill none)")
		s.node("layer", "%q", "User.1")
		s.close()
	}
}

func writeTexts(s *sw, g *layout.GeometryPlan) {
	for _, txt := range g.Texts {
		silk := "F.SilkS"
		if txt.Back {
			silk = "B.SilkS"
		}
		s.open("gr_text")
		s.atom("%q", txt.Value)
		s.node("at", "%s %s", mm(txt.At.X), mm(txt.At.Y))
		s.node("layer", "%q", silk)
		s.atom("(effects (font (size %s %s) (thickness %s)))", mm(txt.HeightMM), mm(txt.HeightMM), mm(txt.StrokeMM))
		s.close()
	}
}
