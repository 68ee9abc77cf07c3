package kicad

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/coilworks/fpcwind/pkg/fab"
)

// Report summarizes a clearance re-verification of an emitted board.
type Report struct {
	Segments   int
	Vias       int
	Pads       int
	MinWidthMM float64 // narrowest copper segment found
	MinGapMM   float64 // tightest copper-to-copper gap found, +Inf if n/a
	Violations []string
}

// Clean reports whether the board passed every check.
func (r *Report) Clean() bool { return len(r.Violations) == 0 }

type seg struct {
	layer          string
	x1, y1, x2, y2 float64
	width          float64
}

// Verify re-parses an emitted board and re-checks the fabrication rules the
// generator promised: minimum trace width, minimum gap between parallel bore
// runs, and via drills the process actually offers.
func Verify(r io.Reader, cons fab.Constraints) (*Report, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	if doc.Name() != "kicad_pcb" {
		return nil, fmt.Errorf("kicad: not a board document: %q", doc.Name())
	}

	rep := &Report{MinWidthMM: math.Inf(1), MinGapMM: math.Inf(1)}
	var segs []seg

	for _, n := range doc.Children("segment") {
		s, err := parseSegment(n)
		if err != nil {
			return nil, err
		}
		segs = append(segs, s)
		rep.Segments++
		if s.width < rep.MinWidthMM {
			rep.MinWidthMM = s.width
		}
		if s.width < cons.MinTraceWidthMM-1e-5 {
			rep.Violations = append(rep.Violations,
				fmt.Sprintf("segment on %s: width %.4fmm below minimum %.4fmm", s.layer, s.width, cons.MinTraceWidthMM))
		}
	}

	for _, n := range doc.Children("via") {
		rep.Vias++
		drillNode, ok := n.Child("drill")
		if !ok {
			rep.Violations = append(rep.Violations, "via without drill")
			continue
		}
		drill, err := drillNode.Float(1)
		if err != nil {
			return nil, err
		}
		if _, err := cons.ViaOption(drill); err != nil {
			rep.Violations = append(rep.Violations,
				fmt.Sprintf("via drill %.2fmm not offered by the process", drill))
		}
	}

	rep.Pads = len(doc.Children("footprint"))

	checkGaps(rep, segs, cons)
	return rep, nil
}

func parseSegment(n Node) (seg, error) {
	var s seg
	start, ok := n.Child("start")
	if !ok {
		return s, fmt.Errorf("kicad: segment without start")
	}
	end, ok := n.Child("end")
	if !ok {
		return s, fmt.Errorf("kicad: segment without end")
	}
	widthNode, ok := n.Child("width")
	if !ok {
		return s, fmt.Errorf("kicad: segment without width")
	}
	layerNode, ok := n.Child("layer")
	if !ok {
		return s, fmt.Errorf("kicad: segment without layer")
	}
	var err error
	if s.x1, err = start.Float(1); err != nil {
		return s, err
	}
	if s.y1, err = start.Float(2); err != nil {
		return s, err
	}
	if s.x2, err = end.Float(1); err != nil {
		return s, err
	}
	if s.y2, err = end.Float(2); err != nil {
		return s, err
	}
	if s.width, err = widthNode.Float(1); err != nil {
		return s, err
	}
	s.layer = layerNode.Str(1)
	return s, nil
}

// checkGaps verifies the bore-run clearances: on each copper layer, vertical
// segments whose Y spans overlap must keep at least the minimum gap between
// copper edges. The bore runs are where the solver's width+gap inequality
// lives, so this is the check that matters.
func checkGaps(rep *Report, segs []seg, cons fab.Constraints) {
	byLayer := map[string][]seg{}
	var layers []string
	for _, s := range segs {
		if math.Abs(s.x1-s.x2) > 1e-6 {
			continue // fan segment, not a bore run
		}
		if _, ok := byLayer[s.layer]; !ok {
			layers = append(layers, s.layer)
		}
		byLayer[s.layer] = append(byLayer[s.layer], s)
	}
	sort.Strings(layers)

	for _, layer := range layers {
		runs := byLayer[layer]
		sort.Slice(runs, func(i, j int) bool { return runs[i].x1 < runs[j].x1 })
		for i := 0; i+1 < len(runs); i++ {
			a, b := runs[i], runs[i+1]
			if !overlapY(a, b) {
				continue
			}
			gap := (b.x1 - a.x1) - a.width/2 - b.width/2
			if gap < rep.MinGapMM {
				rep.MinGapMM = gap
			}
			// Tolerance absorbs the emitter's micrometer rounding.
			if gap < cons.MinGapMM-1e-5 {
				rep.Violations = append(rep.Violations,
					fmt.Sprintf("bore runs on %s at x=%.3f/%.3f: gap %.4fmm below minimum %.4fmm",
						layer, a.x1, b.x1, gap, cons.MinGapMM))
			}
		}
	}
}

func overlapY(a, b seg) bool {
	aMin, aMax := math.Min(a.y1, a.y2), math.Max(a.y1, a.y2)
	bMin, bMax := math.Min(b.y1, b.y2), math.Max(b.y1, b.y2)
	return aMin < bMax && bMin < aMax
}
