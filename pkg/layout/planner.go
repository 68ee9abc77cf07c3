package layout

import (
	"fmt"
	"math"
	"sort"

	"github.com/coilworks/fpcwind/pkg/fab"
	"github.com/coilworks/fpcwind/pkg/winding"
)

// Build derives the full primitive set for a solved winding plan. Pure
// function: identical plans produce identical geometry, in identical order.
func Build(plan *winding.Plan, cons fab.Constraints) (*GeometryPlan, error) {
	p := &planner{plan: plan, cons: cons}
	return p.build()
}

type planner struct {
	plan *winding.Plan
	cons fab.Constraints

	copper int // board copper faces, at least two

	// derived strip frame
	length  float64 // nominal strip length
	height  float64
	margin  float64
	radial  float64
	axial   float64
	dx      float64 // X advance of one trace across the strip
	boardW  float64
	startX  float64
	endX    float64
	flapH   float64
	neckW   float64
}

func (p *planner) build() (*GeometryPlan, error) {
	plan := p.plan
	p.length = plan.StripLengthMM
	p.height = plan.StripHeightMM
	p.margin = plan.MarginMM
	p.radial = plan.RadialMM
	p.axial = plan.Core.HeightMM

	// A board always has two copper faces. A single-layer winding routes on
	// the top face only, but its B lap pads must still sit on the bottom face
	// so the rolled strip laps copper over copper, with the via farms carrying
	// the joint through the board.
	p.copper = plan.TotalLayers
	if p.copper < 2 {
		p.copper = 2
	}

	traceLen := p.height - 2*p.margin
	if traceLen <= 0 {
		return nil, &InvariantError{
			Stage:  "strip cross-section",
			Detail: fmt.Sprintf("edge margins %.2fmm x2 consume the %.2fmm strip height", p.margin, p.height),
		}
	}
	p.dx = traceLen * math.Tan(plan.TraceAngleRad)

	if plan.Farm.WidthMM() > plan.JointPadWidthMM+1e-9 {
		return nil, &InvariantError{
			Stage:  "via farm",
			Detail: fmt.Sprintf("farm %.2fmm wide exceeds the %.2fmm joint footprint", plan.Farm.WidthMM(), plan.JointPadWidthMM),
		}
	}
	farmTop := p.margin - p.cons.ViaFarmInsetMM - float64(plan.Farm.Rows-1)*plan.Farm.PitchMM - plan.Farm.PadMM/2
	if farmTop < 0 {
		return nil, &InvariantError{
			Stage:  "via farm",
			Detail: fmt.Sprintf("farm rows overrun the %.2fmm edge margin", p.margin),
		}
	}
	if plan.TraceWidthMM+p.cons.MinGapMM > plan.EdgePitchMM+1e-9 {
		return nil, &InvariantError{
			Stage:  "trace pitch",
			Detail: fmt.Sprintf("width %.3f + gap %.3f exceeds pitch %.3f", plan.TraceWidthMM, p.cons.MinGapMM, plan.EdgePitchMM),
		}
	}

	p.startX = p.anchorA(0, 0)
	lastSet := plan.SeriesCount - 1
	p.endX = p.anchorA(lastSet, plan.TurnsPerSet-1) + p.dx
	p.boardW = math.Max(p.length, p.endX+plan.JointPadWidthMM/2+p.cons.PadEdgeGapMM)

	p.flapH = plan.FlapDiameterMM * 0.6
	p.neckW = math.Max(plan.TraceWidthMM, p.cons.MinFlapNeckWidthMM)

	g := &GeometryPlan{
		Board: Board{
			WidthMM:      p.boardW,
			HeightMM:     p.height,
			CopperLayers: p.copper,
		},
	}
	g.Outline = p.outline()
	g.Traces = p.traces()
	if err := p.checkTraces(g.Traces); err != nil {
		return nil, err
	}
	g.Vias = p.vias()
	g.Pads = p.pads()
	g.Slits = p.slits()
	g.FoldSegments = p.foldSegments()
	g.Stiffeners = p.stiffeners()
	g.Texts = p.texts()
	return g, nil
}

// anchorA is the strip X of a turn's A-edge anchor: the set offset plus half
// a pitch into the turn's wedge.
func (p *planner) anchorA(set, turn int) float64 {
	return p.plan.Sets[set].OffsetMM + (float64(turn)+0.5)*p.plan.EdgePitchMM
}

// setTurn maps a 1-based electrical turn to its series set and in-set index.
func (p *planner) setTurn(turn int) (int, int) {
	return (turn - 1) / p.plan.TurnsPerSet, (turn - 1) % p.plan.TurnsPerSet
}

// outline walks the board boundary clockwise from the origin. Tap flaps lobe
// out past the A edge; the rest is the rectangular strip.
func (p *planner) outline() []Point {
	var pts []Point
	pts = append(pts, Point{0, 0})

	taps := append([]int(nil), p.plan.Request.Taps...)
	sort.Ints(taps)
	for _, tap := range taps {
		set, turn := p.setTurn(tap)
		x := p.anchorA(set, turn)
		pts = append(pts,
			Point{x - p.neckW/2, 0},
			Point{x - p.neckW/2, -p.flapH},
			Point{x + p.neckW/2, -p.flapH},
			Point{x + p.neckW/2, 0},
		)
	}

	pts = append(pts,
		Point{p.boardW, 0},
		Point{p.boardW, p.height},
		Point{0, p.height},
		Point{0, 0},
	)
	return pts
}

// traces emits the hockey-stick path of every turn on every layer of its
// parallel group: a fan from the A anchor to the bore band, a vertical run
// through the bore, and a mirrored fan out to the B edge.
func (p *planner) traces() []TracePath {
	plan := p.plan
	yTop := p.margin
	yBot := p.height - p.margin
	boreTop := math.Max(p.radial, yTop)
	boreBot := math.Min(p.radial+p.axial, yBot)

	var traces []TracePath
	for _, set := range plan.Sets {
		for turn := 0; turn < plan.TurnsPerSet; turn++ {
			ax := p.anchorA(set.Index, turn)
			bx := ax + p.dx

			var pts []Point
			if boreTop+1e-9 < boreBot {
				pts = []Point{
					{ax, yTop},
					{ax + p.dx/2, boreTop},
					{ax + p.dx/2, boreBot},
					{bx, yBot},
				}
			} else {
				// Margins swallow the flat faces; fall back to one straight run.
				pts = []Point{{ax, yTop}, {bx, yBot}}
			}

			for _, layer := range set.Layers {
				traces = append(traces, TracePath{
					Layer:   layer,
					Set:     set.Index,
					Turn:    turn,
					WidthMM: plan.TraceWidthMM,
					Points:  pts,
				})
			}
		}
	}
	return traces
}

func (p *planner) checkTraces(traces []TracePath) error {
	halfW := p.plan.TraceWidthMM / 2
	for _, tr := range traces {
		for _, pt := range tr.Points {
			if pt.X-halfW < -1e-9 || pt.X+halfW > p.boardW+1e-9 {
				return &InvariantError{
					Stage:  "trace bounds",
					Detail: fmt.Sprintf("set %d turn %d at x=%.3f leaves the %.3fmm board", tr.Set, tr.Turn, pt.X, p.boardW),
				}
			}
		}
	}
	return nil
}

// vias places one farm per turn on each edge: the A-side farm hands current
// down the stack at the incoming joint, the B-side farm brings buried layers
// out to the lap pad. The START and END castellations replace the first A
// farm and the last B farm.
func (p *planner) vias() []Via {
	plan := p.plan
	farm := plan.Farm
	lastSet := plan.SeriesCount - 1

	emitFarm := func(vias []Via, cx, yEdge float64, down bool, set, turn int, side ViaSide) []Via {
		for r := 0; r < farm.Rows; r++ {
			for c := 0; c < farm.Cols; c++ {
				if r*farm.Cols+c >= farm.Count {
					break
				}
				x := cx - float64(farm.Cols-1)*farm.PitchMM/2 + float64(c)*farm.PitchMM
				y := yEdge - float64(r)*farm.PitchMM
				if down {
					y = yEdge + float64(r)*farm.PitchMM
				}
				vias = append(vias, Via{
					At:        Point{x, y},
					DrillMM:   farm.DrillMM,
					PadMM:     farm.PadMM,
					FromLayer: 0,
					ToLayer:   p.copper - 1,
					Set:       set,
					Turn:      turn,
					Side:      side,
				})
			}
		}
		return vias
	}

	var vias []Via
	for _, set := range plan.Sets {
		for turn := 0; turn < plan.TurnsPerSet; turn++ {
			ax := p.anchorA(set.Index, turn)
			if !(set.Index == 0 && turn == 0) {
				vias = emitFarm(vias, ax, p.margin-p.cons.ViaFarmInsetMM, false, set.Index, turn, SideA)
			}
			if !(set.Index == lastSet && turn == plan.TurnsPerSet-1) {
				vias = emitFarm(vias, ax+p.dx, p.height-p.margin+p.cons.ViaFarmInsetMM, true, set.Index, turn, SideB)
			}
		}
	}
	return vias
}

// pads emits the castellated terminations, the lap joint pads, and the tap
// flap pads. Lap alignment is exact: B(i) sits at A(i+1)'s X so the rolled
// strip continues the helix across the solder joint.
func (p *planner) pads() []Pad {
	plan := p.plan
	n := plan.TurnsPerSet
	lastSet := plan.SeriesCount - 1
	aPadY := p.margin - plan.LapPadHeightMM/2 - 0.1
	bPadY := p.height - p.margin + plan.LapPadHeightMM/2 + 0.1

	pads := []Pad{
		{
			Kind: PadCastellated, Name: "START",
			At:      Point{p.startX, 0},
			WidthMM: plan.PadSizeMM, HeightMM: plan.PadSizeMM,
			DrillMM: plan.PadDrillMM, Layer: -1,
		},
		{
			Kind: PadCastellated, Name: "END",
			At:      Point{p.endX, p.height},
			WidthMM: plan.PadSizeMM, HeightMM: plan.PadSizeMM,
			DrillMM: plan.PadDrillMM, Layer: -1,
		},
	}

	for _, set := range plan.Sets {
		for turn := 0; turn < n; turn++ {
			global := set.Index*n + turn
			if turn > 0 {
				pads = append(pads, Pad{
					Kind: PadLap, Name: fmt.Sprintf("A%d", global),
					At:      Point{p.anchorA(set.Index, turn), aPadY},
					WidthMM: plan.LapPadWidthMM, HeightMM: plan.LapPadHeightMM,
					Layer:   0,
				})
			}
			// The lap pad at the end of turn i lands on A(i+1) when rolled.
			// The last set hands its final hop to the END castellation.
			bLimit := n - 1
			if set.Index == lastSet {
				bLimit = n - 2
			}
			if turn < bLimit {
				pads = append(pads, Pad{
					Kind: PadLap, Name: fmt.Sprintf("B%d", global),
					At:      Point{p.anchorA(set.Index, turn+1), bPadY},
					WidthMM: plan.LapPadWidthMM, HeightMM: plan.LapPadHeightMM,
					Layer:   p.copper - 1,
				})
			}
		}
	}

	for _, tap := range p.plan.Request.Taps {
		set, turn := p.setTurn(tap)
		pads = append(pads, Pad{
			Kind: PadTapFlap, Name: fmt.Sprintf("T%d", tap),
			At:      Point{p.anchorA(set, turn), -p.flapH / 2},
			WidthMM: plan.PadSizeMM, HeightMM: plan.PadSizeMM,
			DrillMM: plan.PadDrillMM, Layer: -1,
		})
	}
	return pads
}

// slits cuts the wedge expansion slits into each flat face. Slit positions
// snap to the gap midline between adjacent anchors so no copper is cut, and
// stop a bend radius short of the fold line.
func (p *planner) slits() []Segment {
	plan := p.plan
	depth := p.radial - plan.BendRadiusMM
	if depth <= 0 {
		return nil
	}

	var anchorsA []float64
	for _, set := range plan.Sets {
		for turn := 0; turn < plan.TurnsPerSet; turn++ {
			anchorsA = append(anchorsA, p.anchorA(set.Index, turn))
		}
	}
	sort.Float64s(anchorsA)

	gapCentres := func(anchors []float64) []float64 {
		var gaps []float64
		for i := 0; i+1 < len(anchors); i++ {
			gaps = append(gaps, (anchors[i]+anchors[i+1])/2)
		}
		return gaps
	}

	pick := func(gaps []float64, want int) []float64 {
		if len(gaps) == 0 {
			return nil
		}
		if want >= len(gaps) {
			return gaps
		}
		picked := make([]float64, 0, want)
		for j := 0; j < want; j++ {
			ideal := (float64(j) + 0.5) * p.boardW / float64(want)
			best := gaps[0]
			for _, g := range gaps {
				if math.Abs(g-ideal) < math.Abs(best-ideal) {
					best = g
				}
			}
			if len(picked) == 0 || picked[len(picked)-1] != best {
				picked = append(picked, best)
			}
		}
		return picked
	}

	var slits []Segment
	for _, x := range pick(gapCentres(anchorsA), plan.WedgeCount) {
		slits = append(slits, Segment{Point{x, 0}, Point{x, depth}})
	}
	anchorsB := make([]float64, len(anchorsA))
	for i, a := range anchorsA {
		anchorsB[i] = a + p.dx
	}
	for _, x := range pick(gapCentres(anchorsB), plan.WedgeCount) {
		slits = append(slits, Segment{Point{x, p.height}, Point{x, p.height - depth}})
	}
	return slits
}

// foldSegments draws the dashed advisory marks at the two flat-face/bore
// transitions.
func (p *planner) foldSegments() []Segment {
	var segs []Segment
	for _, y := range []float64{p.radial, p.radial + p.axial} {
		for x := 0.0; x < p.boardW; {
			end := math.Min(x+p.cons.FoldDashMM, p.boardW)
			segs = append(segs, Segment{Point{x, y}, Point{end, y}})
			x = end + p.cons.FoldDashGapMM
		}
	}
	return segs
}

// stiffeners backs every flap and both castellated ends with a rigid region
// overlapping the coverlay opening, so the copper never flexes at the
// transition.
func (p *planner) stiffeners() []Rect {
	plan := p.plan
	ov := p.cons.StiffenerOverlapMM + p.cons.CoverlayClearanceMM

	var rects []Rect
	for _, tap := range plan.Request.Taps {
		set, turn := p.setTurn(tap)
		x := p.anchorA(set, turn)
		rects = append(rects, Rect{
			Min: Point{x - plan.FlapDiameterMM/2 - ov, -p.flapH - ov},
			Max: Point{x + plan.FlapDiameterMM/2 + ov, ov},
		})
	}
	half := plan.PadSizeMM/2 + ov
	rects = append(rects,
		Rect{Min: Point{p.startX - half, -half}, Max: Point{p.startX + half, half}},
		Rect{Min: Point{p.endX - half, p.height - half}, Max: Point{p.endX + half, p.height + half}},
	)
	return rects
}

func (p *planner) texts() []Text {
	plan := p.plan
	c := p.cons
	small := c.SilkTextHeightMM * 0.4

	texts := []Text{
		{At: Point{p.startX, plan.PadSizeMM/2 + 0.7}, Value: "S", HeightMM: small, StrokeMM: c.SilkTextThicknessMM},
		{At: Point{p.endX, p.height - plan.PadSizeMM/2 - 0.7}, Value: "E", HeightMM: small, StrokeMM: c.SilkTextThicknessMM, Back: true},
	}
	for _, tap := range plan.Request.Taps {
		set, turn := p.setTurn(tap)
		texts = append(texts, Text{
			At:       Point{p.anchorA(set, turn), -p.flapH - 0.7},
			Value:    fmt.Sprintf("T%d", tap),
			HeightMM: small, StrokeMM: c.SilkTextThicknessMM,
		})
	}
	texts = append(texts, Text{
		At:       Point{p.boardW / 2, p.radial / 2},
		Value:    fmt.Sprintf("%s %dT %gA", plan.Core.Name, plan.Request.Turns, plan.Request.CurrentAmps),
		HeightMM: c.SilkTextHeightMM, StrokeMM: c.SilkTextThicknessMM,
	})
	return texts
}
