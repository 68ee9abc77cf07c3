// Package layout turns a solved winding plan into positioned 2D primitives in
// the unrolled strip coordinate system: X is arc length along the wrap
// direction, Y spans the minor cross-section (outer flat face, bore band,
// return flat face). The planner assumes its input already passed the
// winding solver's feasibility checks; anything it still finds impossible is
// an internal invariant violation, not a user-facing rejection.
package layout

import "fmt"

// Point is a 2D coordinate in strip space, millimeters.
type Point struct {
	X float64
	Y float64
}

// Segment is a straight line between two points.
type Segment struct {
	From Point
	To   Point
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min Point
	Max Point
}

// TracePath is one copper path: the hockey-stick run of a single turn on a
// single layer, from its A-edge anchor through the bore band to its B-edge
// anchor.
type TracePath struct {
	Layer   int // copper layer index, 0 is the top
	Set     int // series set index
	Turn    int // turn index within the set
	WidthMM float64
	Points  []Point
}

// ViaSide tells which strip edge a via farm serves.
type ViaSide int

const (
	SideA ViaSide = iota // strip start edge, incoming lap joint
	SideB                // strip end edge, outgoing lap joint
)

// Via is one plated through-hole.
type Via struct {
	At        Point
	DrillMM   float64
	PadMM     float64
	FromLayer int
	ToLayer   int
	Set       int
	Turn      int
	Side      ViaSide
}

// PadKind is the closed set of pad styles the planner emits.
type PadKind int

const (
	PadCastellated PadKind = iota // half-hole termination cut by the outline
	PadLap                        // SMD lap joint pad
	PadTapFlap                    // through-hole pad on a tap flap
)

// Pad is one termination, lap, or tap pad.
type Pad struct {
	Kind     PadKind
	Name     string
	At       Point
	WidthMM  float64
	HeightMM float64
	DrillMM  float64 // zero for SMD pads
	Layer    int     // copper layer for SMD pads; -1 spans the whole stack
}

// Text is a silkscreen label.
type Text struct {
	At       Point
	Value    string
	HeightMM float64
	StrokeMM float64
	Back     bool // render on the back silk layer
}

// Board carries the overall dimensions the emitter needs.
type Board struct {
	WidthMM      float64
	HeightMM     float64
	CopperLayers int
}

// GeometryPlan is the complete set of primitives describing one manufactured
// strip. Read-only once produced; field order and slice order are
// deterministic so identical solves serialize identically.
type GeometryPlan struct {
	Board        Board
	Outline      []Point   // closed polygon, includes tap flap lobes
	Slits        []Segment // wedge expansion slits, cut lines
	Traces       []TracePath
	Vias         []Via
	Pads         []Pad
	FoldSegments []Segment // dashed advisory marks at the fold lines
	Stiffeners   []Rect
	Texts        []Text
}

// InvariantError reports a geometric impossibility the solver should have
// excluded. It is fatal: the fix belongs in the solver's feasibility checks,
// never in recovery here.
type InvariantError struct {
	Stage  string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("layout: internal invariant violated at %s: %s", e.Stage, e.Detail)
}
