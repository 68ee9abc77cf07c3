// Package winding solves the layer configuration for a toroid FPC winding:
// the minimal layer count and series/parallel grouping whose trace geometry
// fits the core while carrying the requested current. The solve is a pure
// function of its three immutable inputs; identical inputs produce identical
// plans.
package winding

import (
	"fmt"
	"strings"

	"github.com/coilworks/fpcwind/pkg/toroid"
)

// ViaFarm describes the grid of vias stitching a parallel group together at
// each lap joint, sized for the full winding current.
type ViaFarm struct {
	Count   int
	Rows    int
	Cols    int
	DrillMM float64
	PadMM   float64
	PitchMM float64 // centre-to-centre spacing
}

// WidthMM is the horizontal extent of the farm's pad envelope.
func (f ViaFarm) WidthMM() float64 {
	return float64(f.Cols-1)*f.PitchMM + f.PadMM
}

// HeightMM is the vertical extent of the farm's pad envelope.
func (f ViaFarm) HeightMM() float64 {
	return float64(f.Rows-1)*f.PitchMM + f.PadMM
}

// SeriesSet is one lap of turns: a parallel group of layers sharing one
// electrical path, offset along the strip so stacked sets never run
// trace-over-trace.
type SeriesSet struct {
	Index    int
	Layers   []int   // layer indices, top of stack first
	OffsetMM float64 // strip-X offset of this set's first turn
}

// Plan is a solved winding configuration with every derived scalar the
// geometry planner needs. Read-only once returned.
type Plan struct {
	Core    toroid.CoreSpec
	Request toroid.Request

	TotalLayers   int
	ParallelCount int
	SeriesCount   int
	TurnsPerSet   int
	Sets          []SeriesSet

	TraceWidthMM  float64
	PitchIDMM     float64 // nominal turn pitch at the bore radius
	PitchODMM     float64 // nominal turn pitch at the outer radius
	EdgePitchMM   float64 // strip pitch after bore safety factor and set offsets
	BendRadiusMM  float64
	TraceAngleRad float64

	StripLengthMM float64
	StripHeightMM float64
	RadialMM      float64
	MarginMM      float64 // clear band along each strip edge for pads and vias
	WedgeCount    int     // expansion slits per flat face

	Farm              ViaFarm
	JointPadWidthMM   float64 // reserved lap joint footprint, holds the farm
	JointPadHeightMM  float64
	LapPadWidthMM     float64
	LapPadHeightMM    float64
	PadDrillMM        float64
	PadSizeMM         float64
	FlapDiameterMM    float64

	CopperThicknessMM float64
	CapacityAmps      float64
}

// InfeasibleError reports that no layer configuration within the budget
// satisfies the width, gap, and via-farm constraints. It carries remediation
// data: the smallest core bore and the largest turn count that would fit,
// each verified to re-solve feasibly.
type InfeasibleError struct {
	CoreName    string
	Turns       int
	CurrentAmps float64
	MaxLayers   int

	// MinCoreIDMM is the smallest bore diameter that fits, assuming the
	// radial wall thickness is preserved. Zero if no bore within reason fits.
	MinCoreIDMM float64

	// MaxTurns is the largest turn count at or below the request that fits on
	// this core. Zero if even one turn does not fit.
	MaxTurns int

	// AchievableTurns lists the feasible turn counts nearest the request,
	// below and above, when the request itself cannot be met.
	AchievableTurns []int
}

func (e *InfeasibleError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "winding: no feasible configuration for %d turns at %gA on %s within %d layers",
		e.Turns, e.CurrentAmps, e.CoreName, e.MaxLayers)
	if e.MinCoreIDMM > 0 {
		fmt.Fprintf(&b, "; smallest workable bore ID %.2fmm", e.MinCoreIDMM)
	}
	if e.MaxTurns > 0 {
		fmt.Fprintf(&b, "; at most %d turns fit this core", e.MaxTurns)
	}
	return b.String()
}

// validLayerCounts enumerates the copper stack sizes the board house accepts,
// ascending: 1, 2, then even counts only.
func validLayerCounts(maxLayers int) []int {
	var counts []int
	for n := 1; n <= maxLayers; n++ {
		if n > 2 && n%2 != 0 {
			continue
		}
		counts = append(counts, n)
	}
	return counts
}
