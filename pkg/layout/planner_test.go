package layout

import (
	"errors"
	"reflect"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coilworks/fpcwind/pkg/fab"
	"github.com/coilworks/fpcwind/pkg/toroid"
	"github.com/coilworks/fpcwind/pkg/winding"
)

func solveT68(t *testing.T, req toroid.Request) (*winding.Plan, fab.Constraints) {
	t.Helper()
	cons := fab.Default()
	core, err := toroid.NewDatabase().Lookup("T68")
	require.NoError(t, err)
	plan, err := winding.Solve(core, req, cons)
	require.NoError(t, err)
	return plan, cons
}

func stdRequest() toroid.Request {
	return toroid.Request{
		Turns:       20,
		CurrentAmps: 0.5,
		CoverageDeg: 360,
		MaxLayers:   2,
		Copper:      fab.CopperOneOz,
	}
}

func TestBuildBasicStrip(t *testing.T) {
	plan, cons := solveT68(t, stdRequest())
	g, err := Build(plan, cons)
	require.NoError(t, err)

	// Closed outline covering at least the nominal strip.
	require.GreaterOrEqual(t, len(g.Outline), 5)
	assert.Equal(t, g.Outline[0], g.Outline[len(g.Outline)-1])
	assert.GreaterOrEqual(t, g.Board.WidthMM, plan.StripLengthMM)
	assert.Equal(t, plan.StripHeightMM, g.Board.HeightMM)
	// A single-layer solve still produces a two-face board.
	assert.Equal(t, 1, plan.TotalLayers)
	assert.Equal(t, 2, g.Board.CopperLayers)

	// One path per turn per layer of its parallel group.
	assert.Len(t, g.Traces, plan.Request.Turns*plan.ParallelCount)
}

func TestBoreRunsVerticalAtPitch(t *testing.T) {
	plan, cons := solveT68(t, stdRequest())
	g, err := Build(plan, cons)
	require.NoError(t, err)

	var boreXs []float64
	for _, tr := range g.Traces {
		if tr.Layer != 0 {
			continue
		}
		require.Len(t, tr.Points, 4)
		// Middle segment is the bore run: vertical by construction.
		assert.Equal(t, tr.Points[1].X, tr.Points[2].X)
		boreXs = append(boreXs, tr.Points[1].X)
	}
	sort.Float64s(boreXs)
	for i := 0; i+1 < len(boreXs); i++ {
		spacing := boreXs[i+1] - boreXs[i]
		assert.InDelta(t, plan.EdgePitchMM, spacing, 1e-9)
		assert.LessOrEqual(t, plan.TraceWidthMM+cons.MinGapMM, spacing+1e-9)
	}
}

func TestLapPadAlignment(t *testing.T) {
	req := stdRequest()
	req.Turns = 54
	req.MaxLayers = 6
	plan, cons := solveT68(t, req)
	require.Greater(t, plan.SeriesCount, 1)

	g, err := Build(plan, cons)
	require.NoError(t, err)

	aPads := map[int]Pad{}
	bPads := map[int]Pad{}
	for _, pad := range g.Pads {
		if pad.Kind != PadLap {
			continue
		}
		idx, convErr := strconv.Atoi(pad.Name[1:])
		require.NoError(t, convErr)
		switch pad.Name[0] {
		case 'A':
			aPads[idx] = pad
		case 'B':
			bPads[idx] = pad
		}
	}
	require.NotEmpty(t, bPads)
	for idx, b := range bPads {
		a, ok := aPads[idx+1]
		require.True(t, ok, "B%d has no matching A%d", idx, idx+1)
		assert.Equal(t, a.At.X, b.At.X, "B%d/A%d lap misaligned", idx, idx+1)
	}
}

func TestTerminationsAndTaps(t *testing.T) {
	req := stdRequest()
	req.Taps = []int{5, 10}
	plan, cons := solveT68(t, req)
	g, err := Build(plan, cons)
	require.NoError(t, err)

	byName := map[string]Pad{}
	for _, pad := range g.Pads {
		byName[pad.Name] = pad
	}

	start := byName["START"]
	assert.Equal(t, PadCastellated, start.Kind)
	assert.Equal(t, 0.0, start.At.Y) // cut by the outline edge
	end := byName["END"]
	assert.Equal(t, plan.StripHeightMM, end.At.Y)

	for _, name := range []string{"T5", "T10"} {
		tap, ok := byName[name]
		require.True(t, ok)
		assert.Equal(t, PadTapFlap, tap.Kind)
		assert.Less(t, tap.At.Y, 0.0) // on the flap, past the strip edge
		assert.Greater(t, tap.DrillMM, 0.0)
	}

	// Each tap adds one outline lobe: 4 extra vertices.
	assert.Len(t, g.Outline, 5+4*len(req.Taps))

	// Every flap and termination is backed by a stiffener.
	assert.Len(t, g.Stiffeners, len(req.Taps)+2)
}

func TestViaFarmsPerTurn(t *testing.T) {
	plan, cons := solveT68(t, stdRequest())
	g, err := Build(plan, cons)
	require.NoError(t, err)

	// One farm per turn per side, minus the START and END replacements.
	wantFarms := 2*plan.Request.Turns - 2
	assert.Len(t, g.Vias, wantFarms*plan.Farm.Count)

	for _, via := range g.Vias {
		assert.Equal(t, 0, via.FromLayer)
		assert.Equal(t, g.Board.CopperLayers-1, via.ToLayer)
		assert.Equal(t, plan.Farm.DrillMM, via.DrillMM)
		if via.Side == SideA {
			assert.Less(t, via.At.Y, plan.MarginMM)
		} else {
			assert.Greater(t, via.At.Y, plan.StripHeightMM-plan.MarginMM)
		}
	}
}

// A one-layer winding must still land its B lap pads on the bottom face and
// span its vias across the board, or the rolled strip laps bare substrate
// over the A pads.
func TestSingleLayerLapPadsReachBottomFace(t *testing.T) {
	plan, cons := solveT68(t, stdRequest())
	require.Equal(t, 1, plan.TotalLayers)

	g, err := Build(plan, cons)
	require.NoError(t, err)

	var aPads, bPads int
	for _, pad := range g.Pads {
		if pad.Kind != PadLap {
			continue
		}
		switch pad.Name[0] {
		case 'A':
			aPads++
			assert.Equal(t, 0, pad.Layer, pad.Name)
		case 'B':
			bPads++
			assert.Equal(t, 1, pad.Layer, pad.Name)
		}
	}
	require.Greater(t, aPads, 0)
	require.Greater(t, bPads, 0)

	for _, via := range g.Vias {
		assert.NotEqual(t, via.FromLayer, via.ToLayer)
	}
}

func TestFoldLinesAtBoreTransitions(t *testing.T) {
	plan, cons := solveT68(t, stdRequest())
	g, err := Build(plan, cons)
	require.NoError(t, err)

	require.NotEmpty(t, g.FoldSegments)
	ys := map[float64]bool{}
	for _, seg := range g.FoldSegments {
		assert.Equal(t, seg.From.Y, seg.To.Y)
		ys[seg.From.Y] = true
	}
	assert.True(t, ys[plan.RadialMM])
	assert.True(t, ys[plan.RadialMM+plan.Core.HeightMM])
	assert.Len(t, ys, 2)
}

func TestSlitsAvoidCopper(t *testing.T) {
	plan, cons := solveT68(t, stdRequest())
	g, err := Build(plan, cons)
	require.NoError(t, err)
	require.NotEmpty(t, g.Slits)

	// Slits sit on the gap midline of their face: clear of every anchor by
	// half the copper-free gap.
	minClear := (plan.EdgePitchMM - plan.TraceWidthMM) / 2
	for _, slit := range g.Slits {
		assert.Equal(t, slit.From.X, slit.To.X)
		topFace := slit.From.Y == 0
		for _, tr := range g.Traces {
			anchorX := tr.Points[0].X
			if !topFace {
				anchorX = tr.Points[len(tr.Points)-1].X
			}
			dist := anchorX - slit.From.X
			if dist < 0 {
				dist = -dist
			}
			assert.GreaterOrEqual(t, dist+1e-9, minClear,
				"slit at x=%.3f too close to anchor x=%.3f", slit.From.X, anchorX)
		}
	}
	// Depth stops a bend radius short of the fold line.
	top := g.Slits[0]
	assert.Equal(t, 0.0, top.From.Y)
	assert.InDelta(t, plan.RadialMM-plan.BendRadiusMM, top.To.Y, 1e-9)
}

func TestBuildDeterministic(t *testing.T) {
	plan, cons := solveT68(t, stdRequest())
	a, err := Build(plan, cons)
	require.NoError(t, err)
	b, err := Build(plan, cons)
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(a, b))
}

func TestBuildRejectsBrokenFarm(t *testing.T) {
	plan, cons := solveT68(t, stdRequest())
	broken := *plan
	broken.Farm.Rows = 50 // overruns the edge margin: solver bug territory

	_, err := Build(&broken, cons)
	require.Error(t, err)
	var invariant *InvariantError
	require.True(t, errors.As(err, &invariant))
	assert.Equal(t, "via farm", invariant.Stage)
}

func TestBuildRejectsBrokenPitch(t *testing.T) {
	plan, cons := solveT68(t, stdRequest())
	broken := *plan
	broken.TraceWidthMM = broken.EdgePitchMM // leaves no gap at all

	_, err := Build(&broken, cons)
	var invariant *InvariantError
	require.True(t, errors.As(err, &invariant))
	assert.Equal(t, "trace pitch", invariant.Stage)
}

func TestGenerateEndToEnd(t *testing.T) {
	cons := fab.Default()
	db := toroid.NewDatabase()

	g, plan, err := Generate(db, "t-68", stdRequest(), cons)
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "T68", plan.Core.Name)

	_, _, err = Generate(db, "T-999", stdRequest(), cons)
	assert.True(t, errors.Is(err, toroid.ErrUnknownCore))

	bad := stdRequest()
	bad.Turns = 0
	_, _, err = Generate(db, "T68", bad, cons)
	var invalid *toroid.InvalidRequestError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "turns", invalid.Field)
}
