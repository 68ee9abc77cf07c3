package winding

import (
	"fmt"
	"math"

	"github.com/coilworks/fpcwind/pkg/fab"
	"github.com/coilworks/fpcwind/pkg/toroid"
)

// Solve finds the minimal-layer-count configuration satisfying all geometric
// and electrical constraints, or returns an *InfeasibleError carrying
// remediation data. Deterministic: the layer search walks a fixed, finite
// option set in ascending order and stops at the first feasible entry.
func Solve(core toroid.CoreSpec, req toroid.Request, cons fab.Constraints) (*Plan, error) {
	if err := cons.Validate(); err != nil {
		return nil, err
	}
	if err := core.Validate(); err != nil {
		return nil, err
	}
	if err := req.Validate(cons); err != nil {
		return nil, err
	}

	copper, err := cons.CopperSpec(req.Copper)
	if err != nil {
		return nil, err
	}
	viaDrill := req.ViaDrillMM
	if viaDrill == 0 {
		viaDrill = cons.DefaultViaDrillMM
	}
	via, err := cons.ViaOption(viaDrill)
	if err != nil {
		return nil, err
	}
	padDrill := req.PadDrillMM
	if padDrill == 0 {
		padDrill = cons.DefaultPadDrillMM
	}

	cfg, ok := search(core, req.Turns, req, cons, copper, via)
	if !ok {
		return nil, reject(core, req, cons, copper, via)
	}
	return buildPlan(core, req, cons, copper, via, padDrill, cfg), nil
}

// config is one feasible point in the layer search space.
type config struct {
	totalLayers   int
	parallelCount int
	seriesCount   int
	turnsPerSet   int
	edgePitchMM   float64
	traceWidthMM  float64
	marginMM      float64
	farm          ViaFarm
}

// search walks total layer counts ascending, and for each total its
// series×parallel factorizations with the fewest series sets first. The first
// feasible factorization wins: minimal layers, then fewest series sets, then
// the widest parallel group.
func search(core toroid.CoreSpec, turns int, req toroid.Request, cons fab.Constraints,
	copper fab.CopperSpec, via fab.ViaOption) (config, bool) {

	coverage := req.CoverageDeg / 360.0
	// The bore circumference bounds the strip: the ID is always the tightest
	// radius, and only a safety fraction of it is usable once rolled.
	availableLength := core.IDMM * math.Pi * coverage * cons.LengthSafetyFactor
	radial := core.RadialMM()
	margin := edgeMargin(radial, cons)

	for _, total := range validLayerCounts(req.MaxLayers) {
		for series := 1; series <= total; series++ {
			if total%series != 0 {
				continue
			}
			parallel := total / series
			// Series sets must deliver the requested turns exactly.
			if turns%series != 0 {
				continue
			}
			turnsPerSet := turns / series

			// Each series set is offset by half a pitch from the previous
			// one, so the strip must hold the offsets on top of the turns.
			edgePitch := availableLength / (float64(turnsPerSet) + float64(series-1)/2.0)

			traceWidth := edgePitch - cons.MinGapMM
			if traceWidth < cons.MinTraceWidthMM {
				continue
			}
			required := math.Max(cons.MinTraceWidthMM, copper.WidthPerAmpMM*req.CurrentAmps/float64(parallel))
			if required > traceWidth {
				continue
			}

			farm, ok := sizeFarm(req.CurrentAmps, via, edgePitch, margin, cons)
			if !ok {
				continue
			}

			return config{
				totalLayers:   total,
				parallelCount: parallel,
				seriesCount:   series,
				turnsPerSet:   turnsPerSet,
				edgePitchMM:   edgePitch,
				traceWidthMM:  traceWidth,
				marginMM:      margin,
				farm:          farm,
			}, true
		}
	}
	return config{}, false
}

// edgeMargin is the clear band along each strip edge reserved for lap pads
// and via farms; traces fan only between the two margins.
func edgeMargin(radial float64, cons fab.Constraints) float64 {
	return radial*0.3 + cons.PadEdgeGapMM + cons.LapPadHeightMM + 0.5
}

// sizeFarm sizes the via grid carrying the full winding current across a lap
// joint. The farm may grow columns only while adjacent turns' farms keep the
// minimum gap, and rows only while the grid stays inside the edge margin.
func sizeFarm(amps float64, via fab.ViaOption, edgePitch, margin float64, cons fab.Constraints) (ViaFarm, bool) {
	count := int(math.Ceil(amps / via.Amps))
	if count < 1 {
		count = 1
	}
	spacing := via.PadMM + cons.ViaClearanceMM

	maxFarmWidth := edgePitch - cons.MinGapMM
	cols := 1 + int(math.Floor((maxFarmWidth-via.PadMM)/spacing))
	if cols < 1 {
		cols = 1
	}
	if cols > count {
		cols = count
	}
	rows := (count + cols - 1) / cols

	farm := ViaFarm{
		Count:   count,
		Rows:    rows,
		Cols:    cols,
		DrillMM: via.DrillMM,
		PadMM:   via.PadMM,
		PitchMM: spacing,
	}
	if farm.WidthMM() > maxFarmWidth {
		return ViaFarm{}, false
	}
	// Topmost via pad must stay inside the strip edge gap.
	topPadEdge := margin - cons.ViaFarmInsetMM - float64(rows-1)*spacing - via.PadMM/2
	if topPadEdge < cons.PadEdgeGapMM {
		return ViaFarm{}, false
	}
	return farm, true
}

func buildPlan(core toroid.CoreSpec, req toroid.Request, cons fab.Constraints,
	copper fab.CopperSpec, via fab.ViaOption, padDrill float64, cfg config) *Plan {

	coverage := req.CoverageDeg / 360.0
	radial := core.RadialMM()
	stripLength := core.IDMM * math.Pi * coverage * cons.LengthSafetyFactor
	stripHeight := 2*radial + core.HeightMM

	bendRadius := cons.BendKFactor * (cons.SubstrateThicknessMM + copper.ThicknessMM)
	if bendRadius < cons.MinBendRadiusMM {
		bendRadius = cons.MinBendRadiusMM
	}

	expansion := (core.ODMM - core.IDMM) * math.Pi * coverage
	wedges := int(math.Ceil(expansion / cons.WedgeSlitWidthMM))
	if wedges < cons.MinWedgeSlits {
		wedges = cons.MinWedgeSlits
	}

	sets := make([]SeriesSet, cfg.seriesCount)
	for k := 0; k < cfg.seriesCount; k++ {
		layers := make([]int, cfg.parallelCount)
		for p := 0; p < cfg.parallelCount; p++ {
			layers[p] = k*cfg.parallelCount + p
		}
		sets[k] = SeriesSet{
			Index:    k,
			Layers:   layers,
			OffsetMM: float64(k) * cfg.edgePitchMM / 2,
		}
	}

	padSize := padDrill * cons.AnnularRingRatio
	// Lap pads want to be at least the nominal height wide for solderability,
	// but never so wide that neighbouring pads close the gap.
	lapPadWidth := math.Max(cfg.traceWidthMM, cons.LapPadHeightMM)
	if max := cfg.edgePitchMM - cons.MinGapMM; lapPadWidth > max {
		lapPadWidth = max
	}

	plan := &Plan{
		Core:    core,
		Request: req,

		TotalLayers:   cfg.totalLayers,
		ParallelCount: cfg.parallelCount,
		SeriesCount:   cfg.seriesCount,
		TurnsPerSet:   cfg.turnsPerSet,
		Sets:          sets,

		TraceWidthMM:  cfg.traceWidthMM,
		PitchIDMM:     core.IDMM * math.Pi * coverage / float64(cfg.turnsPerSet),
		PitchODMM:     core.ODMM * math.Pi * coverage / float64(cfg.turnsPerSet),
		EdgePitchMM:   cfg.edgePitchMM,
		BendRadiusMM:  bendRadius,
		TraceAngleRad: math.Atan2(cfg.edgePitchMM, stripHeight),

		StripLengthMM: stripLength,
		StripHeightMM: stripHeight,
		RadialMM:      radial,
		MarginMM:      cfg.marginMM,
		WedgeCount:    wedges,

		Farm:             cfg.farm,
		JointPadWidthMM:  math.Max(lapPadWidth, cfg.farm.WidthMM()+cons.ViaClearanceMM),
		JointPadHeightMM: cfg.marginMM - cons.PadEdgeGapMM,
		LapPadWidthMM:    lapPadWidth,
		LapPadHeightMM:   cons.LapPadHeightMM,
		PadDrillMM:       padDrill,
		PadSizeMM:        padSize,
		FlapDiameterMM:   padSize + 2*cons.FlapMarginMM,

		CopperThicknessMM: copper.ThicknessMM,
		CapacityAmps:      cfg.traceWidthMM / copper.WidthPerAmpMM * float64(cfg.parallelCount),
	}
	return plan
}

// reject assembles the remediation data for an exhausted search: the largest
// turn count that fits this core, the nearest feasible counts around the
// request, and the smallest bore that fits the request. Every suggestion is
// verified by re-running the same search before it is reported.
func reject(core toroid.CoreSpec, req toroid.Request, cons fab.Constraints,
	copper fab.CopperSpec, via fab.ViaOption) *InfeasibleError {

	e := &InfeasibleError{
		CoreName:    core.Name,
		Turns:       req.Turns,
		CurrentAmps: req.CurrentAmps,
		MaxLayers:   req.MaxLayers,
	}

	for t := req.Turns - 1; t >= 1; t-- {
		if _, ok := search(core, t, req, cons, copper, via); ok {
			e.MaxTurns = t
			break
		}
	}
	if e.MaxTurns > 0 {
		e.AchievableTurns = append(e.AchievableTurns, e.MaxTurns)
	}
	for t := req.Turns + 1; t <= req.Turns+req.MaxLayers; t++ {
		if _, ok := search(core, t, req, cons, copper, via); ok {
			e.AchievableTurns = append(e.AchievableTurns, t)
			break
		}
	}

	e.MinCoreIDMM = minCoreID(core, req, cons, copper, via)
	return e
}

// minCoreID finds the smallest bore diameter on which the request becomes
// feasible, preserving the core's radial wall thickness and height.
// Feasibility is monotone in the bore (a larger bore only loosens the pitch),
// so a doubling probe plus binary search brackets it; the result is rounded
// up to 0.01mm and re-verified. Zero when nothing within reason fits.
func minCoreID(core toroid.CoreSpec, req toroid.Request, cons fab.Constraints,
	copper fab.CopperSpec, via fab.ViaOption) float64 {

	radial := core.RadialMM()
	feasible := func(id float64) bool {
		candidate := toroid.CoreSpec{
			Name:     core.Name,
			IDMM:     id,
			ODMM:     id + 2*radial,
			HeightMM: core.HeightMM,
		}
		_, ok := search(candidate, req.Turns, req, cons, copper, via)
		return ok
	}

	coverage := req.CoverageDeg / 360.0
	// Loosest case: all layers parallel, one series set. Any feasible bore
	// must at least satisfy width + gap <= pitch there.
	required := math.Max(cons.MinTraceWidthMM,
		copper.WidthPerAmpMM*req.CurrentAmps/float64(req.MaxLayers))
	lo := math.Max(core.IDMM, (required+cons.MinGapMM)*float64(req.Turns)/
		(math.Pi*coverage*cons.LengthSafetyFactor))

	hi := lo
	found := false
	for i := 0; i < 24; i++ {
		if feasible(hi) {
			found = true
			break
		}
		hi *= 2
	}
	if !found {
		return 0
	}
	for hi-lo > 0.001 {
		mid := (lo + hi) / 2
		if feasible(mid) {
			hi = mid
		} else {
			lo = mid
		}
	}
	id := math.Ceil(hi*100) / 100
	for !feasible(id) {
		id += 0.01
	}
	return id
}

// Describe renders the solved configuration as the terminal banner the
// generate and solve commands print.
func (p *Plan) Describe() string {
	s := fmt.Sprintf("Core %s: OD=%.2fmm ID=%.2fmm H=%.2fmm, coverage %g deg\n",
		p.Core.Name, p.Core.ODMM, p.Core.IDMM, p.Core.HeightMM, p.Request.CoverageDeg)
	s += fmt.Sprintf("Turns: %d (%d per set x %d series sets)\n", p.Request.Turns, p.TurnsPerSet, p.SeriesCount)
	s += fmt.Sprintf("Layers: %d total, %d parallel per set\n", p.TotalLayers, p.ParallelCount)
	s += fmt.Sprintf("Trace: %.3fmm wide, pitch %.3fmm at ID (%.3fmm on strip), angle %.2f deg\n",
		p.TraceWidthMM, p.PitchIDMM, p.EdgePitchMM, p.TraceAngleRad*180/math.Pi)
	s += fmt.Sprintf("Current: %.2fA required, %.2fA capacity\n", p.Request.CurrentAmps, p.CapacityAmps)
	s += fmt.Sprintf("Via farm: %d vias (%dx%d grid, %.2fmm drill)\n", p.Farm.Count, p.Farm.Rows, p.Farm.Cols, p.Farm.DrillMM)
	s += fmt.Sprintf("Strip: %.2fmm x %.2fmm, bend radius %.2fmm, %d expansion wedges per face",
		p.StripLengthMM, p.StripHeightMM, p.BendRadiusMM, p.WedgeCount)
	return s
}
