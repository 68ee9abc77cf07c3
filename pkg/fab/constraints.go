// Package fab holds the fabrication constraint table: the process limits a
// flex-circuit house imposes on trace geometry, via construction, and bend
// mechanics. The table is loaded once per run and never mutated; every solve
// receives it as an explicit argument.
package fab

import (
	"fmt"
	"sort"
)

// CopperClass identifies a copper foil weight. The class selects both the
// finished copper thickness and the trace-width-per-amp rule used for
// current-capacity sizing.
type CopperClass string

const (
	CopperHalfOz CopperClass = "0.5oz"
	CopperOneOz  CopperClass = "1oz"
	CopperTwoOz  CopperClass = "2oz"
)

// CopperSpec is one row of the copper-class table.
type CopperSpec struct {
	ThicknessMM   float64 // finished foil thickness
	WidthPerAmpMM float64 // required trace width per amp of continuous current
}

// ViaOption is one drill size the process offers, with its finished pad
// diameter and rated continuous current.
type ViaOption struct {
	DrillMM float64
	PadMM   float64
	Amps    float64
}

// Constraints is the immutable fabrication constraint table.
type Constraints struct {
	// Trace geometry
	MinTraceWidthMM  float64
	MinGapMM         float64
	MinAnnularRingMM float64

	// Copper classes available from the process
	Copper map[CopperClass]CopperSpec

	// Via construction
	ViaOptions        []ViaOption
	ViaClearanceMM    float64 // pad-edge to pad-edge spacing inside a via farm
	ViaAnnularRatio   float64 // via pad diameter = drill * this
	AnnularRingRatio  float64 // THT pad diameter = drill * this
	DefaultViaDrillMM float64
	DefaultPadDrillMM float64

	// Bend mechanics
	BendKFactor          float64
	SubstrateThicknessMM float64
	MinBendRadiusMM      float64

	// Strip mechanics
	LengthSafetyFactor float64 // usable fraction of the bore circumference
	WedgeSlitWidthMM   float64 // slit opening per wedge at the OD edge
	MinWedgeSlits      int

	// Flaps, lap joints, tabs
	FlapMarginMM       float64
	FlapNeckWidthMM    float64
	MinFlapNeckWidthMM float64
	LapPadHeightMM     float64
	PadEdgeGapMM       float64
	TabWidthBaseMM     float64
	TabWidthTipMM      float64
	TabHeightMM        float64
	TabSlotClearanceMM float64
	TabSlotCount       int

	// Via farm placement inside the lap margin
	ViaFarmInsetMM float64

	// Stiffeners and coverlay
	StiffenerOverlapMM  float64
	CoverlayClearanceMM float64

	// Silkscreen
	SilkLineWidthMM     float64
	SilkTextHeightMM    float64
	SilkTextThicknessMM float64

	// Fold-line dash pattern
	FoldDashMM    float64
	FoldDashGapMM float64
}

// Default returns the house process limits. These are the values the layouts
// have been fabricated against; override individual fields with a profile
// file when targeting a different house.
func Default() Constraints {
	return Constraints{
		MinTraceWidthMM:  0.15,
		MinGapMM:         0.15,
		MinAnnularRingMM: 0.125,

		Copper: map[CopperClass]CopperSpec{
			CopperHalfOz: {ThicknessMM: 0.018, WidthPerAmpMM: 0.60},
			CopperOneOz:  {ThicknessMM: 0.035, WidthPerAmpMM: 0.30},
			CopperTwoOz:  {ThicknessMM: 0.070, WidthPerAmpMM: 0.15},
		},

		ViaOptions: []ViaOption{
			{DrillMM: 0.2, PadMM: 0.45, Amps: 0.25},
			{DrillMM: 0.3, PadMM: 0.60, Amps: 0.40},
			{DrillMM: 0.4, PadMM: 0.80, Amps: 0.55},
		},
		ViaClearanceMM:    0.30,
		ViaAnnularRatio:   2.0,
		AnnularRingRatio:  1.8,
		DefaultViaDrillMM: 0.3,
		DefaultPadDrillMM: 1.0,

		BendKFactor:          6.0,
		SubstrateThicknessMM: 0.11,
		MinBendRadiusMM:      1.0,

		LengthSafetyFactor: 0.95,
		WedgeSlitWidthMM:   1.5,
		MinWedgeSlits:      3,

		FlapMarginMM:       1.0,
		FlapNeckWidthMM:    2.0,
		MinFlapNeckWidthMM: 2.5,
		LapPadHeightMM:     1.5,
		PadEdgeGapMM:       0.5,
		TabWidthBaseMM:     2.5,
		TabWidthTipMM:      2.0,
		TabHeightMM:        3.0,
		TabSlotClearanceMM: 0.1,
		TabSlotCount:       4,

		ViaFarmInsetMM: 0.8,

		StiffenerOverlapMM:  0.75,
		CoverlayClearanceMM: 0.20,

		SilkLineWidthMM:     0.15,
		SilkTextHeightMM:    1.0,
		SilkTextThicknessMM: 0.15,

		FoldDashMM:    1.0,
		FoldDashGapMM: 0.5,
	}
}

// CopperSpec returns the table row for a copper class.
func (c Constraints) CopperSpec(class CopperClass) (CopperSpec, error) {
	spec, ok := c.Copper[class]
	if !ok {
		return CopperSpec{}, fmt.Errorf("fab: unknown copper class %q", class)
	}
	return spec, nil
}

// ViaOption returns the via option for a drill size. The drill must match a
// table entry exactly; the process only offers the drills it lists.
func (c Constraints) ViaOption(drillMM float64) (ViaOption, error) {
	for _, opt := range c.ViaOptions {
		if opt.DrillMM == drillMM {
			return opt, nil
		}
	}
	return ViaOption{}, fmt.Errorf("fab: no via option with drill %.2fmm", drillMM)
}

// CopperClasses lists the available classes in a stable order.
func (c Constraints) CopperClasses() []CopperClass {
	classes := make([]CopperClass, 0, len(c.Copper))
	for class := range c.Copper {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool {
		return c.Copper[classes[i]].ThicknessMM < c.Copper[classes[j]].ThicknessMM
	})
	return classes
}

// Validate rejects tables with non-positive or contradictory limits.
func (c Constraints) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"min-trace-width", c.MinTraceWidthMM},
		{"min-gap", c.MinGapMM},
		{"min-annular-ring", c.MinAnnularRingMM},
		{"via-clearance", c.ViaClearanceMM},
		{"via-annular-ratio", c.ViaAnnularRatio},
		{"annular-ring-ratio", c.AnnularRingRatio},
		{"default-via-drill", c.DefaultViaDrillMM},
		{"default-pad-drill", c.DefaultPadDrillMM},
		{"bend-k-factor", c.BendKFactor},
		{"substrate-thickness", c.SubstrateThicknessMM},
		{"min-bend-radius", c.MinBendRadiusMM},
		{"wedge-slit-width", c.WedgeSlitWidthMM},
		{"flap-margin", c.FlapMarginMM},
		{"flap-neck-width", c.FlapNeckWidthMM},
		{"lap-pad-height", c.LapPadHeightMM},
		{"pad-edge-gap", c.PadEdgeGapMM},
		{"tab-width-base", c.TabWidthBaseMM},
		{"tab-height", c.TabHeightMM},
		{"via-farm-inset", c.ViaFarmInsetMM},
		{"stiffener-overlap", c.StiffenerOverlapMM},
		{"silk-line-width", c.SilkLineWidthMM},
		{"fold-dash", c.FoldDashMM},
		{"fold-dash-gap", c.FoldDashGapMM},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("fab: %s must be positive, got %g", p.name, p.value)
		}
	}
	if c.LengthSafetyFactor <= 0 || c.LengthSafetyFactor > 1 {
		return fmt.Errorf("fab: length-safety-factor must be in (0,1], got %g", c.LengthSafetyFactor)
	}
	if c.MinWedgeSlits < 1 {
		return fmt.Errorf("fab: min-wedge-slits must be at least 1, got %d", c.MinWedgeSlits)
	}
	if c.TabSlotCount < 0 {
		return fmt.Errorf("fab: tab-slot-count must not be negative, got %d", c.TabSlotCount)
	}
	if len(c.Copper) == 0 {
		return fmt.Errorf("fab: copper class table is empty")
	}
	for class, spec := range c.Copper {
		if spec.ThicknessMM <= 0 || spec.WidthPerAmpMM <= 0 {
			return fmt.Errorf("fab: copper class %q has non-positive entries", class)
		}
	}
	if len(c.ViaOptions) == 0 {
		return fmt.Errorf("fab: via option table is empty")
	}
	for _, opt := range c.ViaOptions {
		if opt.DrillMM <= 0 || opt.PadMM <= 0 || opt.Amps <= 0 {
			return fmt.Errorf("fab: via option with drill %g has non-positive entries", opt.DrillMM)
		}
		if opt.PadMM < opt.DrillMM+2*c.MinAnnularRingMM {
			return fmt.Errorf("fab: via option with drill %g violates the annular ring minimum", opt.DrillMM)
		}
	}
	if _, err := c.ViaOption(c.DefaultViaDrillMM); err != nil {
		return fmt.Errorf("fab: default via drill is not in the option table: %w", err)
	}
	if c.TabWidthTipMM > c.TabWidthBaseMM {
		return fmt.Errorf("fab: tab tip width %g exceeds base width %g", c.TabWidthTipMM, c.TabWidthBaseMM)
	}
	return nil
}
