package fab

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadProfile reads a fabrication profile file (YAML, TOML, or JSON by
// extension) and merges it over the default table. Only scalar process limits
// may be overridden; the copper-class and via-option tables are part of the
// house process and stay fixed. Unknown keys are rejected so a typo cannot
// silently leave a limit at its default.
func LoadProfile(path string) (Constraints, error) {
	c := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("FPCWIND")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return Constraints{}, fmt.Errorf("fab: reading profile %s: %w", path, err)
	}

	fields := map[string]*float64{
		"min-trace-width":      &c.MinTraceWidthMM,
		"min-gap":              &c.MinGapMM,
		"min-annular-ring":     &c.MinAnnularRingMM,
		"via-clearance":        &c.ViaClearanceMM,
		"via-annular-ratio":    &c.ViaAnnularRatio,
		"annular-ring-ratio":   &c.AnnularRingRatio,
		"default-via-drill":    &c.DefaultViaDrillMM,
		"default-pad-drill":    &c.DefaultPadDrillMM,
		"bend-k-factor":        &c.BendKFactor,
		"substrate-thickness":  &c.SubstrateThicknessMM,
		"min-bend-radius":      &c.MinBendRadiusMM,
		"length-safety-factor": &c.LengthSafetyFactor,
		"wedge-slit-width":     &c.WedgeSlitWidthMM,
		"flap-margin":          &c.FlapMarginMM,
		"flap-neck-width":      &c.FlapNeckWidthMM,
		"min-flap-neck-width":  &c.MinFlapNeckWidthMM,
		"lap-pad-height":       &c.LapPadHeightMM,
		"pad-edge-gap":         &c.PadEdgeGapMM,
		"tab-width-base":       &c.TabWidthBaseMM,
		"tab-width-tip":        &c.TabWidthTipMM,
		"tab-height":           &c.TabHeightMM,
		"tab-slot-clearance":   &c.TabSlotClearanceMM,
		"via-farm-inset":       &c.ViaFarmInsetMM,
		"stiffener-overlap":    &c.StiffenerOverlapMM,
		"coverlay-clearance":   &c.CoverlayClearanceMM,
		"silk-line-width":      &c.SilkLineWidthMM,
		"silk-text-height":     &c.SilkTextHeightMM,
		"silk-text-thickness":  &c.SilkTextThicknessMM,
		"fold-dash":            &c.FoldDashMM,
		"fold-dash-gap":        &c.FoldDashGapMM,
	}
	intFields := map[string]*int{
		"min-wedge-slits": &c.MinWedgeSlits,
		"tab-slot-count":  &c.TabSlotCount,
	}

	for _, key := range v.AllKeys() {
		if target, ok := fields[key]; ok {
			*target = v.GetFloat64(key)
			continue
		}
		if target, ok := intFields[key]; ok {
			*target = v.GetInt(key)
			continue
		}
		return Constraints{}, fmt.Errorf("fab: profile %s: unknown key %q", path, key)
	}

	if err := c.Validate(); err != nil {
		return Constraints{}, fmt.Errorf("fab: profile %s: %w", path, err)
	}
	return c, nil
}
