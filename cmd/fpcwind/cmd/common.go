package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coilworks/fpcwind/pkg/fab"
	"github.com/coilworks/fpcwind/pkg/toroid"
	"github.com/coilworks/fpcwind/pkg/winding"
)

// solveFlags are the request flags shared by generate and solve.
type solveFlags struct {
	core      string
	turns     int
	amps      float64
	angle     float64
	maxLayers int
	copper    string
	taps      string
	viaDrill  float64
	padDrill  float64
}

func (f *solveFlags) register(c *cobra.Command) {
	c.Flags().StringVarP(&f.core, "core", "c", "", "core identifier (T68, T-68, FT68...)")
	c.Flags().IntVarP(&f.turns, "turns", "t", 0, "number of turns")
	c.Flags().Float64VarP(&f.amps, "amps", "a", 0.5, "target current in amps")
	c.Flags().Float64Var(&f.angle, "angle", 360, "angular coverage in degrees")
	c.Flags().IntVarP(&f.maxLayers, "max-layers", "l", 6, "maximum copper layer count")
	c.Flags().StringVar(&f.copper, "copper", "1oz", "copper class (0.5oz, 1oz, 2oz)")
	c.Flags().StringVar(&f.taps, "taps", "", "comma-separated interior tap turns")
	c.Flags().Float64Var(&f.viaDrill, "via-drill", 0, "via drill override in mm")
	c.Flags().Float64Var(&f.padDrill, "pad-drill", 0, "flap pad drill override in mm")
	c.MarkFlagRequired("core")
	c.MarkFlagRequired("turns")
}

func (f *solveFlags) request() (toroid.Request, error) {
	var taps []int
	if f.taps != "" {
		for _, field := range strings.Split(f.taps, ",") {
			tap, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return toroid.Request{}, fmt.Errorf("--taps must be comma-separated integers: %w", err)
			}
			taps = append(taps, tap)
		}
	}
	return toroid.Request{
		Turns:       f.turns,
		CurrentAmps: f.amps,
		CoverageDeg: f.angle,
		MaxLayers:   f.maxLayers,
		Copper:      fab.CopperClass(f.copper),
		Taps:        taps,
		ViaDrillMM:  f.viaDrill,
		PadDrillMM:  f.padDrill,
	}, nil
}

// loadConstraints applies the --profile flag over the house defaults.
func loadConstraints() (fab.Constraints, error) {
	if profile == "" {
		return fab.Default(), nil
	}
	return fab.LoadProfile(profile)
}

// loadDatabase applies the --catalog flag over the built-in core database.
func loadDatabase() (*toroid.Database, error) {
	db := toroid.NewDatabase()
	if catalog != "" {
		if err := db.LoadCatalogFile(catalog); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// reportError renders rejections the way the terminal user needs them: the
// remediation block for infeasible designs, the core table for unknown cores.
func reportError(c *cobra.Command, db *toroid.Database, err error) error {
	var infeasible *winding.InfeasibleError
	if errors.As(err, &infeasible) {
		c.Printf("\n%s\n", strings.Repeat("!", 50))
		c.Println("DESIGN REJECTED: no feasible configuration")
		c.Printf("%s\n", strings.Repeat("!", 50))
		c.Printf("  Core: %s, turns: %d, current: %gA, layer budget: %d\n",
			infeasible.CoreName, infeasible.Turns, infeasible.CurrentAmps, infeasible.MaxLayers)
		if infeasible.MaxTurns > 0 {
			c.Printf("  Max turns on this core: %d\n", infeasible.MaxTurns)
		}
		if infeasible.MinCoreIDMM > 0 {
			c.Printf("  Min core ID for %d turns: %.2fmm\n", infeasible.Turns, infeasible.MinCoreIDMM)
		}
		if len(infeasible.AchievableTurns) > 0 {
			c.Printf("  Achievable turn counts nearby: %v\n", infeasible.AchievableTurns)
		}
		c.Printf("%s\n", strings.Repeat("!", 50))
		return err
	}

	if errors.Is(err, toroid.ErrUnknownCore) && db != nil {
		c.Printf("%v\n\nAvailable cores:\n", err)
		c.Printf("  %-8s %-10s %-10s %-10s\n", "Name", "OD (mm)", "ID (mm)", "Height (mm)")
		for _, core := range db.List() {
			c.Printf("  %-8s %-10.2f %-10.2f %-10.2f\n", core.Name, core.ODMM, core.IDMM, core.HeightMM)
		}
		c.Println("\nAccepted formats: T68, T-68, FT68, FT-68 (case insensitive)")
	}
	return err
}
