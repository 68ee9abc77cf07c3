package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coilworks/fpcwind/pkg/kicad"
	"github.com/coilworks/fpcwind/pkg/layout"
	"github.com/coilworks/fpcwind/pkg/preview"
	"github.com/coilworks/fpcwind/pkg/winding"
)

var (
	generateFlags   solveFlags
	generateOutput  string
	generatePreview string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a KiCad board file for a toroid winding",
	Long: `Solves the winding configuration for the requested core, turn count,
and current, then writes the complete flat-pattern board as a .kicad_pcb file.

Example:
  fpcwind generate -c T68 -t 20 -a 0.5 -o coil.kicad_pcb --taps 5,10`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateFlags.register(generateCmd)
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "output board file")
	generateCmd.Flags().StringVar(&generatePreview, "preview", "", "also render a flat-pattern image (png/svg/pdf)")
	generateCmd.MarkFlagRequired("output")
}

func runGenerate(c *cobra.Command, args []string) error {
	cons, err := loadConstraints()
	if err != nil {
		return err
	}
	db, err := loadDatabase()
	if err != nil {
		return err
	}
	req, err := generateFlags.request()
	if err != nil {
		return err
	}

	geo, plan, err := layout.Generate(db, generateFlags.core, req, cons)
	if err != nil {
		return reportError(c, db, err)
	}

	printBanner(c, plan)

	out := generateOutput
	if !strings.HasSuffix(out, ".kicad_pcb") {
		out += ".kicad_pcb"
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := kicad.Write(f, geo); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	c.Printf("Wrote %s\n", out)

	if generatePreview != "" {
		if err := preview.Export(geo, generatePreview); err != nil {
			return err
		}
		c.Printf("Wrote %s\n", generatePreview)
	}
	return nil
}

func printBanner(c *cobra.Command, plan *winding.Plan) {
	c.Printf("\n%s\n", strings.Repeat("=", 50))
	c.Println("DESIGN CONFIGURATION")
	c.Printf("%s\n", strings.Repeat("=", 50))
	for _, line := range strings.Split(plan.Describe(), "\n") {
		c.Printf("  %s\n", line)
	}
	if verbose {
		c.Printf("  Pitch at OD: %.3fmm\n", plan.PitchODMM)
		c.Printf("  Lap pad: %.2f x %.2fmm, joint footprint %.2f x %.2fmm\n",
			plan.LapPadWidthMM, plan.LapPadHeightMM, plan.JointPadWidthMM, plan.JointPadHeightMM)
		c.Printf("  Edge margin: %.2fmm, copper %.3fmm thick\n", plan.MarginMM, plan.CopperThicknessMM)
	}
	c.Printf("%s\n\n", strings.Repeat("=", 50))
}
