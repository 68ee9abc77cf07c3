package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coilworks/fpcwind/pkg/kicad"
)

var checkCmd = &cobra.Command{
	Use:   "check <board_file>",
	Short: "Re-verify the clearances of an emitted board file",
	Long: `Parses a .kicad_pcb file and re-checks the fabrication rules the
generator promised: minimum trace width, bore-run gaps, and via drills.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(c *cobra.Command, args []string) error {
	cons, err := loadConstraints()
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	rep, err := kicad.Verify(f, cons)
	if err != nil {
		return err
	}
	c.Printf("%s: %d segments, %d vias, %d pads\n", args[0], rep.Segments, rep.Vias, rep.Pads)
	if rep.Segments > 0 {
		c.Printf("  min trace width: %.4fmm\n", rep.MinWidthMM)
	}
	if len(rep.Violations) > 0 {
		for _, v := range rep.Violations {
			c.Printf("  VIOLATION: %s\n", v)
		}
		return fmt.Errorf("%d clearance violation(s)", len(rep.Violations))
	}
	c.Println("  clean")
	return nil
}
