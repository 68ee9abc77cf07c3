package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coilworks/fpcwind/internal/version"
)

var (
	// Global flags
	verbose bool
	profile string
	catalog string
)

var rootCmd = &cobra.Command{
	Use:   "fpcwind",
	Short: "fpcwind - flexible-circuit toroid winding generator",
	Long: `fpcwind computes a manufacturable flex-circuit winding layout for a
toroidal inductor and emits it as a KiCad board file.

Examples:
  fpcwind generate -c T68 -t 20 -a 0.5 -o coil.kicad_pcb
  fpcwind solve -c T68 -t 54 -a 0.5        # report the configuration only
  fpcwind cores                            # list known cores
  fpcwind check coil.kicad_pcb             # re-verify an emitted board`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "fabrication profile file overriding the house process")
	rootCmd.PersistentFlags().StringVar(&catalog, "catalog", "", "core catalog file extending the built-in database")
}
