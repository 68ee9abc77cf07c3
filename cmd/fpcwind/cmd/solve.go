package cmd

import (
	"github.com/spf13/cobra"

	"github.com/coilworks/fpcwind/pkg/winding"
)

var solveCmdFlags solveFlags

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve and report a winding configuration without emitting a board",
	Long: `Runs the configuration solver for the requested core, turn count, and
current, and prints the resulting layer grouping and trace geometry. Useful
for exploring what fits before generating a board.`,
	RunE: runSolve,
}

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmdFlags.register(solveCmd)
}

func runSolve(c *cobra.Command, args []string) error {
	cons, err := loadConstraints()
	if err != nil {
		return err
	}
	db, err := loadDatabase()
	if err != nil {
		return err
	}
	req, err := solveCmdFlags.request()
	if err != nil {
		return err
	}

	core, err := db.Lookup(solveCmdFlags.core)
	if err != nil {
		return reportError(c, db, err)
	}
	plan, err := winding.Solve(core, req, cons)
	if err != nil {
		return reportError(c, db, err)
	}
	printBanner(c, plan)
	return nil
}
