package cmd

import (
	"github.com/spf13/cobra"
)

var coresCmd = &cobra.Command{
	Use:   "cores",
	Short: "List the known toroid cores",
	Long: `Prints the core database: the built-in range plus anything loaded from
a --catalog file.`,
	RunE: runCores,
}

func init() {
	rootCmd.AddCommand(coresCmd)
}

func runCores(c *cobra.Command, args []string) error {
	db, err := loadDatabase()
	if err != nil {
		return err
	}
	c.Printf("%-8s %-10s %-10s %-10s\n", "Name", "OD (mm)", "ID (mm)", "Height (mm)")
	for _, core := range db.List() {
		c.Printf("%-8s %-10.2f %-10.2f %-10.2f\n", core.Name, core.ODMM, core.IDMM, core.HeightMM)
	}
	return nil
}
