package cmd

import (
	"github.com/spf13/cobra"

	"github.com/coilworks/fpcwind/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fpcwind version",
	Run: func(c *cobra.Command, args []string) {
		c.Printf("fpcwind %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
