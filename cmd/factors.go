package cmd

import (
	"github.com/huangsam/prodscore/core"
	"github.com/spf13/cobra"
)

// factorsCmd prints the effective weights and bands.
var factorsCmd = &cobra.Command{
	Use:   "factors",
	Short: "Show the effective weight and bands of every factor",
	Long: `Print every factor with its weight and scoring bands after the config
file, environment variables and flag overrides are merged.

Examples:
  # Show the factors as a table
  prodscore factors

  # Dump them as JSON for another tool
  prodscore factors --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteFactors(rootCtx, cfg)
	},
}
