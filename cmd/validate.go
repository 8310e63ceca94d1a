package cmd

import (
	"github.com/huangsam/prodscore/core"
	"github.com/spf13/cobra"
)

// validateCmd checks weights and bands without reading a table.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that weights sum to 1 and that every band bound is numeric",
	Long: `Validate the configured weights and scoring bands.

The report lists the weight sum, the tolerance, and every band bound that
could not be parsed as a number. The command exits with an error when
the configuration is invalid, so it can guard CI pipelines.

Examples:
  # Validate the config file in the current directory
  prodscore validate

  # Try a weight override before committing it
  prodscore validate --weights "cost:0.25,margin:0.25,cac:0.2,return rate:0.2,stock status:0.1"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteValidate(rootCtx, cfg)
	},
}
