package cmd

import (
	"github.com/huangsam/prodscore/core"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check [table-path]",
	Short: "Fail when any row scores below a minimum (for CI/CD pipelines)",
	Long: `Score a product table and enforce a minimum score on every row.

The command exits with a non-zero code when at least one row scores below
--min-score. Rows whose score cannot be computed count as failures.

Use cases:
- Catalog gates - block a listing update that adds weak products
- Pricing reviews - flag rows that fall below the target after a change

Examples:
  # Require every product to score at least 40
  prodscore check products.csv --min-score 40

  # Machine-readable result for a pipeline step
  prodscore check products.csv --min-score 60 --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteCheck(rootCtx, cfg, cacheManager)
	},
}
