package cmd

import (
	"github.com/huangsam/prodscore/core"
	"github.com/spf13/cobra"
)

// scoreCmd scores every row of a product table.
var scoreCmd = &cobra.Command{
	Use:   "score [table-path]",
	Short: "Score every row of a product CSV table",
	Long: `Compute a weighted composite score for every row of a product table.

The table is a CSV file with a header row. Columns named after a factor
(Cost, Margin, CAC, Return Rate, Stock Status) are matched by exact header
name against the scoring bands of that factor. The weighted sum of the
matched band scores becomes the row's Score column.

Rows keep their input order unless --sort is given. CSV and Parquet output
always keep input order so the scored table lines up with the source.

Examples:
  # Score a table with weights and bands from .prodscore.yaml
  prodscore score products.csv

  # Override two weights and rank the rows
  prodscore score products.csv --weights "cost:0.4,margin:0.1" --sort

  # Replace the Margin bands and explain each row
  prodscore score products.csv --band "margin:0:20:10" --band "margin:20:100:90" --explain

  # Write the scored table next to the input
  prodscore score products.csv --output csv --output-file scored.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteScore(rootCtx, cfg, cacheManager)
	},
}
