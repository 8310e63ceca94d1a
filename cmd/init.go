package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/prodscore/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// writeTemplateConfig writes the starter config to path unless it already exists.
func writeTemplateConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	data, err := contract.RenderTemplateConfig()
	if err != nil {
		return fmt.Errorf("failed to render config template: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// initCmd writes a starter config file.
var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter .prodscore.yaml with default weights and empty bands",
	Long: `Create a config file with every factor listed, equal weights that sum
to 1, and blank band rows to fill in.

Blank band rows are ignored when scoring, so the file is valid as soon as
at least the bands you care about are filled in.

Examples:
  # Create .prodscore.yaml in the current directory
  prodscore init

  # Replace an existing file
  prodscore init configs/catalog.yaml --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		path := contract.TemplateConfigName
		if len(args) == 1 {
			path = args[0]
		}
		if err := writeTemplateConfig(path, viper.GetBool("force")); err != nil {
			return err
		}
		fmt.Printf("Wrote config template to %s\n", path)
		return nil
	},
}
