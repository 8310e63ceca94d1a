// Package cmd defines the command-line interface for prodscore.
package cmd

import (
	"github.com/huangsam/prodscore/core/algo"
	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flags whose values land under a different viper key, because the plain
// key already holds the config file map.
var overrideKeys = map[string]string{
	"weights": "weights-override",
	"band":    "band-override",
}

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(factorsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("weights", "", "Factor weights that override the config file (format: 'cost:0.3,margin:0.2')")
	rootCmd.PersistentFlags().StringArray("band", nil, "Scoring band that replaces the config file bands of its factor (format: 'factor:min:max:score', repeatable)")
	rootCmd.PersistentFlags().Float64("weight-tolerance", algo.DefaultWeightTolerance, "Allowed distance of the weight sum from 1 (0 = exact)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of rows to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for displayed scores")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Diagnostics level: error or warn or info or debug")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	bindFlags(rootCmd.PersistentFlags(), "root")

	// Bind all flags of scoreCmd to Viper
	scoreCmd.Flags().Bool("sort", false, "Rank rows by score in the text and JSON output")
	scoreCmd.Flags().Bool("explain", false, "Print the top contributing factors of every row")
	bindFlags(scoreCmd.Flags(), "score")

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().Float64("min-score", 0, "Fail when any row scores below this value")
	bindFlags(checkCmd.Flags(), "check")

	// Bind all flags of initCmd to Viper
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	bindFlags(initCmd.Flags(), "init")

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	bindFlags(historyMigrateCmd.Flags(), "history migrate")
}

// bindFlags binds every flag of a set to Viper under its own name or its override key.
func bindFlags(flags *pflag.FlagSet, name string) {
	flags.VisitAll(func(f *pflag.Flag) {
		key := f.Name
		if alt, ok := overrideKeys[f.Name]; ok {
			key = alt
		}
		if err := viper.BindPFlag(key, f); err != nil {
			contract.LogFatal("Error binding "+name+" flags", err)
		}
	})
}
