package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/internal/iocache"
	"github.com/huangsam/prodscore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errHistoryDisabled is returned by migrate when no history backend is configured.
var errHistoryDisabled = errors.New("history tracking is disabled. Set --history-backend to sqlite, mysql, or postgresql")

// loadHistoryBackend reads and checks the history backend settings.
func loadHistoryBackend() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := contract.ParseHistoryBackend(viper.GetString("history-backend"))
	connStr := viper.GetString("history-db-connect")
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
func historySetup() error {
	backend, connStr, err := loadHistoryBackend()
	if err != nil {
		return err
	}

	storeBackend := backend
	if storeBackend == schema.NoneBackend {
		storeBackend = ""
	}

	// No score caching for history commands
	if err := iocache.InitStores("", "", storeBackend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads the history settings without opening the store,
// so migrations can run against a fresh database.
func historyMigrateSetup() error {
	backend, connStr, err := loadHistoryBackend()
	if err != nil {
		return err
	}
	if backend == schema.NoneBackend {
		return errHistoryDisabled
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr

	return nil
}

// historyMigrateSetupWrapper wraps historyMigrateSetup to provide PreRunE for migrate command.
func historyMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return historyMigrateSetup()
}

// historyDBFilePath is the SQLite file the run history lives in.
func historyDBFilePath() string {
	if cfg.HistoryDBConnect != "" {
		return cfg.HistoryDBConnect
	}
	return contract.GetHistoryDBFilePath()
}

// historyCmd focused on run history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the history of scoring runs and exports",
	Long: `Manage the record of past scoring runs.

When a history backend is set, every score and check run stores:
- Run metadata (timestamps, source table, weights and bands)
- The score and factor values of every row

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show history statistics
  export  - Export runs and row scores to Parquet
  clear   - Remove all history data
  migrate - Run database schema migrations

Examples:
  # Record runs in the default SQLite file
  prodscore score products.csv --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  prodscore history export --history-backend sqlite --output-file history`,
}

// historyClearCmd clears the run history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored runs and row scores",
	Long: `Delete all stored scoring runs and their row scores.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  prodscore history export --history-backend sqlite --output-file backup
  prodscore history clear --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		iocache.CloseStores()
		if err := iocache.ClearHistory(cfg.HistoryBackend, historyDBFilePath(), cfg.HistoryDBConnect); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Println("History cleared successfully.")
		return nil
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show the backend, number of runs, newest and oldest run, rows scored,
and table sizes of the run history.

Examples:
  prodscore history status --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			iocache.PrintHistoryStatus(os.Stdout, schema.HistoryStatus{Backend: string(schema.NoneBackend)})
			return nil
		}
		status, err := store.GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get history status: %w", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
		return nil
	},
}

// historyExportCmd exports run history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs and row scores to Parquet.

Two files are written next to the --output-file prefix:
- <prefix>.runs.parquet - one row per scoring run
- <prefix>.row_scores.parquet - one row per scored product row

Requires: --output-file parameter

Examples:
  prodscore history export --history-backend sqlite --output-file history
  duckdb -c "SELECT * FROM read_parquet('history.row_scores.parquet') LIMIT 10"`,
	PreRunE: historySetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := iocache.ExecuteHistoryExport(cfg.OutputFile); err != nil {
			return fmt.Errorf("failed to export history: %w", err)
		}
		return nil
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  prodscore history migrate --history-backend sqlite

  # Rollback everything
  prodscore history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		msg, err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, viper.GetInt("target-version"))
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println(msg)
		return nil
	},
}
