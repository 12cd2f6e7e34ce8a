package cmd

import (
	"fmt"
	"os"

	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/internal/iocache"
	"github.com/safepath/safepath/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackendFromConfig reads and validates the history backend settings.
func historyBackendFromConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("history-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup(_ *cobra.Command, _ []string) error {
	if err := historyBackendFromConfig(); err != nil {
		return err
	}
	// No route caching for history commands
	if err := iocache.InitStores("", "", cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}
	return nil
}

// historyMigrateSetup does NOT open the store or create tables,
// allowing migrations to run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	return historyBackendFromConfig()
}

// sqliteFile returns the SQLite file of a store, falling back to its default path.
func sqliteFile(connStr, fallback string) string {
	if connStr != "" {
		return connStr
	}
	return fallback
}

// historyCmd focused on run history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup used by routing commands. This avoids reading the input
// and validating the scoring model for simple store operations.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the run history of routes and scores",
	Long: `Manage historical run data used for auditing and reporting.

When enabled with --history-backend, SafePath records every route and scores run:
- Run metadata (timestamp, configuration, duration)
- The safety score of every segment
- Computed paths with their cost and lowest safety score

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show history statistics
  list    - List the most recent runs
  export  - Export data to Parquet for analytics
  clear   - Remove all history data
  migrate - Run database schema migrations

Examples:
  # Check history status
  safepath history status --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  safepath history export --history-backend sqlite --output-file history`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display run history statistics and connection details",
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			iocache.PrintHistoryStatus(os.Stdout, schema.HistoryStatus{Backend: string(schema.NoneBackend)})
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyListCmd lists recent runs.
var historyListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the most recent runs, newest first",
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if store == nil {
			contract.LogFatal("Failed to list runs", fmt.Errorf("history store is not configured"))
		}
		runs, err := store.ListRuns(viper.GetInt("runs"))
		if err != nil {
			contract.LogFatal("Failed to list runs", err)
		}
		iocache.PrintRuns(os.Stdout, runs)
	},
}

// historyClearCmd clears the history data.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all run history data",
	Long: `Delete all stored runs, segment scores and paths.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the history tables

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  safepath history export --output-file backup
  safepath history clear`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		dbFile := sqliteFile(cfg.HistoryDBConnect, contract.GetHistoryDBFilePath())
		if err := iocache.ClearHistory(cfg.HistoryBackend, dbFile, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyExportCmd exports history data to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export stored run history to Parquet format for use with analytics tools.

Writes three datasets next to --output-file:
- <output-file>.runs.parquet            run metadata
- <output-file>.segment_scores.parquet  per-segment scores of each run
- <output-file>.paths.parquet           computed paths of each run

Use --run-id to export a single run.

Examples:
  safepath history export --output-file history
  duckdb -c "SELECT * FROM read_parquet('history.runs.parquet') LIMIT 10"`,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetHistoryStore()
		if err := iocache.ExportHistory(os.Stdout, store, cfg.OutputFile, viper.GetString("run-id")); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
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
  safepath history migrate --history-backend postgresql --history-db-connect "host=... dbname=..."

  # Rollback to initial state
  safepath history migrate --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println("Migrations applied successfully.")
	},
}
