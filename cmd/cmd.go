// Package cmd defines the command-line interface for safepath.
package cmd

import (
	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the export subcommands to the parent export command
	exportCmd.AddCommand(exportGeoJSONCmd)
	exportCmd.AddCommand(exportParquetCmd)
	exportCmd.AddCommand(exportMapCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	configCmd.AddCommand(configDumpCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("input", "i", "", "Path to the segments CSV file")
	rootCmd.PersistentFlags().Int64("min-id", contract.DefaultMinID, "Lowest route id to load")
	rootCmd.PersistentFlags().Int64("max-id", contract.DefaultMaxID, "Highest route id to load (0 = no upper bound)")
	rootCmd.PersistentFlags().String("ignore-columns", "", "Comma-separated list of CSV columns to skip")
	rootCmd.PersistentFlags().StringSlice("features", nil, "Features to score, in order (default all)")
	rootCmd.PersistentFlags().Float64("alpha", schema.DefaultAlpha, "Weight of planar distance in edge cost")
	rootCmd.PersistentFlags().Float64("beta", schema.DefaultBeta, "Weight of inverse safety in edge cost")
	rootCmd.PersistentFlags().Float64("average-speed", schema.DefaultAverageSpeed, "Travel speed in km/h for the time estimate")
	rootCmd.PersistentFlags().Bool("detail", false, "Print per-segment coordinates and feature values")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("provider", string(schema.NoProvider), "Route provider: none or mock or http")
	rootCmd.PersistentFlags().String("provider-url", "", "Base URL of the http route provider")
	rootCmd.PersistentFlags().String("provider-key", "", "API key of the http route provider (prefer SAFEPATH_PROVIDER_KEY)")
	rootCmd.PersistentFlags().String("provider-latency", "", "Simulated latency of the mock provider (e.g., 1.5s)")
	rootCmd.PersistentFlags().String("provider-timeout", "", "Timeout of provider requests (e.g., 10s)")
	rootCmd.PersistentFlags().Int64("provider-seed", 0, "Seed of the mock provider (0 = random)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("mqtt-broker", "", "MQTT broker URL to publish routes to (e.g., tcp://localhost:1883)")
	rootCmd.PersistentFlags().String("mqtt-prefix", contract.DefaultMQTTPrefix, "Topic prefix for published routes")
	rootCmd.PersistentFlags().String("mqtt-client-id", contract.DefaultMQTTClientID, "MQTT client id")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of scoresCmd to Viper
	scoresCmd.Flags().Bool("explain", false, "Print per-segment feature contribution breakdown")
	if err := viper.BindPFlags(scoresCmd.Flags()); err != nil {
		contract.LogFatal("Error binding scores flags", err)
	}

	// Bind all flags of exportMapCmd to Viper
	exportMapCmd.Flags().String("format", string(schema.SVGMap), "Map format: svg or png")
	exportMapCmd.Flags().Int("map-width", contract.DefaultMapWidth, "Map width in pixels")
	exportMapCmd.Flags().Int("map-height", contract.DefaultMapHeight, "Map height in pixels")
	if err := viper.BindPFlags(exportMapCmd.Flags()); err != nil {
		contract.LogFatal("Error binding map flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultServeAddr, "Address to listen on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of the history subcommands to Viper
	historyListCmd.Flags().Int("runs", contract.DefaultHistoryListLimit, "Number of runs to list (0 = all)")
	if err := viper.BindPFlags(historyListCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history list flags", err)
	}
	historyExportCmd.Flags().String("run-id", "", "Export a single run")
	if err := viper.BindPFlags(historyExportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history export flags", err)
	}
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
