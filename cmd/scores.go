package cmd

import (
	"github.com/safepath/safepath/core"
	"github.com/safepath/safepath/internal/contract"
	"github.com/spf13/cobra"
)

// scoresCmd ranks segments by safety score.
var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the route segments ranked by safety score.",
	Long: `Normalize every feature column, combine them with the configured weights and
rank the segments from safest to least safe.

Each feature is min-max normalized over the whole input, so scores are relative to
the dataset. Weights come from the config file and must sum to 1.

Examples:
  # Top 10 safest segments
  safepath scores --input segments.csv --limit 10

  # Show the weighted contribution of each feature
  safepath scores --explain

  # Only score a subset of features (weights are rescaled)
  safepath scores --features crime_density,lighting_density

  # Export the ranking to CSV
  safepath scores --output csv --output-file scores.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteScores(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot score segments", err)
		}
	},
}
