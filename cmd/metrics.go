package cmd

import (
	"github.com/safepath/safepath/core"
	"github.com/safepath/safepath/internal/contract"
	"github.com/spf13/cobra"
)

// metricsCmd displays the formal definitions of the safety score and edge weight.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display the safety score and edge weight formulas",
	Long: `Show the formal definitions, formulas, and feature weights used for scoring and routing.

Provides complete transparency into how segments are scored, including:
- Each active feature, its direction and its weight
- The weighted sum that produces the safety score
- The edge weight formula with the configured alpha and beta
- Custom weights if configured via .safepath.yaml

No input is read - this is purely informational.

Examples:
  # Show default formulas
  safepath metrics

  # View with custom weights from config file
  safepath metrics --config .safepath.yaml`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
