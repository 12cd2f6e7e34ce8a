package cmd

import (
	"github.com/safepath/safepath/core"
	"github.com/safepath/safepath/internal/contract"
	"github.com/spf13/cobra"
)

// routeCmd finds the safest path between two segments.
var routeCmd = &cobra.Command{
	Use:   "route <start-id> <end-id>",
	Short: "Find the safest path between two route segments.",
	Long: `Score every segment of the input, link consecutive rows into a route graph and
find the path between two segments with the lowest total edge weight.

Each edge costs alpha * distance + beta / min(score_a, score_b), so a higher beta
steers the route away from unsafe segments at the price of a longer walk.

The report lists the segments along the path, the lowest safety score on it, the
geodesic length and the travel time at --average-speed. When a provider is configured,
its route summary is shown for information only; it never changes the path.

Examples:
  # Safest path from segment 1 to segment 42
  safepath route 1 42 --input segments.csv

  # Weight safety more heavily than distance
  safepath route 1 42 --alpha 0.2 --beta 0.8

  # Compare against the mock provider and publish to MQTT
  safepath route 1 42 --provider mock --mqtt-broker tcp://localhost:1883

  # Save the report as JSON
  safepath route 1 42 --output json --output-file route.json`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		pair, err := parseRoutePair(args)
		if err != nil {
			contract.LogFatal("Invalid route endpoints", err)
		}
		if err := core.ExecuteRoute(rootCtx, cfg, storeManager, pair); err != nil {
			contract.LogFatal("Cannot compute route", err)
		}
	},
}
