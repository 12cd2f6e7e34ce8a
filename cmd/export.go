package cmd

import (
	"fmt"
	"strings"

	"github.com/safepath/safepath/core"
	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/internal/outwriter"
	"github.com/safepath/safepath/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exportCmd groups the file exports of scored segments and routes.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export scored segments and routes as GeoJSON, Parquet or a map",
	Long: `Export scored segments for use in GIS tools, analytics or reports.

Subcommands:
  geojson - Segments as Point features, plus the route as a LineString
  parquet - Every scored segment, safest first, as a Parquet file
  map     - SVG or PNG drawing of the safest route and unsafe segments nearby`,
}

// exportGeoJSONCmd writes segments and an optional route as GeoJSON.
var exportGeoJSONCmd = &cobra.Command{
	Use:   "geojson [start-id end-id]",
	Short: "Write scored segments and an optional route as GeoJSON",
	Long: `Write every scored segment as a GeoJSON Point feature carrying its raw and
normalized features, its safety score and label. With a start and end id, the
safest route is added as a LineString and route segments are flagged.

Examples:
  # All segments to stdout
  safepath export geojson

  # Segments and the route from 1 to 42
  safepath export geojson 1 42 --output-file route.geojson`,
	Args: func(_ *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or a start and end id, received %d", len(args))
		}
		return nil
	},
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		var pair *core.RoutePair
		if len(args) == 2 {
			p, err := parseRoutePair(args)
			if err != nil {
				contract.LogFatal("Invalid route endpoints", err)
			}
			pair = &p
		}
		if err := core.ExecuteExportGeoJSON(rootCtx, cfg, storeManager, pair); err != nil {
			contract.LogFatal("Failed to export GeoJSON", err)
		}
	},
}

// exportParquetCmd writes every scored segment to Parquet.
var exportParquetCmd = &cobra.Command{
	Use:   "parquet",
	Short: "Write every scored segment to a Parquet file",
	Long: `Write every scored segment, ranked safest first, to a Parquet file for DuckDB,
pandas or BI tools. Requires --output-file.

Examples:
  safepath export parquet --output-file scores.parquet
  duckdb -c "SELECT route_id, safety_score FROM read_parquet('scores.parquet') LIMIT 10"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteExportParquet(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Failed to export Parquet", err)
		}
	},
}

// exportMapCmd renders the safest route to SVG or PNG.
var exportMapCmd = &cobra.Command{
	Use:   "map <start-id> <end-id>",
	Short: "Render the safest route and nearby unsafe segments to SVG or PNG",
	Long: `Draw the safest route between two segments as a blue polyline with markers,
plus red markers for off-route segments whose score is below the lowest score on
the route. An info marker sits at the middle of the route.

PNG output requires --output-file; SVG is written to stdout when no file is given.

Examples:
  safepath export map 1 42 --output-file route.svg
  safepath export map 1 42 --format png --map-width 1200 --map-height 900 --output-file route.png`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		pair, err := parseRoutePair(args)
		if err != nil {
			contract.LogFatal("Invalid route endpoints", err)
		}
		opts := outwriter.MapOptions{
			Format: schema.MapFormat(strings.ToLower(viper.GetString("format"))),
			Width:  viper.GetInt("map-width"),
			Height: viper.GetInt("map-height"),
		}
		if err := core.ExecuteRenderMap(rootCtx, cfg, storeManager, pair, opts); err != nil {
			contract.LogFatal("Failed to render map", err)
		}
	},
}
