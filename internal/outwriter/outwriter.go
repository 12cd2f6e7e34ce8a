// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/internal/render"
	"github.com/safepath/safepath/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRoute prints a safest-route report using the configured output format.
func (ow *OutWriter) WriteRoute(report schema.RouteReport, cfg *contract.Config, duration time.Duration) error {
	return WriteRouteReport(report, cfg, duration)
}

// WriteScores prints ranked segment scores using the configured output format.
func (ow *OutWriter) WriteScores(report schema.ScoresReport, cfg *contract.Config, duration time.Duration) error {
	return WriteScoresReport(report, cfg, duration)
}

// WriteMetrics prints the scoring and edge weight definitions.
func (ow *OutWriter) WriteMetrics(cfg *contract.Config) error {
	return WriteMetricsDefinitions(cfg)
}

// WriteGeoJSON writes a GeoJSON feature collection.
func (ow *OutWriter) WriteGeoJSON(fc *geojson.FeatureCollection, cfg *contract.Config) error {
	return WriteGeoJSONCollection(fc, cfg.OutputFile)
}

// WriteMap renders a map of the given layers.
func (ow *OutWriter) WriteMap(layers render.Layers, opts MapOptions, cfg *contract.Config) error {
	return WriteMap(layers, opts, cfg.OutputFile)
}
