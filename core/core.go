// Package core wires the safety engine to its collaborators: it loads segments,
// scores them, finds the safest route and hands the results to the writers.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/safepath/safepath/core/algo"
	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/internal/geoexport"
	"github.com/safepath/safepath/internal/outwriter"
	"github.com/safepath/safepath/internal/render"
	"github.com/safepath/safepath/schema"
)

// RoutePair selects the start and end segments of a route.
type RoutePair struct {
	Start int64
	End   int64
}

// ExecuteRoute computes the safest route and prints it.
// It serves as the main entry point for the 'route' command.
func ExecuteRoute(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, pair RoutePair) error {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		outwriter.LogRouteHeader(cfg, pair.Start, pair.End)
	}
	report, _, err := RunRoute(ctx, cfg, mgr, pair.Start, pair.End)
	if err != nil {
		return err
	}
	publishRoute(cfg, report)
	return outwriter.NewOutWriter().WriteRoute(report, cfg, time.Since(start))
}

// ExecuteScores ranks every segment by safety score and prints the top results.
// It serves as the main entry point for the 'scores' command.
func ExecuteScores(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		outwriter.LogScoresHeader(cfg)
	}
	report, err := RunScores(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteScores(report, cfg, time.Since(start))
}

// ExecuteMetrics displays the active score and edge weight definitions.
// This is a static display that does not read any input.
func ExecuteMetrics(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	return outwriter.NewOutWriter().WriteMetrics(cfg)
}

// ExecuteExportGeoJSON writes every scored segment as GeoJSON, plus the route
// when pair is not nil.
func ExecuteExportGeoJSON(ctx context.Context, cfg *contract.Config, _ contract.StoreManager, pair *RoutePair) error {
	scored, err := LoadScoredSegments(ctx, cfg)
	if err != nil {
		return err
	}

	var report *schema.RouteReport
	if pair != nil {
		r, err := SolveRoute(cfg, scored, pair.Start, pair.End)
		if err != nil {
			return err
		}
		report = &r
	}
	return outwriter.NewOutWriter().WriteGeoJSON(geoexport.BuildFeatureCollection(scored, report), cfg)
}

// ExecuteExportParquet writes every scored segment, safest first, to a Parquet file.
func ExecuteExportParquet(ctx context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	if cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet export")
	}
	scored, err := LoadScoredSegments(ctx, cfg)
	if err != nil {
		return err
	}

	exportCfg := cfg.Clone()
	exportCfg.Output = schema.ParquetOut
	report := schema.ScoresReport{
		Segments:   algo.RankSegments(scored, 0),
		Total:      len(scored),
		ComputedAt: time.Now(),
	}
	return outwriter.NewOutWriter().WriteScores(report, exportCfg, 0)
}

// ExecuteRenderMap draws the safest route and the unsafe off-route segments.
func ExecuteRenderMap(ctx context.Context, cfg *contract.Config, _ contract.StoreManager, pair RoutePair, opts outwriter.MapOptions) error {
	scored, err := LoadScoredSegments(ctx, cfg)
	if err != nil {
		return err
	}
	report, err := SolveRoute(cfg, scored, pair.Start, pair.End)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteMap(render.BuildLayers(scored, report), opts, cfg)
}
