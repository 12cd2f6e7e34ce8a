package core

import (
	"context"
	"math"
	"time"

	"github.com/safepath/safepath/core/algo"
	"github.com/safepath/safepath/core/graph"
	"github.com/safepath/safepath/core/safety"
	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/internal/geoexport"
	"github.com/safepath/safepath/internal/loader"
	"github.com/safepath/safepath/internal/provider"
	"github.com/safepath/safepath/schema"
)

// loaderOptions maps the run configuration onto the CSV loader.
func loaderOptions(cfg *contract.Config) loader.Options {
	return loader.Options{
		Features:      cfg.Features,
		IgnoreColumns: cfg.IgnoreColumns,
		MinID:         cfg.MinID,
		MaxID:         cfg.MaxID,
	}
}

// ScoreSegments normalizes the raw features and computes the safety score of each segment.
func ScoreSegments(cfg *contract.Config, segments []schema.Segment) ([]schema.ScoredSegment, error) {
	normalizer, err := safety.NewNormalizer(cfg.Features)
	if err != nil {
		return nil, err
	}
	scorer, err := safety.NewScorer(cfg.Features, cfg.Weights)
	if err != nil {
		return nil, err
	}
	normalized, err := normalizer.Normalize(segments)
	if err != nil {
		return nil, err
	}
	return scorer.ScoreAll(normalized)
}

// LoadScoredSegments reads the configured input and scores it.
func LoadScoredSegments(ctx context.Context, cfg *contract.Config) ([]schema.ScoredSegment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	segments, err := loader.LoadSegments(cfg.InputPath, loaderOptions(cfg))
	if err != nil {
		return nil, err
	}
	return ScoreSegments(cfg, segments)
}

// SolveRoute builds the route graph over scored segments and finds the safest
// path between start and end. Provider data and the run id are left empty.
func SolveRoute(cfg *contract.Config, scored []schema.ScoredSegment, start, end int64) (schema.RouteReport, error) {
	builder, err := graph.NewBuilder(cfg.Alpha, cfg.Beta)
	if err != nil {
		return schema.RouteReport{}, err
	}
	g, err := builder.Build(scored)
	if err != nil {
		return schema.RouteReport{}, err
	}
	path, err := graph.ShortestPath(g, start, end)
	if err != nil {
		return schema.RouteReport{}, err
	}

	byID := make(map[int64]schema.ScoredSegment, len(scored))
	for _, s := range scored {
		byID[s.ID] = s
	}
	route := make([]schema.ScoredSegment, len(path.IDs))
	minScore := math.Inf(1)
	for i, id := range path.IDs {
		route[i] = byID[id]
		minScore = min(minScore, route[i].SafetyScore)
	}

	km := geoexport.RouteLength(route)
	return schema.RouteReport{
		Start:         start,
		End:           end,
		Alpha:         cfg.Alpha,
		Beta:          cfg.Beta,
		Path:          path,
		Route:         route,
		MinRouteScore: minScore,
		GeodesicKm:    km,
		TravelMinutes: geoexport.TravelMinutes(km, cfg.AverageSpeed),
		ComputedAt:    time.Now(),
	}, nil
}

// RunRoute loads, scores and solves, then attaches the provider summary and
// records the run. Provider and history failures are logged, not returned.
func RunRoute(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, start, end int64) (schema.RouteReport, []schema.ScoredSegment, error) {
	startTime := time.Now()

	scored, err := LoadScoredSegments(ctx, cfg)
	if err != nil {
		return schema.RouteReport{}, nil, err
	}
	report, err := SolveRoute(cfg, scored, start, end)
	if err != nil {
		return schema.RouteReport{}, nil, err
	}

	p, err := provider.New(cfg, cacheStore(mgr))
	if err != nil {
		return schema.RouteReport{}, nil, err
	}
	attachProviderSummary(ctx, p, &report)

	recordHistory(mgr, cfg, startTime, scored, &report)
	return report, scored, nil
}

// RunScores loads and scores the input and ranks it, safest first.
func RunScores(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.ScoresReport, error) {
	startTime := time.Now()

	scored, err := LoadScoredSegments(ctx, cfg)
	if err != nil {
		return schema.ScoresReport{}, err
	}

	report := schema.ScoresReport{
		Segments:   algo.RankSegments(scored, cfg.ResultLimit),
		Total:      len(scored),
		ComputedAt: time.Now(),
	}
	report.RunID = recordHistory(mgr, cfg, startTime, scored, nil)
	return report, nil
}

// attachProviderSummary asks p for the route between the first and last
// segments of the path. A nil provider or a one-segment path is skipped.
func attachProviderSummary(ctx context.Context, p contract.RouteProvider, report *schema.RouteReport) {
	if p == nil || len(report.Route) < 2 {
		return
	}
	from := report.Route[0].Coordinate()
	to := report.Route[len(report.Route)-1].Coordinate()

	summary, err := p.Route(ctx, from, to)
	if err != nil {
		contract.LogWarn("Route provider "+p.Name()+" failed", err)
		return
	}
	report.Provider = &summary
}

func cacheStore(mgr contract.StoreManager) contract.CacheStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetCacheStore()
}

func historyStore(mgr contract.StoreManager) contract.HistoryStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetHistoryStore()
}
