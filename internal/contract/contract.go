// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/safepath/safepath/schema"
)

// RouteProvider answers informational route queries between two coordinates.
// Its answer never changes the computed safest path.
type RouteProvider interface {
	// Name identifies the provider in reports and cache keys.
	Name() string

	// Route returns distance, duration and geometry between two points.
	Route(ctx context.Context, from, to schema.Coordinate) (schema.RouteSummary, error)
}

// StoreManager defines the interface for managing the cache and history stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetCacheStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking runs and storing their results.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (string, error)

	// EndRun updates the run with completion data
	EndRun(runID string, endTime time.Time, totalSegments int) error

	// RecordSegments stores the scored segments of a run
	RecordSegments(runID string, segments []schema.ScoredSegment) error

	// RecordPath stores a computed path of a run
	RecordPath(runID string, report schema.RouteReport) error

	// ListRuns returns up to limit runs, newest first; limit <= 0 returns all
	ListRuns(limit int) ([]schema.RunRecord, error)

	// ListSegmentScores returns stored segment scores; an empty runID returns all runs
	ListSegmentScores(runID string) ([]schema.SegmentScoreRecord, error)

	// ListPaths returns stored paths; an empty runID returns all runs
	ListPaths(runID string) ([]schema.PathRecord, error)

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection
	Close() error
}
