package schema

import "time"

// RunRecord represents a row from the safepath_runs table.
type RunRecord struct {
	RunID         string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalSegments int32
	ConfigParams  *string
}

// SegmentScoreRecord represents a row from the safepath_segment_scores table.
type SegmentScoreRecord struct {
	RunID       string
	SegmentID   int64
	Latitude    float64
	Longitude   float64
	SafetyScore float64
	Normalized  string // JSON object keyed by feature name
	RecordedAt  time.Time
}

// PathRecord represents a row from the safepath_paths table.
type PathRecord struct {
	RunID          string
	StartID        int64
	EndID          int64
	PathIDs        string // comma separated, start to end
	TotalWeight    float64
	PlanarDistance float64
	GeodesicKm     float64
	RecordedAt     time.Time
}
