package parquet

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/safepath/safepath/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"run", new(Run), []string{"run_id", "start_time", "end_time", "run_duration_ms", "total_segments", "config_params"}},
		{"segment score", new(SegmentScore), []string{"run_id", "segment_id", "latitude", "longitude", "safety_score", "normalized", "recorded_at"}},
		{"path", new(Path), []string{"run_id", "start_id", "end_id", "path_ids", "total_weight", "planar_distance", "geodesic_km", "recorded_at"}},
		{"scored segment", new(ScoredSegment), []string{"rank", "route_id", "safety_score", "label", "crime_density", "weather_conditions"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	duration := int32(1500)
	params := `{"alpha":0.7}`

	data := []Run{
		{RunID: "a", StartTime: start, EndTime: &end, RunDurationMs: &duration, TotalSegments: 4, ConfigParams: &params},
		{RunID: "b", StartTime: start.Add(time.Hour)}, // still running
	}
	require.NoError(t, WriteRunsParquet(data, outputPath))

	rows, err := parquet.ReadFile[Run](outputPath)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "a", rows[0].RunID)
	assert.Equal(t, int32(4), rows[0].TotalSegments)
	require.NotNil(t, rows[0].EndTime)
	assert.WithinDuration(t, end, *rows[0].EndTime, time.Microsecond)
	require.NotNil(t, rows[0].ConfigParams)
	assert.Equal(t, params, *rows[0].ConfigParams)

	assert.Nil(t, rows[1].EndTime)
	assert.Nil(t, rows[1].RunDurationMs)
	assert.Nil(t, rows[1].ConfigParams)
}

func TestWriteScoredSegmentsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "scores.parquet")
	segments := schema.EnrichSegments([]schema.ScoredSegment{
		{
			Segment:     schema.Segment{ID: 3, Latitude: 28.6, Longitude: 77.2},
			Normalized:  map[schema.FeatureName]float64{schema.CrimeDensity: 0.25},
			SafetyScore: 0.8,
		},
		{
			Segment:     schema.Segment{ID: 1, Latitude: 28.7, Longitude: 77.3},
			Normalized:  map[schema.FeatureName]float64{schema.CrimeDensity: 1},
			SafetyScore: 0.1,
		},
	})
	require.NoError(t, WriteScoredSegmentsParquet(segments, outputPath))

	rows, err := parquet.ReadFile[ScoredSegment](outputPath)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int32(1), rows[0].Rank)
	assert.Equal(t, int64(3), rows[0].RouteID)
	assert.Equal(t, schema.SafeLabel, rows[0].Label)
	require.NotNil(t, rows[0].CrimeDensity)
	assert.Equal(t, 0.25, *rows[0].CrimeDensity)
	assert.Nil(t, rows[0].LightingDensity, "inactive feature stays null")
	assert.Equal(t, schema.UnsafeLabel, rows[1].Label)
}

func TestConvertRecords(t *testing.T) {
	now := time.Now()
	scores := ConvertSegmentScoreRecords([]schema.SegmentScoreRecord{
		{RunID: "r", SegmentID: 2, SafetyScore: 0.5, Normalized: "{}", RecordedAt: now},
	})
	require.Len(t, scores, 1)
	assert.Equal(t, int64(2), scores[0].SegmentID)
	assert.Equal(t, now, scores[0].RecordedAt)

	paths := ConvertPathRecords([]schema.PathRecord{{RunID: "r", StartID: 1, EndID: 4, PathIDs: "1,2,3,4"}})
	require.Len(t, paths, 1)
	assert.Equal(t, "1,2,3,4", paths[0].PathIDs)
}

func TestWriteParquetEmptyAndInvalidPath(t *testing.T) {
	assert.NoError(t, WritePathsParquet(nil, filepath.Join(t.TempDir(), "empty.parquet")))
	assert.Error(t, WriteSegmentScoresParquet(nil, "/nonexistent/dir/out.parquet"))
}
