// Package parquet provides data structures and functions for exporting safepath
// scores and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/safepath/safepath/schema"
)

// Run represents a single safepath run with metadata.
// This struct maps to the safepath_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID string `parquet:"run_id,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`
	TotalSegments int32  `parquet:"total_segments,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// SegmentScore maps to the safepath_segment_scores database table.
type SegmentScore struct {
	RunID       string    `parquet:"run_id,snappy"`
	SegmentID   int64     `parquet:"segment_id,snappy"`
	Latitude    float64   `parquet:"latitude,snappy"`
	Longitude   float64   `parquet:"longitude,snappy"`
	SafetyScore float64   `parquet:"safety_score,snappy"`
	Normalized  string    `parquet:"normalized,snappy"` // JSON object keyed by feature
	RecordedAt  time.Time `parquet:"recorded_at,snappy"`
}

// Path maps to the safepath_paths database table.
type Path struct {
	RunID          string    `parquet:"run_id,snappy"`
	StartID        int64     `parquet:"start_id,snappy"`
	EndID          int64     `parquet:"end_id,snappy"`
	PathIDs        string    `parquet:"path_ids,snappy"`
	TotalWeight    float64   `parquet:"total_weight,snappy"`
	PlanarDistance float64   `parquet:"planar_distance,snappy"`
	GeodesicKm     float64   `parquet:"geodesic_km,snappy"`
	RecordedAt     time.Time `parquet:"recorded_at,snappy"`
}

// ScoredSegment is one ranked segment of a scoring run. Normalized feature
// columns are null when the feature was not active.
type ScoredSegment struct {
	Rank        int32   `parquet:"rank,snappy"`
	RouteID     int64   `parquet:"route_id,snappy"`
	Latitude    float64 `parquet:"latitude,snappy"`
	Longitude   float64 `parquet:"longitude,snappy"`
	SafetyScore float64 `parquet:"safety_score,snappy"`
	Label       string  `parquet:"label,snappy"`

	CrimeDensity          *float64 `parquet:"crime_density,optional,snappy"`
	LightingDensity       *float64 `parquet:"lighting_density,optional,snappy"`
	SurveillanceScore     *float64 `parquet:"surveillance_score,optional,snappy"`
	PoliceProximity       *float64 `parquet:"police_proximity,optional,snappy"`
	EmergencyServices     *float64 `parquet:"emergency_services,optional,snappy"`
	PopulationDensity     *float64 `parquet:"population_density,optional,snappy"`
	UserFeedback          *float64 `parquet:"user_feedback,optional,snappy"`
	PublicTransportNearby *float64 `parquet:"public_transport_nearby,optional,snappy"`
	WeatherConditions     *float64 `parquet:"weather_conditions,optional,snappy"`
}

// writeParquet writes rows to outputPath with a schema inferred from T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteRunsParquet writes run metadata to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSegmentScoresParquet writes stored segment scores to a Parquet file.
func WriteSegmentScoresParquet(data []SegmentScore, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WritePathsParquet writes stored paths to a Parquet file.
func WritePathsParquet(data []Path, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteScoredSegmentsParquet writes ranked segments to a Parquet file.
func WriteScoredSegmentsParquet(segments []schema.EnrichedSegment, outputPath string) error {
	return writeParquet(ConvertEnrichedSegments(segments), outputPath)
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalSegments: record.TotalSegments,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertSegmentScoreRecords converts schema.SegmentScoreRecord to SegmentScore.
func ConvertSegmentScoreRecords(records []schema.SegmentScoreRecord) []SegmentScore {
	result := make([]SegmentScore, len(records))
	for i, r := range records {
		result[i] = SegmentScore(r)
	}
	return result
}

// ConvertPathRecords converts schema.PathRecord to Path.
func ConvertPathRecords(records []schema.PathRecord) []Path {
	result := make([]Path, len(records))
	for i, r := range records {
		result[i] = Path(r)
	}
	return result
}

// ConvertEnrichedSegments flattens ranked segments into Parquet rows.
func ConvertEnrichedSegments(segments []schema.EnrichedSegment) []ScoredSegment {
	result := make([]ScoredSegment, len(segments))
	for i, s := range segments {
		row := ScoredSegment{
			Rank:        int32(s.Rank),
			RouteID:     s.ID,
			Latitude:    s.Latitude,
			Longitude:   s.Longitude,
			SafetyScore: s.SafetyScore,
			Label:       s.Label,
		}
		for f, v := range s.Normalized {
			if slot := row.featureSlot(f); slot != nil {
				*slot = &v
			}
		}
		result[i] = row
	}
	return result
}

func (r *ScoredSegment) featureSlot(f schema.FeatureName) **float64 {
	switch f {
	case schema.CrimeDensity:
		return &r.CrimeDensity
	case schema.LightingDensity:
		return &r.LightingDensity
	case schema.SurveillanceScore:
		return &r.SurveillanceScore
	case schema.PoliceProximity:
		return &r.PoliceProximity
	case schema.EmergencyServices:
		return &r.EmergencyServices
	case schema.PopulationDensity:
		return &r.PopulationDensity
	case schema.UserFeedback:
		return &r.UserFeedback
	case schema.PublicTransportNearby:
		return &r.PublicTransportNearby
	case schema.WeatherConditions:
		return &r.WeatherConditions
	}
	return nil
}
