package schema

import (
	"errors"
	"fmt"
)

// ErrNoSegments is returned when an operation needs at least one segment.
var ErrNoSegments = errors.New("no segments to process")

// DegenerateFeatureError reports a feature whose values are identical across
// every segment, so min-max normalization would divide by zero.
type DegenerateFeatureError struct {
	Feature FeatureName
	Value   float64
}

func (e *DegenerateFeatureError) Error() string {
	return fmt.Sprintf("feature %s is constant (%g) across all segments and cannot be normalized", e.Feature, e.Value)
}

// ConfigurationError reports an invalid option or input shape.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ZeroSafetyScoreError reports a segment whose safety score is exactly zero,
// which would make the safety penalty of its edges infinite.
type ZeroSafetyScoreError struct {
	SegmentID int64
}

func (e *ZeroSafetyScoreError) Error() string {
	return fmt.Sprintf("segment %d has a safety score of 0", e.SegmentID)
}

// NodeNotFoundError reports a requested node id that is not in the graph.
type NodeNotFoundError struct {
	ID int64
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node %d not found in graph", e.ID)
}

// NoPathError reports that end is unreachable from start.
type NoPathError struct {
	Start int64
	End   int64
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("no path from %d to %d", e.Start, e.End)
}

// NewConfigurationError is a shorthand used by validators.
func NewConfigurationError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
