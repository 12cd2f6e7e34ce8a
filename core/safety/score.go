package safety

import (
	"fmt"
	"maps"
	"math"
	"sort"

	"github.com/safepath/safepath/schema"
)

// weightSumTolerance is how far the weights may drift from summing to 1.
const weightSumTolerance = 0.001

// Scorer computes the weighted safety score from normalized features.
type Scorer struct {
	features []schema.FeatureName
	weights  map[schema.FeatureName]float64
}

// NewScorer checks that the weight table covers exactly the given features,
// that no weight is negative and that the weights sum to 1.
func NewScorer(features []schema.FeatureName, weights map[schema.FeatureName]float64) (*Scorer, error) {
	if err := ValidateFeatures(features); err != nil {
		return nil, err
	}
	if err := ValidateWeights(features, weights); err != nil {
		return nil, err
	}
	fs := make([]schema.FeatureName, len(features))
	copy(fs, features)
	return &Scorer{features: fs, weights: maps.Clone(weights)}, nil
}

// ValidateWeights checks a weight table against a feature set.
func ValidateWeights(features []schema.FeatureName, weights map[schema.FeatureName]float64) error {
	want := make(map[schema.FeatureName]struct{}, len(features))
	for _, f := range features {
		want[f] = struct{}{}
		if _, ok := weights[f]; !ok {
			return schema.NewConfigurationError("weights", "no weight for feature %q", f)
		}
	}

	var extra []string
	for f := range weights {
		if _, ok := want[f]; !ok {
			extra = append(extra, string(f))
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return schema.NewConfigurationError("weights", "weights given for inactive features %v", extra)
	}

	sum := 0.0
	for _, f := range features {
		w := weights[f]
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return schema.NewConfigurationError("weights", "weight for %q must be a finite number (got %g)", f, w)
		}
		if w < 0 {
			return schema.NewConfigurationError("weights", "weight for %q must be >= 0 (got %g)", f, w)
		}
		sum += w
	}
	if sum < 1-weightSumTolerance || sum > 1+weightSumTolerance {
		return schema.NewConfigurationError("weights", "must sum to 1.0, got %.3f", sum)
	}
	return nil
}

// Weights returns a copy of the active weight table.
func (s *Scorer) Weights() map[schema.FeatureName]float64 {
	return maps.Clone(s.weights)
}

// Score returns the safety score and its per-feature breakdown. The score is
// clamped to [0,1] since accepted weights may sum to slightly more than 1.
func (s *Scorer) Score(normalized map[schema.FeatureName]float64) (float64, map[schema.FeatureName]float64, error) {
	breakdown := make(map[schema.FeatureName]float64, len(s.features))
	total := 0.0
	for _, f := range s.features {
		v, ok := normalized[f]
		if !ok {
			return 0, nil, fmt.Errorf("normalized value for %s: %w", f, schema.NewConfigurationError(string(f), "missing"))
		}
		contrib := s.weights[f] * v
		breakdown[f] = contrib
		total += contrib
	}
	return math.Max(0, math.Min(1, total)), breakdown, nil
}

// ScoreAll fills SafetyScore and Breakdown of each segment in place and
// returns the same slice.
func (s *Scorer) ScoreAll(segments []schema.ScoredSegment) ([]schema.ScoredSegment, error) {
	for i := range segments {
		score, breakdown, err := s.Score(segments[i].Normalized)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", segments[i].ID, err)
		}
		segments[i].SafetyScore = score
		segments[i].Breakdown = breakdown
	}
	return segments, nil
}
