// Package safety turns raw per-segment indicators into a bounded safety score.
package safety

import (
	"math"
	"sync"

	"github.com/safepath/safepath/schema"
)

// Normalizer rescales every configured feature to [0,1] with min-max
// normalization over the full segment set.
type Normalizer struct {
	features []schema.FeatureName
}

// NewNormalizer validates the feature list and returns a Normalizer for it.
// Features must be non-empty, known and unique.
func NewNormalizer(features []schema.FeatureName) (*Normalizer, error) {
	if err := ValidateFeatures(features); err != nil {
		return nil, err
	}
	fs := make([]schema.FeatureName, len(features))
	copy(fs, features)
	return &Normalizer{features: fs}, nil
}

// Features returns the configured features in order.
func (n *Normalizer) Features() []schema.FeatureName {
	out := make([]schema.FeatureName, len(n.features))
	copy(out, n.features)
	return out
}

// ValidateFeatures checks that a feature list is usable for normalization.
func ValidateFeatures(features []schema.FeatureName) error {
	if len(features) == 0 {
		return schema.NewConfigurationError("features", "at least one feature is required")
	}
	seen := make(map[schema.FeatureName]struct{}, len(features))
	for _, f := range features {
		if _, ok := schema.ValidFeatures[f]; !ok {
			return schema.NewConfigurationError("features", "unknown feature %q", f)
		}
		if _, dup := seen[f]; dup {
			return schema.NewConfigurationError("features", "feature %q listed twice", f)
		}
		seen[f] = struct{}{}
	}
	return nil
}

// columnRange is the min/max reduction of one feature column.
type columnRange struct {
	min, max float64
	missing  int64 // id of the first segment lacking the feature, if any
	hasGap   bool
}

// Normalize returns one ScoredSegment per input segment with Normalized filled in.
// SafetyScore is left at zero for the Scorer.
//
// Column reductions run concurrently, one goroutine per feature, each writing
// its own slot. The result does not depend on scheduling.
func (n *Normalizer) Normalize(segments []schema.Segment) ([]schema.ScoredSegment, error) {
	if len(segments) == 0 {
		return nil, schema.ErrNoSegments
	}

	ranges := make([]columnRange, len(n.features))
	var wg sync.WaitGroup
	for i, f := range n.features {
		wg.Add(1)
		go func(slot int, feature schema.FeatureName) {
			defer wg.Done()
			ranges[slot] = reduceColumn(segments, feature)
		}(i, f)
	}
	wg.Wait()

	// Errors are reported in feature order so the outcome is deterministic.
	for i, f := range n.features {
		r := ranges[i]
		if r.hasGap {
			return nil, schema.NewConfigurationError(string(f), "missing value for segment %d", r.missing)
		}
		if r.max == r.min {
			return nil, &schema.DegenerateFeatureError{Feature: f, Value: r.min}
		}
	}

	out := make([]schema.ScoredSegment, len(segments))
	for i, s := range segments {
		normalized := make(map[schema.FeatureName]float64, len(n.features))
		for j, f := range n.features {
			r := ranges[j]
			normalized[f] = (s.Raw[f] - r.min) / (r.max - r.min)
		}
		out[i] = schema.ScoredSegment{Segment: s, Normalized: normalized}
	}
	return out, nil
}

// reduceColumn computes the min and max of one feature over all segments.
func reduceColumn(segments []schema.Segment, feature schema.FeatureName) columnRange {
	r := columnRange{min: math.Inf(1), max: math.Inf(-1)}
	for _, s := range segments {
		v, ok := s.Raw[feature]
		if !ok {
			if !r.hasGap {
				r.hasGap = true
				r.missing = s.ID
			}
			continue
		}
		r.min = math.Min(r.min, v)
		r.max = math.Max(r.max, v)
	}
	return r
}
