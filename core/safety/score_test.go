package safety

import (
	"errors"
	"math"
	"testing"

	"github.com/safepath/safepath/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScorerValidation(t *testing.T) {
	two := []schema.FeatureName{schema.CrimeDensity, schema.LightingDensity}

	tests := []struct {
		name     string
		features []schema.FeatureName
		weights  map[schema.FeatureName]float64
		wantErr  string
	}{
		{
			name:     "defaults",
			features: schema.AllFeatures,
			weights:  schema.GetDefaultWeights(),
		},
		{
			name:     "subset summing to one",
			features: two,
			weights:  map[schema.FeatureName]float64{schema.CrimeDensity: 0.6, schema.LightingDensity: 0.4},
		},
		{
			name:     "missing weight",
			features: two,
			weights:  map[schema.FeatureName]float64{schema.CrimeDensity: 1.0},
			wantErr:  "no weight for feature",
		},
		{
			name:     "extra weight",
			features: two,
			weights: map[schema.FeatureName]float64{
				schema.CrimeDensity: 0.5, schema.LightingDensity: 0.4, schema.UserFeedback: 0.1,
			},
			wantErr: "inactive features",
		},
		{
			name:     "negative weight",
			features: two,
			weights:  map[schema.FeatureName]float64{schema.CrimeDensity: 1.2, schema.LightingDensity: -0.2},
			wantErr:  "must be >= 0",
		},
		{
			name:     "sum within tolerance",
			features: two,
			weights:  map[schema.FeatureName]float64{schema.CrimeDensity: 0.5009, schema.LightingDensity: 0.5},
		},
		{
			name:     "nan weight",
			features: two,
			weights:  map[schema.FeatureName]float64{schema.CrimeDensity: math.NaN(), schema.LightingDensity: 1},
			wantErr:  "finite number",
		},
		{
			name:     "infinite weight",
			features: two,
			weights:  map[schema.FeatureName]float64{schema.CrimeDensity: 0, schema.LightingDensity: math.Inf(1)},
			wantErr:  "finite number",
		},
		{
			name:     "does not sum to one",
			features: two,
			weights:  map[schema.FeatureName]float64{schema.CrimeDensity: 0.5, schema.LightingDensity: 0.2},
			wantErr:  "must sum to 1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScorer(tt.features, tt.weights)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.weights, s.Weights())
				return
			}
			var cfgErr *schema.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, "weights", cfgErr.Field)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScore(t *testing.T) {
	s, err := NewScorer(schema.AllFeatures, schema.GetDefaultWeights())
	require.NoError(t, err)

	allOnes := make(map[schema.FeatureName]float64)
	allZeros := make(map[schema.FeatureName]float64)
	onlyCrime := make(map[schema.FeatureName]float64)
	for _, f := range schema.AllFeatures {
		allOnes[f] = 1
		allZeros[f] = 0
		onlyCrime[f] = 0
	}
	onlyCrime[schema.CrimeDensity] = 1

	tests := []struct {
		name       string
		normalized map[schema.FeatureName]float64
		expected   float64
	}{
		{"all ones", allOnes, 1.0},
		{"all zeros", allZeros, 0.0},
		{"crime only", onlyCrime, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, breakdown, err := s.Score(tt.normalized)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, score, 1e-9)
			require.Len(t, breakdown, len(schema.AllFeatures))

			sum := 0.0
			for _, v := range breakdown {
				sum += v
			}
			assert.InDelta(t, score, sum, 1e-12)
		})
	}

	t.Run("missing normalized value", func(t *testing.T) {
		_, _, err := s.Score(map[schema.FeatureName]float64{schema.CrimeDensity: 1})
		var cfgErr *schema.ConfigurationError
		assert.True(t, errors.As(err, &cfgErr))
	})
}

func TestScoreClampedWhenWeightsExceedOne(t *testing.T) {
	two := []schema.FeatureName{schema.CrimeDensity, schema.LightingDensity}
	s, err := NewScorer(two, map[schema.FeatureName]float64{schema.CrimeDensity: 0.5009, schema.LightingDensity: 0.5})
	require.NoError(t, err)

	score, breakdown, err := s.Score(map[schema.FeatureName]float64{schema.CrimeDensity: 1, schema.LightingDensity: 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
	assert.InDelta(t, 0.5009, breakdown[schema.CrimeDensity], 1e-12)
}

func TestScoreAllStaysInUnitInterval(t *testing.T) {
	n, err := NewNormalizer(schema.AllFeatures)
	require.NoError(t, err)
	s, err := NewScorer(schema.AllFeatures, schema.GetDefaultWeights())
	require.NoError(t, err)

	var segments []schema.Segment
	for id := int64(1); id <= 25; id++ {
		raw := make(map[schema.FeatureName]float64, len(schema.AllFeatures))
		for j, f := range schema.AllFeatures {
			raw[f] = float64((int(id)*11+j*7)%19) * 1.5
		}
		segments = append(segments, seg(id, raw))
	}

	normalized, err := n.Normalize(segments)
	require.NoError(t, err)
	scored, err := s.ScoreAll(normalized)
	require.NoError(t, err)
	require.Len(t, scored, len(segments))

	for _, sc := range scored {
		assert.GreaterOrEqual(t, sc.SafetyScore, 0.0, "segment %d", sc.ID)
		assert.LessOrEqual(t, sc.SafetyScore, 1.0, "segment %d", sc.ID)
		assert.Len(t, sc.Breakdown, len(schema.AllFeatures))
	}
}
