package safety

import (
	"errors"
	"testing"

	"github.com/safepath/safepath/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(id int64, raw map[schema.FeatureName]float64) schema.Segment {
	return schema.Segment{ID: id, Latitude: float64(id), Longitude: float64(id), Raw: raw}
}

func TestNewNormalizerValidation(t *testing.T) {
	tests := []struct {
		name     string
		features []schema.FeatureName
		wantErr  bool
	}{
		{"all features", schema.AllFeatures, false},
		{"subset", []schema.FeatureName{schema.CrimeDensity, schema.LightingDensity}, false},
		{"empty", nil, true},
		{"unknown", []schema.FeatureName{"moon_phase"}, true},
		{"duplicate", []schema.FeatureName{schema.CrimeDensity, schema.CrimeDensity}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewNormalizer(tt.features)
			if tt.wantErr {
				var cfgErr *schema.ConfigurationError
				require.True(t, errors.As(err, &cfgErr))
				assert.Equal(t, "features", cfgErr.Field)
				assert.Nil(t, n)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.features, n.Features())
		})
	}
}

func TestNormalizeMinMax(t *testing.T) {
	features := []schema.FeatureName{schema.CrimeDensity, schema.LightingDensity}
	n, err := NewNormalizer(features)
	require.NoError(t, err)

	segments := []schema.Segment{
		seg(1, map[schema.FeatureName]float64{schema.CrimeDensity: 10, schema.LightingDensity: 5}),
		seg(2, map[schema.FeatureName]float64{schema.CrimeDensity: 20, schema.LightingDensity: 1}),
		seg(3, map[schema.FeatureName]float64{schema.CrimeDensity: 15, schema.LightingDensity: 3}),
	}

	out, err := n.Normalize(segments)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.InDelta(t, 0.0, out[0].Normalized[schema.CrimeDensity], 1e-12)
	assert.InDelta(t, 1.0, out[1].Normalized[schema.CrimeDensity], 1e-12)
	assert.InDelta(t, 0.5, out[2].Normalized[schema.CrimeDensity], 1e-12)

	assert.InDelta(t, 1.0, out[0].Normalized[schema.LightingDensity], 1e-12)
	assert.InDelta(t, 0.0, out[1].Normalized[schema.LightingDensity], 1e-12)
	assert.InDelta(t, 0.5, out[2].Normalized[schema.LightingDensity], 1e-12)

	for i, s := range out {
		assert.Equal(t, segments[i].ID, s.ID, "order preserved")
		assert.Zero(t, s.SafetyScore)
	}
}

func TestNormalizeEveryFeatureSpansUnitInterval(t *testing.T) {
	n, err := NewNormalizer(schema.AllFeatures)
	require.NoError(t, err)

	var segments []schema.Segment
	for id := int64(1); id <= 12; id++ {
		raw := make(map[schema.FeatureName]float64, len(schema.AllFeatures))
		for j, f := range schema.AllFeatures {
			raw[f] = float64((int(id)*7+j*3)%11) + 0.5
		}
		segments = append(segments, seg(id, raw))
	}

	out, err := n.Normalize(segments)
	require.NoError(t, err)

	for _, f := range schema.AllFeatures {
		lo, hi := 2.0, -1.0
		for _, s := range out {
			v := s.Normalized[f]
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
			lo = min(lo, v)
			hi = max(hi, v)
		}
		assert.InDelta(t, 0.0, lo, 1e-12, "min of %s", f)
		assert.InDelta(t, 1.0, hi, 1e-12, "max of %s", f)
	}
}

func TestNormalizeErrors(t *testing.T) {
	features := []schema.FeatureName{schema.CrimeDensity, schema.LightingDensity}
	n, err := NewNormalizer(features)
	require.NoError(t, err)

	t.Run("empty input", func(t *testing.T) {
		_, err := n.Normalize(nil)
		assert.ErrorIs(t, err, schema.ErrNoSegments)
	})

	t.Run("single segment is degenerate", func(t *testing.T) {
		_, err := n.Normalize([]schema.Segment{
			seg(7, map[schema.FeatureName]float64{schema.CrimeDensity: 4, schema.LightingDensity: 2}),
		})
		var degenerate *schema.DegenerateFeatureError
		require.True(t, errors.As(err, &degenerate))
		assert.Equal(t, schema.CrimeDensity, degenerate.Feature, "first feature reported first")
		assert.Equal(t, 4.0, degenerate.Value)
	})

	t.Run("constant second feature", func(t *testing.T) {
		_, err := n.Normalize([]schema.Segment{
			seg(1, map[schema.FeatureName]float64{schema.CrimeDensity: 1, schema.LightingDensity: 9}),
			seg(2, map[schema.FeatureName]float64{schema.CrimeDensity: 2, schema.LightingDensity: 9}),
		})
		var degenerate *schema.DegenerateFeatureError
		require.True(t, errors.As(err, &degenerate))
		assert.Equal(t, schema.LightingDensity, degenerate.Feature)
		assert.Equal(t, 9.0, degenerate.Value)
	})

	t.Run("missing value", func(t *testing.T) {
		_, err := n.Normalize([]schema.Segment{
			seg(1, map[schema.FeatureName]float64{schema.CrimeDensity: 1, schema.LightingDensity: 2}),
			seg(2, map[schema.FeatureName]float64{schema.CrimeDensity: 2}),
		})
		var cfgErr *schema.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, string(schema.LightingDensity), cfgErr.Field)
		assert.Contains(t, cfgErr.Error(), "segment 2")
	})
}

func TestNormalizeIsDeterministic(t *testing.T) {
	n, err := NewNormalizer(schema.AllFeatures)
	require.NoError(t, err)

	var segments []schema.Segment
	for id := int64(1); id <= 30; id++ {
		raw := make(map[schema.FeatureName]float64, len(schema.AllFeatures))
		for j, f := range schema.AllFeatures {
			raw[f] = float64((int(id)*13+j*5)%17) / 3
		}
		segments = append(segments, seg(id, raw))
	}

	first, err := n.Normalize(segments)
	require.NoError(t, err)
	for range 20 {
		again, err := n.Normalize(segments)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
