package safety

import (
	"math"
	"testing"

	"github.com/safepath/safepath/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FuzzNormalizeAndScore fuzzes normalization and scoring of three segments
// over two features with a random weight split.
func FuzzNormalizeAndScore(f *testing.F) {
	seeds := []struct {
		crime    [3]float64
		lighting [3]float64
		weight   float64
	}{
		{[3]float64{5, 8, 2}, [3]float64{3, 1, 5}, 0.6},
		{[3]float64{0, 0, 1}, [3]float64{1, 1, 0}, 0.5009},
		{[3]float64{-3, 7, 7}, [3]float64{2, 2, 9}, 1},
		{[3]float64{1, 2, 3}, [3]float64{3, 2, 1}, math.NaN()},
	}
	for _, seed := range seeds {
		f.Add(seed.crime[0], seed.crime[1], seed.crime[2],
			seed.lighting[0], seed.lighting[1], seed.lighting[2], seed.weight)
	}

	features := []schema.FeatureName{schema.CrimeDensity, schema.LightingDensity}
	f.Fuzz(func(t *testing.T, c1, c2, c3, l1, l2, l3, w float64) {
		s, err := NewScorer(features, map[schema.FeatureName]float64{
			schema.CrimeDensity:    w,
			schema.LightingDensity: 1 - w,
		})
		if math.IsNaN(w) || math.IsInf(w, 0) {
			require.Error(t, err)
			return
		}
		if err != nil {
			return
		}

		// Keep max-min finite.
		for _, v := range []float64{c1, c2, c3, l1, l2, l3} {
			if math.IsNaN(v) || math.Abs(v) > 1e12 {
				return
			}
		}

		n, err := NewNormalizer(features)
		require.NoError(t, err)
		normalized, err := n.Normalize([]schema.Segment{
			seg(1, map[schema.FeatureName]float64{schema.CrimeDensity: c1, schema.LightingDensity: l1}),
			seg(2, map[schema.FeatureName]float64{schema.CrimeDensity: c2, schema.LightingDensity: l2}),
			seg(3, map[schema.FeatureName]float64{schema.CrimeDensity: c3, schema.LightingDensity: l3}),
		})
		if err != nil {
			return
		}

		scored, err := s.ScoreAll(normalized)
		require.NoError(t, err)
		for _, sc := range scored {
			for _, v := range sc.Normalized {
				assert.True(t, v >= 0 && v <= 1, "normalized %g out of range", v)
			}
			assert.False(t, math.IsNaN(sc.SafetyScore))
			assert.True(t, sc.SafetyScore >= 0 && sc.SafetyScore <= 1, "score %g out of range", sc.SafetyScore)
		}
	})
}
