package graph

import (
	"math"
	"testing"

	"github.com/safepath/safepath/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FuzzShortestPath fuzzes scores, coefficients and endpoints on the four
// segment chain.
func FuzzShortestPath(f *testing.F) {
	f.Add(0.9, 0.2, 0.8, 0.5, 0.7, 0.3, uint8(1), uint8(4))
	f.Add(1.0, 1.0, 1.0, 1.0, 0.0, 0.0, uint8(4), uint8(1))
	f.Add(0.001, 0.5, 0.5, 1.0, 10.0, 2.0, uint8(2), uint8(2))
	f.Add(0.5, 0.5, 0.5, 0.5, 0.7, 0.3, uint8(9), uint8(1))

	f.Fuzz(func(t *testing.T, s1, s2, s3, s4, alpha, beta float64, start, end uint8) {
		for _, s := range []float64{s1, s2, s3, s4} {
			if !(s >= 1e-6 && s <= 1) {
				return
			}
		}
		b, err := NewBuilder(alpha, beta)
		if err != nil {
			return
		}
		if alpha > 1e6 || beta > 1e6 {
			return
		}

		g, err := b.Build([]schema.ScoredSegment{
			scored(1, 28.6139, 77.2090, s1),
			scored(2, 28.6200, 77.2150, s2),
			scored(3, 28.6250, 77.2200, s3),
			scored(4, 28.6300, 77.2300, s4),
		})
		require.NoError(t, err)

		from, to := int64(start), int64(end)
		res, err := ShortestPath(g, from, to)
		if from < 1 || from > 4 || to < 1 || to > 4 {
			require.Error(t, err)
			return
		}
		require.NoError(t, err)
		require.NotEmpty(t, res.IDs)
		assert.Equal(t, from, res.IDs[0])
		assert.Equal(t, to, res.IDs[len(res.IDs)-1])
		for i := 1; i < len(res.IDs); i++ {
			step := res.IDs[i] - res.IDs[i-1]
			assert.True(t, step == 1 || step == -1, "path %v is not contiguous", res.IDs)
		}
		assert.False(t, math.IsNaN(res.TotalWeight))
		assert.GreaterOrEqual(t, res.TotalWeight, 0.0)
	})
}
