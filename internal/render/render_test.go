package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/paulmach/orb"
	"github.com/safepath/safepath/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(id int64, lat, lon, score float64) schema.ScoredSegment {
	return schema.ScoredSegment{
		Segment:     schema.Segment{ID: id, Latitude: lat, Longitude: lon},
		SafetyScore: score,
	}
}

func sampleData() ([]schema.ScoredSegment, schema.RouteReport) {
	segments := []schema.ScoredSegment{
		scored(1, 28.610, 77.200, 0.8),
		scored(2, 28.620, 77.210, 0.5),
		scored(3, 28.630, 77.220, 0.7),
		scored(4, 28.640, 77.230, 0.2), // below the route minimum
		scored(5, 28.650, 77.240, 0.9), // safe, off route
	}
	report := schema.RouteReport{
		Start:         1,
		End:           3,
		Path:          schema.PathResult{IDs: []int64{1, 2, 3}},
		Route:         segments[:3],
		MinRouteScore: 0.5,
	}
	return segments, report
}

func TestBuildLayers(t *testing.T) {
	segments, report := sampleData()
	l := BuildLayers(segments, report)

	assert.Len(t, l.RouteMarkers, 3)
	require.Len(t, l.UnsafeMarkers, 1)
	assert.Equal(t, orb.Point{77.230, 28.640}, l.UnsafeMarkers[0])

	require.Len(t, l.Route, 5, "three points plus two midpoints")
	assert.Equal(t, orb.Point{77.200, 28.610}, l.Route[0])
	assert.InDelta(t, 77.205+zigZagOffset, l.Route[1][0], 1e-12)
	assert.InDelta(t, 28.615, l.Route[1][1], 1e-12)
	assert.Equal(t, orb.Point{77.220, 28.630}, l.Route[4])

	assert.True(t, l.HasInfo)
	assert.Equal(t, orb.Point{77.210, 28.620}, l.Info)
}

func TestBuildLayersEdgeCases(t *testing.T) {
	segments, _ := sampleData()

	t.Run("empty route draws nothing unsafe", func(t *testing.T) {
		l := BuildLayers(segments, schema.RouteReport{})
		assert.Empty(t, l.RouteMarkers)
		assert.Empty(t, l.UnsafeMarkers)
		assert.Empty(t, l.Route)
		assert.False(t, l.HasInfo)
	})

	t.Run("single point route has no line", func(t *testing.T) {
		report := schema.RouteReport{Route: segments[:1], MinRouteScore: 0.8}
		l := BuildLayers(segments, report)
		assert.Empty(t, l.Route)
		assert.True(t, l.HasInfo)
		assert.Len(t, l.UnsafeMarkers, 3)
	})
}

func TestRenderToSVG(t *testing.T) {
	segments, report := sampleData()
	r := NewMapRenderer(400, 300)

	var buf bytes.Buffer
	require.NoError(t, r.RenderToSVG(&buf, BuildLayers(segments, report)))
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "path")
}

func TestRenderToPNG(t *testing.T) {
	segments, report := sampleData()
	r := NewMapRenderer(200, 150)

	var buf bytes.Buffer
	require.NoError(t, r.RenderToPNG(&buf, BuildLayers(segments, report)))

	img, err := png.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestRenderTooSmall(t *testing.T) {
	r := NewMapRenderer(50, 50)
	var buf bytes.Buffer
	assert.Error(t, r.RenderToSVG(&buf, Layers{}))
	assert.Error(t, r.RenderToPNG(&buf, Layers{}))
}

func TestProjectorKeepsPointsInside(t *testing.T) {
	r := NewMapRenderer(400, 300)
	bound := orb.Bound{Min: orb.Point{77.2, 28.6}, Max: orb.Point{77.3, 28.65}}
	proj := r.newProjector(bound)

	for _, pt := range []orb.Point{bound.Min, bound.Max} {
		x, y := proj.project(pt)
		assert.GreaterOrEqual(t, x, r.Padding-1e-9)
		assert.LessOrEqual(t, x, r.Width-r.Padding+1e-9)
		assert.GreaterOrEqual(t, y, r.Padding-1e-9)
		assert.LessOrEqual(t, y, r.Height-r.Padding+1e-9)
	}
}
