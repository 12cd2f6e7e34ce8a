package mcp_test

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/safepath/safepath/internal/contract"
	mcp_internal "github.com/safepath/safepath/internal/mcp"
	"github.com/safepath/safepath/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServerConfig(t *testing.T) *contract.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "segments.csv")
	data := "route_id,latitude,longitude,crime_density,lighting_density\n" +
		"1,28.60,77.20,0,1\n" +
		"2,28.61,77.21,1,0\n" +
		"3,28.62,77.22,0.5,0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	return &contract.Config{
		InputPath:    path,
		MaxID:        100,
		Features:     []schema.FeatureName{schema.CrimeDensity, schema.LightingDensity},
		Weights:      map[schema.FeatureName]float64{schema.CrimeDensity: 0.6, schema.LightingDensity: 0.4},
		Alpha:        schema.DefaultAlpha,
		Beta:         schema.DefaultBeta,
		AverageSpeed: schema.DefaultAverageSpeed,
		ResultLimit:  10,
		Provider:     schema.NoProvider,
	}
}

func callTool(t *testing.T, cfg *contract.Config, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(cfg, nil)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	cfg := newServerConfig(t)

	t.Run("get_safest_route missing end", func(t *testing.T) {
		res := callTool(t, cfg, "get_safest_route", map[string]any{"start": 1.0})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, resultText(res), "invalid route parameters")
	})

	t.Run("get_safest_route unknown node", func(t *testing.T) {
		res := callTool(t, cfg, "get_safest_route", map[string]any{"start": 1.0, "end": 42.0})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "42")
	})

	t.Run("get_safest_route negative alpha", func(t *testing.T) {
		res := callTool(t, cfg, "get_safest_route", map[string]any{"start": 1.0, "end": 2.0, "alpha": -1.0})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "alpha")
	})

	t.Run("get_safety_scores limit too large", func(t *testing.T) {
		res := callTool(t, cfg, "get_safety_scores", map[string]any{"limit": 5000.0})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "limit cannot exceed")
	})
}

func TestMCPServerHandlers_Results(t *testing.T) {
	cfg := newServerConfig(t)

	t.Run("get_safest_route", func(t *testing.T) {
		res := callTool(t, cfg, "get_safest_route", map[string]any{"start": 1.0, "end": 3.0})
		require.False(t, res.IsError, resultText(res))

		var report schema.RouteReport
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &report))
		assert.Equal(t, []int64{1, 2, 3}, report.Path.IDs)
		assert.InDelta(t, 0.4, report.MinRouteScore, 1e-9)
	})

	t.Run("get_safety_scores", func(t *testing.T) {
		res := callTool(t, cfg, "get_safety_scores", map[string]any{"limit": 2.0})
		require.False(t, res.IsError, resultText(res))

		var enriched []schema.EnrichedSegment
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &enriched))
		require.Len(t, enriched, 2)
		assert.Equal(t, int64(2), enriched[0].ID)
		assert.Equal(t, int64(3), enriched[1].ID)
	})

	t.Run("get_route_geojson", func(t *testing.T) {
		res := callTool(t, cfg, "get_route_geojson", map[string]any{"start": 1.0, "end": 2.0})
		require.False(t, res.IsError, resultText(res))
		assert.Contains(t, resultText(res), `"FeatureCollection"`)
		assert.Contains(t, resultText(res), `"LineString"`)
	})
}

func TestJSONResult(t *testing.T) {
	res := mcp_internal.JSONResult(map[string]float64{"safety_score": 0.5})
	require.False(t, res.IsError)
	assert.Contains(t, resultText(res), `"safety_score": 0.5`)

	res = mcp_internal.JSONResult(map[string]float64{"safety_score": math.NaN()})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "json encoding failed")
}
