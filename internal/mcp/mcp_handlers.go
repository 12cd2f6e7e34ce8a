package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/safepath/safepath/core"
	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/internal/geoexport"
	"github.com/safepath/safepath/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// requireEndpoints reads the start and end route ids of a request.
func requireEndpoints(request mcp.CallToolRequest) (int64, int64, error) {
	start, err := request.RequireInt("start")
	if err != nil {
		return 0, 0, err
	}
	end, err := request.RequireInt("end")
	if err != nil {
		return 0, 0, err
	}
	return int64(start), int64(end), nil
}

func (h *toolHandler) handleGetSafestRoute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := requireEndpoints(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid route parameters: %v", err)), nil
	}

	cfg := h.baseCfg.Clone()
	args := request.GetArguments()
	if _, ok := args["alpha"]; ok {
		cfg.Alpha = request.GetFloat("alpha", cfg.Alpha)
	}
	if _, ok := args["beta"]; ok {
		cfg.Beta = request.GetFloat("beta", cfg.Beta)
	}

	report, _, err := core.RunRoute(core.WithSuppressHeader(ctx), cfg, h.mgr, start, end)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("routing failed: %v", err)), nil
	}

	return jsonResult(report), nil
}

func (h *toolHandler) handleGetSafetyScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if l := request.GetInt("limit", 0); l > 0 {
		if l > contract.MaxResultLimit {
			return mcp.NewToolResultError(fmt.Sprintf("limit cannot exceed %d", contract.MaxResultLimit)), nil
		}
		cfg.ResultLimit = l
	}

	report, err := core.RunScores(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}

	enriched := schema.EnrichSegments(report.Segments)
	return jsonResult(enriched), nil
}

func (h *toolHandler) handleGetRouteGeoJSON(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := requireEndpoints(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid route parameters: %v", err)), nil
	}

	scored, err := core.LoadScoredSegments(ctx, h.baseCfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}
	report, err := core.SolveRoute(h.baseCfg, scored, start, end)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("routing failed: %v", err)), nil
	}

	jsonData, err := geoexport.BuildFeatureCollection(scored, &report).MarshalJSON()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("geojson encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// jsonResult encodes v as indented JSON text, or a tool error if it cannot be encoded.
func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("json encoding failed: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}
