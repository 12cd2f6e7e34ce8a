// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/safepath/safepath/internal/contract"
)

// NewMCPServer initializes and configures the SafePath MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"SafePath Routing Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_safest_route ---
	s.AddTool(mcp.NewTool("get_safest_route",
		mcp.WithDescription("Find the safest path between two route segments of the loaded dataset."),
		mcp.WithNumber("start", mcp.Description("Route id of the starting segment."), mcp.Required()),
		mcp.WithNumber("end", mcp.Description("Route id of the destination segment."), mcp.Required()),
		mcp.WithNumber("alpha", mcp.Description("Weight of planar distance in edge cost (>= 0).")),
		mcp.WithNumber("beta", mcp.Description("Weight of inverse safety in edge cost (>= 0).")),
	), h.handleGetSafestRoute)

	// --- 2. Tool: get_safety_scores ---
	s.AddTool(mcp.NewTool("get_safety_scores",
		mcp.WithDescription("Rank route segments by safety score, safest first."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetSafetyScores)

	// --- 3. Tool: get_route_geojson ---
	s.AddTool(mcp.NewTool("get_route_geojson",
		mcp.WithDescription("Export scored segments and the safest path between two segments as GeoJSON."),
		mcp.WithNumber("start", mcp.Description("Route id of the starting segment."), mcp.Required()),
		mcp.WithNumber("end", mcp.Description("Route id of the destination segment."), mcp.Required()),
	), h.handleGetRouteGeoJSON)

	return s
}

// StartMCPServer starts the SafePath MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
