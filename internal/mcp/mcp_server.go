// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/prodscore/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the prodscore MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Product Scoring Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: validate_weights ---
	s.AddTool(mcp.NewTool("validate_weights",
		mcp.WithDescription("Check that factor weights sum to 1. Without arguments the configured weights are checked."),
		mcp.WithString("weights", mcp.Description("Weights as 'factor:value' pairs, e.g. 'cost:0.3,margin:0.2'. They override the configured weights per factor.")),
		mcp.WithNumber("tolerance", mcp.Description("Allowed distance of the sum from 1. Use 0 for an exact sum.")),
	), h.handleValidateWeights)

	// --- 2. Tool: validate_bands ---
	s.AddTool(mcp.NewTool("validate_bands",
		mcp.WithDescription("Check that every band min, max and score is numeric. Without arguments the configured bands are checked."),
		mcp.WithArray("bands", mcp.Description("Bands as 'factor:min:max:score' strings. They replace the configured bands of their factor."), mcp.WithStringItems()),
	), h.handleValidateBands)

	// --- 3. Tool: score_csv ---
	s.AddTool(mcp.NewTool("score_csv",
		mcp.WithDescription("Score the rows of a product CSV table with the weighted factor bands."),
		mcp.WithString("csv_path", mcp.Description("Path to a CSV file. Ignored when csv_content is given.")),
		mcp.WithString("csv_content", mcp.Description("Inline CSV text with a header row.")),
		mcp.WithString("weights", mcp.Description("Weights as 'factor:value' pairs overriding the configured weights.")),
		mcp.WithArray("bands", mcp.Description("Bands as 'factor:min:max:score' strings overriding the configured bands."), mcp.WithStringItems()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of rows returned.")),
		mcp.WithBoolean("sort", mcp.Description("Rank rows by score, highest first.")),
		mcp.WithBoolean("explain", mcp.Description("Include the per-factor contribution of every row.")),
	), h.handleScoreCSV)

	// --- 4. Tool: list_factors ---
	s.AddTool(mcp.NewTool("list_factors",
		mcp.WithDescription("List the scoring factors with their configured weights and bands."),
	), h.handleListFactors)

	return s
}

// StartMCPServer starts the prodscore MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
