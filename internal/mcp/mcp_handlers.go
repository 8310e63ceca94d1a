package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/huangsam/prodscore/core"
	"github.com/huangsam/prodscore/core/algo"
	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/internal/table"
	"github.com/huangsam/prodscore/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// applyOverrides layers the weights and bands arguments over a config copy,
// factor by factor, the same way the --weights and --band flags do.
func applyOverrides(cfg *contract.Config, request mcp.CallToolRequest) error {
	if s := request.GetString("weights", ""); s != "" {
		current := make(map[string]float64, len(cfg.Weights))
		for f, w := range cfg.Weights {
			current[string(f)] = w
		}
		weights, err := contract.CollectWeights(current, s)
		if err != nil {
			return err
		}
		cfg.Weights = weights
	}

	if overrides := request.GetStringSlice("bands", nil); len(overrides) > 0 {
		current := make(map[string][]schema.RawBand, len(cfg.Bands))
		for _, fb := range cfg.Bands {
			current[string(fb.Factor)] = fb.Bands
		}
		bands, err := contract.CollectBands(current, overrides)
		if err != nil {
			return err
		}
		cfg.Bands = bands
	}
	return nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleValidateWeights(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyOverrides(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid weights: %v", err)), nil
	}
	cfg.WeightTolerance = request.GetFloat("tolerance", cfg.WeightTolerance)
	if cfg.WeightTolerance < 0 || math.IsNaN(cfg.WeightTolerance) {
		return mcp.NewToolResultError("tolerance must be a non-negative number"), nil
	}

	report := core.GetValidationReport(cfg)
	result := struct {
		Valid     bool                               `json:"valid"`
		WeightSum schema.JSONFloat                   `json:"weight_sum"`
		Tolerance float64                            `json:"tolerance"`
		Weights   map[schema.Factor]schema.JSONFloat `json:"weights"`
		Message   string                             `json:"message,omitempty"`
	}{
		Valid:     report.WeightsValid,
		WeightSum: schema.JSONFloat(report.WeightSum),
		Tolerance: report.Tolerance,
		Weights:   make(map[schema.Factor]schema.JSONFloat, len(report.Weights)),
	}
	for f, w := range report.Weights {
		result.Weights[f] = schema.JSONFloat(w)
	}
	if !report.WeightsValid {
		result.Message = (&schema.WeightSumError{Sum: report.WeightSum, Tolerance: report.Tolerance}).Error()
	}
	return jsonResult(result)
}

func (h *toolHandler) handleValidateBands(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyOverrides(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid bands: %v", err)), nil
	}

	valid, message := algo.ValidateSubValues(cfg.Bands)
	counts := make(map[schema.Factor]int, len(cfg.Bands))
	for _, fb := range cfg.Bands {
		counts[fb.Factor] = len(fb.Bands)
	}
	return jsonResult(struct {
		Valid      bool                  `json:"valid"`
		Message    string                `json:"message,omitempty"`
		BandCounts map[schema.Factor]int `json:"band_counts"`
	}{valid, message, counts})
}

func (h *toolHandler) handleScoreCSV(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyOverrides(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}
	cfg.Sort = request.GetBool("sort", cfg.Sort)
	cfg.Explain = request.GetBool("explain", cfg.Explain)

	var t *schema.Table
	if content := request.GetString("csv_content", ""); content != "" {
		parsed, err := table.ReadString(content)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid csv_content: %v", err)), nil
		}
		t = parsed
		cfg.TablePath = "<inline>"
	} else if p := request.GetString("csv_path", ""); p != "" {
		cfg.TablePath = p
	}

	st, _, err := core.GetScoreResults(ctx, cfg, h.mgr, t)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}

	var rows []schema.ScoredRow
	if cfg.Sort {
		rows = algo.RankRows(st.Rows, cfg.ResultLimit)
	} else {
		rows = st.Rows
		if cfg.ResultLimit > 0 && len(rows) > cfg.ResultLimit {
			rows = rows[:cfg.ResultLimit]
		}
	}

	return jsonResult(struct {
		TotalRows int                  `json:"total_rows"`
		Rows      []schema.EnrichedRow `json:"rows"`
	}{len(st.Rows), schema.EnrichRows(rows)})
}

func (h *toolHandler) handleListFactors(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defs, err := core.GetFactorDefinitions(h.baseCfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid configured bands: %v", err)), nil
	}
	return jsonResult(defs)
}
