package core

import (
	"github.com/huangsam/prodscore/core/algo"
	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/schema"
)

// buildValidationReport runs both validators on the configured weights and bands.
func buildValidationReport(cfg *contract.Config) *schema.ValidationReport {
	values := cfg.Weights.Values()
	report := &schema.ValidationReport{
		WeightsValid: algo.ValidateWeights(values, cfg.WeightTolerance),
		WeightSum:    algo.WeightSum(values),
		Tolerance:    cfg.WeightTolerance,
		Weights:      make(map[schema.Factor]float64, len(schema.AllFactors)),
		BandCounts:   make(map[schema.Factor]int, len(cfg.Bands)),
	}
	for i, f := range schema.AllFactors {
		report.Weights[f] = values[i]
	}

	report.BandsValid, report.BandsMessage = algo.ValidateSubValues(cfg.Bands)
	for _, fb := range cfg.Bands {
		report.BandCounts[fb.Factor] = len(fb.Bands)
	}
	return report
}
