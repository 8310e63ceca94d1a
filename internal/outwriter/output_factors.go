package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/prodscore/core/algo"
	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/schema"
)

// PrintFactorDefinitions displays every factor with its weight and bands.
// This is a static display that does not need a table.
func PrintFactorDefinitions(weights schema.WeightSet, bands schema.SubValueMap, cfg *contract.Config) error {
	renderModel := buildFactorsRenderModel(weights, bands)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, renderModel)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFactorsCSV(w, renderModel)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFactorsText(w, renderModel)
		}, "Wrote text")
	}
}

// buildFactorsRenderModel constructs the render model in declared factor order.
func buildFactorsRenderModel(weights schema.WeightSet, bands schema.SubValueMap) *schema.FactorsRenderModel {
	factors := make([]schema.FactorDefinition, 0, len(schema.AllFactors))
	terms := make([]string, 0, len(schema.AllFactors))
	for _, f := range schema.AllFactors {
		factorBands, _ := bands.Bands(f)
		if factorBands == nil {
			factorBands = []schema.Band{}
		}
		factors = append(factors, schema.FactorDefinition{
			Factor: f,
			Key:    f.Key(),
			Weight: weights[f],
			Bands:  factorBands,
		})
		terms = append(terms, fmt.Sprintf("%s*band(%s)", formatNumber(weights[f]), f))
	}

	return &schema.FactorsRenderModel{
		Formula:   "Score = " + strings.Join(terms, " + "),
		Factors:   factors,
		WeightSum: algo.WeightSum(weights.Values()),
	}
}

// formatNumber prints a float without trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeFactorsText displays factors in human-readable text format.
func writeFactorsText(w io.Writer, model *schema.FactorsRenderModel) error {
	var sb strings.Builder
	sb.WriteString("📦 Product Scoring Factors\n")
	sb.WriteString("==========================\n\n")
	fmt.Fprintf(&sb, "%s\n", model.Formula)
	sb.WriteString("band(F) is the score of the first band of F whose [min, max] holds the row value, else 0.\n\n")

	for _, def := range model.Factors {
		fmt.Fprintf(&sb, "%s (%s): weight %s\n", def.Factor, def.Key, formatNumber(def.Weight))
		if len(def.Bands) == 0 {
			sb.WriteString("   no bands, contributes 0\n")
		}
		for _, b := range def.Bands {
			fmt.Fprintf(&sb, "   [%s, %s] -> %s\n", formatNumber(b.Min), formatNumber(b.Max), formatNumber(b.Score))
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Weight sum: %s\n", formatNumber(model.WeightSum))

	_, err := io.WriteString(w, sb.String())
	return err
}

// writeFactorsCSV writes one record per band. A factor without bands gets a
// single record with empty band fields.
func writeFactorsCSV(w io.Writer, model *schema.FactorsRenderModel) error {
	header := []string{"factor", "key", "weight", "band", "min", "max", "score"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, def := range model.Factors {
			weight := formatNumber(def.Weight)
			if len(def.Bands) == 0 {
				if err := csvWriter.Write([]string{string(def.Factor), def.Key, weight, "", "", "", ""}); err != nil {
					return err
				}
				continue
			}
			for i, b := range def.Bands {
				rec := []string{
					string(def.Factor),
					def.Key,
					weight,
					strconv.Itoa(i + 1),
					formatNumber(b.Min),
					formatNumber(b.Max),
					formatNumber(b.Score),
				}
				if err := csvWriter.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
