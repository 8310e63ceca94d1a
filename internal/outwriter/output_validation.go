package outwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/schema"
)

// PrintValidationReport displays the outcome of validating weights and bands.
func PrintValidationReport(report *schema.ValidationReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeValidationText(w, report)
		}, "Wrote text")
	}
}

func writeValidationText(w io.Writer, report *schema.ValidationReport) error {
	var sb strings.Builder

	weightParts := make([]string, 0, len(schema.AllFactors))
	for _, f := range schema.AllFactors {
		weightParts = append(weightParts, fmt.Sprintf("%s %s", f, formatNumber(report.Weights[f])))
	}
	if report.WeightsValid {
		fmt.Fprintf(&sb, "✅ Weights: sum %s (tolerance %s)\n", formatNumber(report.WeightSum), formatNumber(report.Tolerance))
	} else {
		sumErr := &schema.WeightSumError{Sum: report.WeightSum, Tolerance: report.Tolerance}
		fmt.Fprintf(&sb, "❌ Weights: %s\n", sumErr.Error())
	}
	fmt.Fprintf(&sb, "   %s\n", strings.Join(weightParts, ", "))

	if report.BandsValid {
		bandParts := make([]string, 0, len(schema.AllFactors))
		for _, f := range schema.AllFactors {
			bandParts = append(bandParts, fmt.Sprintf("%s %d", f, report.BandCounts[f]))
		}
		fmt.Fprintf(&sb, "✅ Bands: %s\n", strings.Join(bandParts, ", "))
	} else {
		fmt.Fprintf(&sb, "❌ Bands: %s\n", report.BandsMessage)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
