// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteScores prints the scored table using the configured output format.
func (ow *OutWriter) WriteScores(st *schema.ScoredTable, cfg *contract.Config, duration time.Duration) error {
	return WriteScoredTable(st, cfg, duration)
}

// WriteValidation prints a weights and bands validation report.
func (ow *OutWriter) WriteValidation(report *schema.ValidationReport, cfg *contract.Config) error {
	return PrintValidationReport(report, cfg)
}

// WriteFactors prints factor definitions using the configured output format.
func (ow *OutWriter) WriteFactors(weights schema.WeightSet, bands schema.SubValueMap, cfg *contract.Config) error {
	return PrintFactorDefinitions(weights, bands, cfg)
}

// WriteCheck prints a score check result to stdout.
func (ow *OutWriter) WriteCheck(result *schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	return PrintCheckResult(os.Stdout, result, cfg, duration)
}
