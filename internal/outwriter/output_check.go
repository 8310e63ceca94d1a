package outwriter

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/schema"
)

const maxFailuresShown = 5

// PrintCheckResult prints the check result in a concise format suitable for CI/CD.
func PrintCheckResult(w io.Writer, result *schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	if cfg.Output == schema.JSONOut {
		return writeJSON(w, result)
	}

	fmtFloat, _ := createFormatters(cfg.Precision)
	if err := printCheckHeader(w, result, fmtFloat, duration); err != nil {
		return err
	}
	if result.Passed {
		return printCheckSuccess(w, result, fmtFloat)
	}
	return printCheckFailure(w, result, fmtFloat)
}

// printCheckHeader prints the common header information for check results.
func printCheckHeader(w io.Writer, result *schema.CheckResult, fmtFloat func(float64) string, duration time.Duration) error {
	if _, err := fmt.Fprintln(w, "Score Check Results:"); err != nil {
		return err
	}

	labels := []string{"Source:", "Min score:"}
	values := []any{result.SourcePath, fmtFloat(result.MinScore)}

	maxLabelLen := 0
	for _, label := range labels {
		maxLabelLen = max(maxLabelLen, len(label))
	}
	for i, label := range labels {
		if _, err := fmt.Fprintf(w, "  %-*s %v\n", maxLabelLen+1, label, values[i]); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nChecked %d rows in %v\n\n", result.TotalRows, duration)
	return err
}

// printCheckSuccess prints the success case output.
func printCheckSuccess(w io.Writer, result *schema.CheckResult, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "✅ All rows scored at least %s\n\n", fmtFloat(result.MinScore)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Scores observed: max=%s, low=%s, avg=%s\n",
		fmtFloat(result.MaxScore), fmtFloat(result.LowScore), fmtFloat(result.AvgScore))
	return err
}

// printCheckFailure prints the lowest scoring offenders first.
func printCheckFailure(w io.Writer, result *schema.CheckResult, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "❌ Score check failed: %d of %d rows scored below %s\n\n",
		len(result.FailedRows), result.TotalRows, fmtFloat(result.MinScore)); err != nil {
		return err
	}

	failed := make([]schema.CheckFailedRow, len(result.FailedRows))
	copy(failed, result.FailedRows)
	sort.SliceStable(failed, func(i, j int) bool {
		return failed[i].Score < failed[j].Score
	})

	for i, row := range failed {
		if i >= maxFailuresShown {
			if _, err := fmt.Fprintf(w, "  ... and %d more\n", len(failed)-maxFailuresShown); err != nil {
				return err
			}
			break
		}
		name := ""
		if row.Name != "" {
			name = " " + row.Name
		}
		if _, err := fmt.Fprintf(w, "  Row %d%s: %s (%s)\n", row.Index+1, name, fmtFloat(row.Score), schema.GetPlainLabel(row.Score)); err != nil {
			return err
		}
	}
	return nil
}
