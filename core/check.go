package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/internal/outwriter"
	"github.com/huangsam/prodscore/schema"
)

// ErrCheckFailed is returned when at least one row scores below the minimum.
var ErrCheckFailed = errors.New("score check failed")

// ExecuteCheck scores the table and fails when any row scores below
// --min-score. It is meant for CI gating of product catalogs.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	b, err := runScorePipeline(ctx, cfg, mgr)
	if err != nil {
		return err
	}

	result := buildCheckResult(b.Result(), cfg.TablePath, cfg.MinScore)
	if err := outwriter.NewOutWriter().WriteCheck(result, cfg, b.Elapsed()); err != nil {
		return err
	}

	if !result.Passed {
		return fmt.Errorf("%w: %d of %d rows scored below %g", ErrCheckFailed, len(result.FailedRows), result.TotalRows, result.MinScore)
	}
	return nil
}

// buildCheckResult compares every row against the minimum score.
func buildCheckResult(st *schema.ScoredTable, sourcePath string, minScore float64) *schema.CheckResult {
	result := &schema.CheckResult{
		SourcePath: sourcePath,
		MinScore:   minScore,
		TotalRows:  len(st.Rows),
		FailedRows: []schema.CheckFailedRow{},
	}

	var nameColumn string
	if len(st.Header) > 0 {
		nameColumn = st.Header[0]
	}

	total := 0.0
	for i, row := range st.Rows {
		if i == 0 || row.Score > result.MaxScore {
			result.MaxScore = row.Score
		}
		if i == 0 || row.Score < result.LowScore {
			result.LowScore = row.Score
		}
		total += row.Score

		// NaN fails too, since it is not at least the minimum
		if !(row.Score >= minScore) {
			result.FailedRows = append(result.FailedRows, schema.CheckFailedRow{
				Index:  row.Index,
				Name:   row.Fields[nameColumn],
				Score:  row.Score,
				Fields: row.Fields,
			})
		}
	}
	if len(st.Rows) > 0 {
		result.AvgScore = total / float64(len(st.Rows))
	}

	result.Passed = len(result.FailedRows) == 0
	return result
}
