// Package core has the orchestration for scoring, validation and checks.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/prodscore/core/algo"
	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/internal/outwriter"
	"github.com/huangsam/prodscore/schema"
)

// ErrInvalidConfig is returned by ExecuteValidate when weights or bands are invalid.
var ErrInvalidConfig = errors.New("weights or bands are invalid")

// ExecutorFunc defines the function signature for executing table-based commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteScore validates weights and bands, scores the table and prints the results.
// It serves as the main entry point for the 'score' command.
func ExecuteScore(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	b, err := runScorePipeline(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteScores(b.Result(), cfg, b.Elapsed())
}

// ExecuteValidate prints a report on the configured weights and bands.
// The report is printed even when validation fails.
func ExecuteValidate(_ context.Context, cfg *contract.Config) error {
	report := buildValidationReport(cfg)
	if err := outwriter.NewOutWriter().WriteValidation(report, cfg); err != nil {
		return err
	}
	if !report.Valid() {
		return ErrInvalidConfig
	}
	return nil
}

// ExecuteFactors displays every factor with its weight and bands.
// This is a static display that does not require a table.
func ExecuteFactors(_ context.Context, cfg *contract.Config) error {
	bands, err := algo.ParseSubValues(cfg.Bands)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteFactors(cfg.Weights, bands, cfg)
}

// GetScoreResults scores a table without printing anything. A nil table is
// loaded from cfg.TablePath. It is used by the MCP server.
func GetScoreResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, t *schema.Table) (*schema.ScoredTable, time.Duration, error) {
	if t == nil {
		b, err := runScorePipeline(ctx, cfg, mgr)
		if err != nil {
			return nil, 0, err
		}
		return b.Result(), b.Elapsed(), nil
	}

	b := NewScoreRunBuilder(ctx, cfg, mgr).WithTable(t)
	if _, err := b.ValidateWeights(); err != nil {
		return nil, 0, err
	}
	if _, err := b.ParseBands(); err != nil {
		return nil, 0, err
	}
	if _, err := b.Score(); err != nil {
		return nil, 0, err
	}
	b.RecordHistory()
	return b.Result(), b.Elapsed(), nil
}

// GetValidationReport validates the configured weights and bands without printing anything.
func GetValidationReport(cfg *contract.Config) *schema.ValidationReport {
	return buildValidationReport(cfg)
}

// GetFactorDefinitions returns every factor with its weight and parsed bands, in declared order.
func GetFactorDefinitions(cfg *contract.Config) ([]schema.FactorDefinition, error) {
	bands, err := algo.ParseSubValues(cfg.Bands)
	if err != nil {
		return nil, err
	}
	defs := make([]schema.FactorDefinition, len(schema.AllFactors))
	for i, f := range schema.AllFactors {
		factorBands, _ := bands.Bands(f)
		if factorBands == nil {
			factorBands = []schema.Band{}
		}
		defs[i] = schema.FactorDefinition{
			Factor: f,
			Key:    f.Key(),
			Weight: cfg.Weights[f],
			Bands:  factorBands,
		}
	}
	return defs, nil
}
