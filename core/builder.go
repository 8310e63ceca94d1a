package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/prodscore/core/algo"
	"github.com/huangsam/prodscore/internal/contract"
	"github.com/huangsam/prodscore/internal/table"
	"github.com/huangsam/prodscore/schema"
)

// ErrNoTable is returned when no CSV path was given.
var ErrNoTable = errors.New("a CSV path is required. Pass it as an argument or set 'table' in the config file")

// ScoreRunBuilder runs the scoring pipeline step by step:
// weights, bands, table, scores and history.
type ScoreRunBuilder struct {
	ctx   context.Context
	cfg   *contract.Config
	mgr   contract.CacheManager
	start time.Time

	bands  schema.SubValueMap
	table  *schema.Table
	scored *schema.ScoredTable
}

// NewScoreRunBuilder creates a new builder for one scoring run.
func NewScoreRunBuilder(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) *ScoreRunBuilder {
	return &ScoreRunBuilder{
		ctx:   ctx,
		cfg:   cfg,
		mgr:   mgr,
		start: time.Now(),
	}
}

// ValidateWeights checks that the configured weights sum to 1.
func (b *ScoreRunBuilder) ValidateWeights() (*ScoreRunBuilder, error) {
	if err := algo.CheckWeights(b.cfg.Weights, b.cfg.WeightTolerance); err != nil {
		return nil, err
	}
	return b, nil
}

// ParseBands parses the configured bands into numbers.
func (b *ScoreRunBuilder) ParseBands() (*ScoreRunBuilder, error) {
	bands, err := algo.ParseSubValues(b.cfg.Bands)
	if err != nil {
		return nil, err
	}
	b.bands = bands
	return b, nil
}

// LoadTable reads the CSV table named by the config.
func (b *ScoreRunBuilder) LoadTable() (*ScoreRunBuilder, error) {
	if b.cfg.TablePath == "" {
		return nil, ErrNoTable
	}
	t, err := table.Load(b.cfg.TablePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", b.cfg.TablePath, err)
	}
	contract.Logger.WithField("rows", len(t.Rows)).Debugf("Loaded %s", b.cfg.TablePath)
	b.table = t
	return b, nil
}

// WithTable uses an already loaded table instead of reading one from disk.
func (b *ScoreRunBuilder) WithTable(t *schema.Table) *ScoreRunBuilder {
	b.table = t
	return b
}

// Score computes one score per row. Plain scores come from the cache when
// possible; --explain always recomputes to get the per-factor breakdown.
func (b *ScoreRunBuilder) Score() (*ScoreRunBuilder, error) {
	if err := b.ctx.Err(); err != nil {
		return nil, err
	}

	st := &schema.ScoredTable{
		Header: b.table.Header,
		Rows:   make([]schema.ScoredRow, len(b.table.Rows)),
	}

	if b.cfg.Explain {
		for i, row := range b.table.Rows {
			score, breakdown, err := algo.ScoreRow(i, row, b.cfg.Weights, b.bands)
			if err != nil {
				return nil, err
			}
			st.Rows[i] = newScoredRow(i, row, score)
			st.Rows[i].Breakdown = breakdown
		}
	} else {
		scores, err := cachedScores(b.mgr, b.table, b.cfg.Weights, b.bands)
		if err != nil {
			return nil, err
		}
		for i, row := range b.table.Rows {
			st.Rows[i] = newScoredRow(i, row, scores[i])
		}
	}

	b.scored = st
	return b, nil
}

// RecordHistory stores the run when history tracking is enabled.
// Failures are logged and never fail the run.
func (b *ScoreRunBuilder) RecordHistory() *ScoreRunBuilder {
	recordRun(b.mgr, b.cfg, b.scored, b.start)
	return b
}

// Result returns the scored table.
func (b *ScoreRunBuilder) Result() *schema.ScoredTable {
	return b.scored
}

// Bands returns the parsed bands.
func (b *ScoreRunBuilder) Bands() schema.SubValueMap {
	return b.bands
}

// Elapsed returns the time since the builder was created.
func (b *ScoreRunBuilder) Elapsed() time.Duration {
	return time.Since(b.start)
}

func newScoredRow(index int, row schema.ProductRow, score float64) schema.ScoredRow {
	return schema.ScoredRow{
		Index:  index,
		Score:  score,
		Fields: row.Fields,
		Values: row.Values,
	}
}

// runScorePipeline runs every step up to and including history recording.
func runScorePipeline(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*ScoreRunBuilder, error) {
	b := NewScoreRunBuilder(ctx, cfg, mgr)
	if _, err := b.ValidateWeights(); err != nil {
		return nil, err
	}
	if _, err := b.ParseBands(); err != nil {
		return nil, err
	}
	if _, err := b.LoadTable(); err != nil {
		return nil, err
	}
	if _, err := b.Score(); err != nil {
		return nil, err
	}
	return b.RecordHistory(), nil
}
