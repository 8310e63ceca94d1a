package schema

import (
	"math"
	"time"
)

// RowScore is the persisted outcome of scoring one row.
type RowScore struct {
	RowIndex int
	Values   map[Factor]float64 // NaN for empty cells
	Score    float64
	Label    string
}

// RunRecord represents a row from the prodscore_runs table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	SourcePath    string
	TotalRows     int32
	ConfigParams  *string
}

// RowScoreRecord represents a row from the prodscore_row_scores table.
// Factor measurements are nil when the cell was empty or the column absent.
type RowScoreRecord struct {
	RunID       int64
	RowIndex    int32
	RunTime     time.Time
	Cost        *float64
	Margin      *float64
	CAC         *float64
	ReturnRate  *float64
	StockStatus *float64
	Score       *float64 // nil when the score was NaN or infinite
	ScoreLabel  string
}

// NullableValue returns a pointer to the measurement of a factor, or nil
// when the value is absent, came from an empty cell or is infinite.
func NullableValue(values map[Factor]float64, f Factor) *float64 {
	v, ok := values[f]
	if !ok {
		return nil
	}
	return NullableScore(v)
}

// NullableScore returns a pointer to v, or nil when v is NaN or infinite.
// Not every history backend can store non-finite doubles.
func NullableScore(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
