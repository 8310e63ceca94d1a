// Package schema has models and constants shared by all parts of prodscore.
package schema

import (
	"math"
	"slices"
)

// WeightSet maps each factor to its weight in [0,1].
// Factors without an entry read as 0.
type WeightSet map[Factor]float64

// Values returns the weights in AllFactors order, with unset factors as 0.
func (ws WeightSet) Values() []float64 {
	values := make([]float64, len(AllFactors))
	for i, f := range AllFactors {
		values[i] = ws[f]
	}
	return values
}

// Clone returns a copy of the weight set.
func (ws WeightSet) Clone() WeightSet {
	clone := make(WeightSet, len(ws))
	for k, v := range ws {
		clone[k] = v
	}
	return clone
}

// Band maps the inclusive range [Min, Max] of a factor value to Score.
type Band struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Score float64 `json:"score"`
}

// Contains reports whether v falls within the band, inclusive on both ends.
// NaN never falls within a band.
func (b Band) Contains(v float64) bool {
	return b.Min <= v && v <= b.Max
}

// RawBand is a band as collected from user input, before numeric validation.
type RawBand struct {
	Min   string `json:"min" mapstructure:"min" yaml:"min"`
	Max   string `json:"max" mapstructure:"max" yaml:"max"`
	Score string `json:"score" mapstructure:"score" yaml:"score"`
}

// Complete reports whether all three fields were filled in.
func (rb RawBand) Complete() bool {
	return rb.Min != "" && rb.Max != "" && rb.Score != ""
}

// FactorBands holds the ordered bands of one factor.
type FactorBands struct {
	Factor Factor `json:"factor"`
	Bands  []Band `json:"bands"`
}

// SubValueMap holds the bands of every factor, in declared factor order.
type SubValueMap []FactorBands

// Factors returns the factors in declared order.
func (m SubValueMap) Factors() []Factor {
	factors := make([]Factor, len(m))
	for i, fb := range m {
		factors[i] = fb.Factor
	}
	return factors
}

// Bands returns the bands for a factor and whether the factor is present.
func (m SubValueMap) Bands(f Factor) ([]Band, bool) {
	for _, fb := range m {
		if fb.Factor == f {
			return fb.Bands, true
		}
	}
	return nil, false
}

// RawFactorBands holds the ordered raw bands of one factor.
type RawFactorBands struct {
	Factor Factor    `json:"factor"`
	Bands  []RawBand `json:"bands"`
}

// RawSubValueMap is a SubValueMap before numeric validation.
type RawSubValueMap []RawFactorBands

// Bands returns the raw bands for a factor and whether the factor is present.
func (m RawSubValueMap) Bands(f Factor) ([]RawBand, bool) {
	for _, fb := range m {
		if fb.Factor == f {
			return fb.Bands, true
		}
	}
	return nil, false
}

// ProductRow is one input record.
type ProductRow struct {
	Fields map[string]string  // Raw text of every column, keyed by header
	Values map[Factor]float64 // Parsed factor measurements; NaN for empty cells
}

// Value returns the measurement for a factor and whether the row carries it.
func (r ProductRow) Value(f Factor) (float64, bool) {
	v, ok := r.Values[f]
	return v, ok
}

// Table is a loaded tabular dataset.
type Table struct {
	Header []string
	Rows   []ProductRow
}

// HasColumn reports whether the table has a column with the given header.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

// ScoredRow is a row together with its composite score.
type ScoredRow struct {
	Index     int                `json:"index"` // Zero-based position in the input table
	Score     float64            `json:"score"`
	Fields    map[string]string  `json:"fields"`
	Values    map[Factor]float64 `json:"-"` // Parsed measurements; may hold NaN
	Breakdown map[Factor]float64 `json:"breakdown,omitempty"`
}

// ScoredTable is the input table plus one score per row.
type ScoredTable struct {
	Header []string    `json:"header"`
	Rows   []ScoredRow `json:"rows"`
}

// OutputHeader returns the input header with the Score column appended.
// An input column already named Score keeps its position and is overwritten.
func (st *ScoredTable) OutputHeader() []string {
	header := make([]string, 0, len(st.Header)+1)
	header = append(header, st.Header...)
	if slices.Contains(st.Header, ScoreColumn) {
		return header
	}
	return append(header, ScoreColumn)
}

// Record returns the output cells of a row, aligned with OutputHeader.
func (st *ScoredTable) Record(row ScoredRow, fmtScore func(float64) string) []string {
	header := st.OutputHeader()
	record := make([]string, len(header))
	for i, h := range header {
		if h == ScoreColumn {
			record[i] = fmtScore(row.Score)
			continue
		}
		record[i] = row.Fields[h]
	}
	return record
}

// Scores returns the score of every row in table order.
func (st *ScoredTable) Scores() []float64 {
	scores := make([]float64, len(st.Rows))
	for i, r := range st.Rows {
		scores[i] = r.Score
	}
	return scores
}

// IsEmptyMeasurement reports whether a factor value came from an empty cell.
func IsEmptyMeasurement(v float64) bool {
	return math.IsNaN(v)
}
