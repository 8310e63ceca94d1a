// Package algo holds the pure scoring logic: weight validation, band parsing
// and the weighted range-lookup score.
//
// A row's score is the sum, over every factor that has bands, of
// weight(factor) * score(first band containing the row's value). Bands are
// scanned in order and the first match wins. A value that falls in no band
// contributes 0 without any diagnostic, and a band with Min > Max never
// matches, so it also contributes 0. Empty cells are NaN and match nothing.
//
// Band fields only accept ASCII digits, so fullwidth and other non-ASCII
// decimal digits are reported as non-numeric.
package algo

import (
	"github.com/huangsam/prodscore/schema"
)

// CalculateScores returns one score per row, in row order. A row without a
// value for a banded factor aborts the whole pass with *schema.MissingFactorError.
// Factors with no weight contribute with weight 0.
func CalculateScores(rows []schema.ProductRow, weights schema.WeightSet, bands schema.SubValueMap) ([]float64, error) {
	scores := make([]float64, len(rows))
	for i, row := range rows {
		score, _, err := scoreRow(i, row, weights, bands, false)
		if err != nil {
			return nil, err
		}
		scores[i] = score
	}
	return scores, nil
}

// ScoreRow scores a single row and returns the contribution of each banded factor.
// The index is only used for error reporting.
func ScoreRow(index int, row schema.ProductRow, weights schema.WeightSet, bands schema.SubValueMap) (float64, map[schema.Factor]float64, error) {
	return scoreRow(index, row, weights, bands, true)
}

// MatchBand returns the first band containing v.
func MatchBand(bands []schema.Band, v float64) (schema.Band, bool) {
	for _, b := range bands {
		if b.Contains(v) {
			return b, true
		}
	}
	return schema.Band{}, false
}

func scoreRow(index int, row schema.ProductRow, weights schema.WeightSet, bands schema.SubValueMap, explain bool) (float64, map[schema.Factor]float64, error) {
	var breakdown map[schema.Factor]float64
	if explain {
		breakdown = make(map[schema.Factor]float64, len(bands))
	}

	score := 0.0
	for _, fb := range bands {
		v, ok := row.Value(fb.Factor)
		if !ok {
			return 0, nil, &schema.MissingFactorError{Factor: fb.Factor, Row: index}
		}

		contribution := 0.0
		if band, matched := MatchBand(fb.Bands, v); matched {
			contribution = weights[fb.Factor] * band.Score
		}
		score += contribution
		if explain {
			breakdown[fb.Factor] += contribution
		}
	}
	return score, breakdown, nil
}
