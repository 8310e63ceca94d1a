package algo

import (
	"errors"
	"math"
	"testing"

	"github.com/huangsam/prodscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRow builds a ProductRow from factor values, mirroring what the table loader produces.
func newRow(values map[schema.Factor]float64) schema.ProductRow {
	row := schema.ProductRow{
		Fields: make(map[string]string, len(values)),
		Values: make(map[schema.Factor]float64, len(values)),
	}
	for f, v := range values {
		row.Values[f] = v
		row.Fields[string(f)] = ""
	}
	return row
}

func TestCalculateScores(t *testing.T) {
	costBand := schema.SubValueMap{
		{Factor: schema.CostFactor, Bands: []schema.Band{{Min: 0, Max: 100, Score: 50}}},
	}
	halfCost := schema.WeightSet{schema.CostFactor: 0.5}

	tests := []struct {
		name     string
		rows     []schema.ProductRow
		weights  schema.WeightSet
		bands    schema.SubValueMap
		expected []float64
	}{
		{
			name:     "value inside band",
			rows:     []schema.ProductRow{newRow(map[schema.Factor]float64{schema.CostFactor: 50})},
			weights:  halfCost,
			bands:    costBand,
			expected: []float64{25},
		},
		{
			name:     "value outside band",
			rows:     []schema.ProductRow{newRow(map[schema.Factor]float64{schema.CostFactor: 150})},
			weights:  halfCost,
			bands:    costBand,
			expected: []float64{0},
		},
		{
			name:     "inclusive bounds",
			rows:     []schema.ProductRow{newRow(map[schema.Factor]float64{schema.CostFactor: 0}), newRow(map[schema.Factor]float64{schema.CostFactor: 100})},
			weights:  halfCost,
			bands:    costBand,
			expected: []float64{25, 25},
		},
		{
			name: "first match wins",
			rows: []schema.ProductRow{newRow(map[schema.Factor]float64{schema.CostFactor: 75})},
			weights: schema.WeightSet{
				schema.CostFactor: 1,
			},
			bands: schema.SubValueMap{
				{Factor: schema.CostFactor, Bands: []schema.Band{{Min: 0, Max: 100, Score: 10}, {Min: 50, Max: 150, Score: 20}}},
			},
			expected: []float64{10},
		},
		{
			name: "end to end",
			rows: []schema.ProductRow{newRow(map[schema.Factor]float64{schema.CostFactor: 50, schema.MarginFactor: 20})},
			weights: schema.WeightSet{
				schema.CostFactor:   0.5,
				schema.MarginFactor: 0.5,
			},
			bands: schema.SubValueMap{
				{Factor: schema.CostFactor, Bands: []schema.Band{{Min: 0, Max: 100, Score: 50}}},
				{Factor: schema.MarginFactor, Bands: []schema.Band{{Min: 0, Max: 50, Score: 80}}},
			},
			expected: []float64{65},
		},
		{
			name: "empty band list contributes zero",
			rows: []schema.ProductRow{newRow(map[schema.Factor]float64{schema.CostFactor: 50, schema.MarginFactor: 20})},
			weights: schema.WeightSet{
				schema.CostFactor:   0.5,
				schema.MarginFactor: 0.5,
			},
			bands: schema.SubValueMap{
				{Factor: schema.CostFactor, Bands: []schema.Band{}},
				{Factor: schema.MarginFactor, Bands: []schema.Band{{Min: 0, Max: 50, Score: 80}}},
			},
			expected: []float64{40},
		},
		{
			name:     "missing weight reads as zero",
			rows:     []schema.ProductRow{newRow(map[schema.Factor]float64{schema.CostFactor: 50})},
			weights:  schema.WeightSet{},
			bands:    costBand,
			expected: []float64{0},
		},
		{
			name:     "min above max never matches",
			rows:     []schema.ProductRow{newRow(map[schema.Factor]float64{schema.CostFactor: 50})},
			weights:  halfCost,
			bands:    schema.SubValueMap{{Factor: schema.CostFactor, Bands: []schema.Band{{Min: 100, Max: 0, Score: 50}}}},
			expected: []float64{0},
		},
		{
			name:     "empty cell contributes zero",
			rows:     []schema.ProductRow{newRow(map[schema.Factor]float64{schema.CostFactor: math.NaN()})},
			weights:  halfCost,
			bands:    costBand,
			expected: []float64{0},
		},
		{
			name:     "no bands",
			rows:     []schema.ProductRow{newRow(nil)},
			weights:  halfCost,
			bands:    nil,
			expected: []float64{0},
		},
		{
			name:     "no rows",
			rows:     nil,
			weights:  halfCost,
			bands:    costBand,
			expected: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores, err := CalculateScores(tt.rows, tt.weights, tt.bands)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.expected, scores, 1e-9)
		})
	}
}

func TestCalculateScoresPreservesOrder(t *testing.T) {
	bands := schema.SubValueMap{
		{Factor: schema.CostFactor, Bands: []schema.Band{
			{Min: 0, Max: 9, Score: 90},
			{Min: 10, Max: 19, Score: 10},
			{Min: 20, Max: 29, Score: 50},
		}},
	}
	weights := schema.WeightSet{schema.CostFactor: 1}

	var rows []schema.ProductRow
	for _, v := range []float64{25, 5, 15, 5, 99} {
		rows = append(rows, newRow(map[schema.Factor]float64{schema.CostFactor: v}))
	}

	scores, err := CalculateScores(rows, weights, bands)
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 90, 10, 90, 0}, scores)
}

func TestCalculateScoresMissingFactor(t *testing.T) {
	rows := []schema.ProductRow{
		newRow(map[schema.Factor]float64{schema.CostFactor: 10, schema.MarginFactor: 10}),
		newRow(map[schema.Factor]float64{schema.CostFactor: 10}),
	}
	bands := schema.SubValueMap{
		{Factor: schema.CostFactor, Bands: []schema.Band{{Min: 0, Max: 100, Score: 50}}},
		{Factor: schema.MarginFactor, Bands: []schema.Band{{Min: 0, Max: 100, Score: 50}}},
	}

	scores, err := CalculateScores(rows, schema.WeightSet{schema.CostFactor: 0.5, schema.MarginFactor: 0.5}, bands)
	require.Error(t, err)
	assert.Nil(t, scores)

	var missing *schema.MissingFactorError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, schema.MarginFactor, missing.Factor)
	assert.Equal(t, 1, missing.Row)
}

func TestScoreRowBreakdown(t *testing.T) {
	row := newRow(map[schema.Factor]float64{schema.CostFactor: 50, schema.MarginFactor: 20, schema.CACFactor: 500})
	weights := schema.WeightSet{schema.CostFactor: 0.4, schema.MarginFactor: 0.4, schema.CACFactor: 0.2}
	bands := schema.SubValueMap{
		{Factor: schema.CostFactor, Bands: []schema.Band{{Min: 0, Max: 100, Score: 50}}},
		{Factor: schema.MarginFactor, Bands: []schema.Band{{Min: 0, Max: 50, Score: 80}}},
		{Factor: schema.CACFactor, Bands: []schema.Band{{Min: 0, Max: 100, Score: 100}}},
	}

	score, breakdown, err := ScoreRow(0, row, weights, bands)
	require.NoError(t, err)
	assert.InDelta(t, 52.0, score, 1e-9)
	assert.InDelta(t, 20.0, breakdown[schema.CostFactor], 1e-9)
	assert.InDelta(t, 32.0, breakdown[schema.MarginFactor], 1e-9)
	assert.Equal(t, 0.0, breakdown[schema.CACFactor])
	assert.Len(t, breakdown, 3)
}

func TestMatchBand(t *testing.T) {
	bands := []schema.Band{{Min: 0, Max: 10, Score: 1}, {Min: 5, Max: 20, Score: 2}}

	b, ok := MatchBand(bands, 7)
	require.True(t, ok)
	assert.Equal(t, 1.0, b.Score)

	b, ok = MatchBand(bands, 15)
	require.True(t, ok)
	assert.Equal(t, 2.0, b.Score)

	_, ok = MatchBand(bands, 21)
	assert.False(t, ok)

	_, ok = MatchBand(bands, math.NaN())
	assert.False(t, ok)

	_, ok = MatchBand(nil, 1)
	assert.False(t, ok)
}
