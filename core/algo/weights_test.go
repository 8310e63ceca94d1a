package algo

import (
	"errors"
	"math"
	"testing"

	"github.com/huangsam/prodscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWeights(t *testing.T) {
	tests := []struct {
		name      string
		weights   []float64
		tolerance float64
		expected  bool
	}{
		{"exact five equal", []float64{0.2, 0.2, 0.2, 0.2, 0.2}, ExactWeightTolerance, true},
		{"exact halves", []float64{0.5, 0.5}, ExactWeightTolerance, true},
		{"exact single", []float64{1}, ExactWeightTolerance, true},
		{"exact just under", []float64{0.999999999}, ExactWeightTolerance, false},
		{"exact just over", []float64{1.0000000001}, ExactWeightTolerance, false},
		{"exact ten tenths", []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}, ExactWeightTolerance, false},
		{"exact accumulation drift", []float64{0.3, 0.2, 0.2, 0.2, 0.1}, ExactWeightTolerance, false},
		{"default ten tenths", []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}, DefaultWeightTolerance, true},
		{"default accumulation drift", []float64{0.3, 0.2, 0.2, 0.2, 0.1}, DefaultWeightTolerance, true},
		{"default just under", []float64{0.999999999}, DefaultWeightTolerance, true},
		{"default under", []float64{0.5, 0.3}, DefaultWeightTolerance, false},
		{"default over", []float64{0.6, 0.6}, DefaultWeightTolerance, false},
		{"all unset", []float64{0, 0, 0, 0, 0}, DefaultWeightTolerance, false},
		{"empty", nil, DefaultWeightTolerance, false},
		{"nan weight", []float64{math.NaN(), 1}, DefaultWeightTolerance, false},
		{"negative tolerance", []float64{1}, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateWeights(tt.weights, tt.tolerance))
		})
	}
}

func TestWeightSum(t *testing.T) {
	assert.Equal(t, 0.0, WeightSum(nil))
	assert.Equal(t, 1.0, WeightSum([]float64{0.2, 0.2, 0.2, 0.2, 0.2}))
	assert.InDelta(t, 0.8, WeightSum([]float64{0.5, 0.3}), 1e-12)
}

func TestCheckWeights(t *testing.T) {
	t.Run("valid set", func(t *testing.T) {
		ws := schema.WeightSet{
			schema.CostFactor:        0.2,
			schema.MarginFactor:      0.2,
			schema.CACFactor:         0.2,
			schema.ReturnRateFactor:  0.2,
			schema.StockStatusFactor: 0.2,
		}
		assert.NoError(t, CheckWeights(ws, ExactWeightTolerance))
	})

	t.Run("unset factors read as zero", func(t *testing.T) {
		ws := schema.WeightSet{schema.CostFactor: 0.5, schema.MarginFactor: 0.5}
		assert.NoError(t, CheckWeights(ws, ExactWeightTolerance))
	})

	t.Run("empty set fails", func(t *testing.T) {
		err := CheckWeights(schema.WeightSet{}, DefaultWeightTolerance)
		require.Error(t, err)

		var sumErr *schema.WeightSumError
		require.True(t, errors.As(err, &sumErr))
		assert.Equal(t, 0.0, sumErr.Sum)
		assert.Equal(t, DefaultWeightTolerance, sumErr.Tolerance)
		assert.Contains(t, err.Error(), "The total of all weights must equal 1.")
	})

	t.Run("sum reported", func(t *testing.T) {
		err := CheckWeights(schema.WeightSet{schema.CostFactor: 0.6, schema.CACFactor: 0.6}, DefaultWeightTolerance)
		var sumErr *schema.WeightSumError
		require.True(t, errors.As(err, &sumErr))
		assert.InDelta(t, 1.2, sumErr.Sum, 1e-12)
	})
}
