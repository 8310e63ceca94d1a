package algo

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/huangsam/prodscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSubValues(t *testing.T) {
	tests := []struct {
		name        string
		raw         schema.RawSubValueMap
		expectValid bool
		expectMsg   string
	}{
		{
			name:        "empty map",
			raw:         schema.RawSubValueMap{},
			expectValid: true,
		},
		{
			name: "all numeric",
			raw: schema.RawSubValueMap{
				{Factor: schema.CostFactor, Bands: []schema.RawBand{{Min: "0", Max: "100", Score: "50"}, {Min: "100.5", Max: "1e3", Score: "-5"}}},
				{Factor: schema.MarginFactor, Bands: []schema.RawBand{{Min: " 0 ", Max: "50", Score: "80"}}},
			},
			expectValid: true,
		},
		{
			name: "min greater than max is not checked",
			raw: schema.RawSubValueMap{
				{Factor: schema.CACFactor, Bands: []schema.RawBand{{Min: "100", Max: "0", Score: "10"}}},
			},
			expectValid: true,
		},
		{
			name: "special float spellings",
			raw: schema.RawSubValueMap{
				{Factor: schema.CostFactor, Bands: []schema.RawBand{{Min: "-inf", Max: "Infinity", Score: "nan"}}},
			},
			expectValid: true,
		},
		{
			name: "non numeric score",
			raw: schema.RawSubValueMap{
				{Factor: schema.CostFactor, Bands: []schema.RawBand{{Min: "0", Max: "100", Score: "high"}}},
			},
			expectValid: false,
			expectMsg:   "Invalid value in factor Cost. Min, Max, and Score must all be numeric.",
		},
		{
			name: "first bad factor reported",
			raw: schema.RawSubValueMap{
				{Factor: schema.CostFactor, Bands: []schema.RawBand{{Min: "0", Max: "100", Score: "50"}}},
				{Factor: schema.ReturnRateFactor, Bands: []schema.RawBand{{Min: "x", Max: "100", Score: "50"}}},
				{Factor: schema.StockStatusFactor, Bands: []schema.RawBand{{Min: "0", Max: "y", Score: "50"}}},
			},
			expectValid: false,
			expectMsg:   "Invalid value in factor Return Rate. Min, Max, and Score must all be numeric.",
		},
		{
			name: "blank field is not numeric",
			raw: schema.RawSubValueMap{
				{Factor: schema.MarginFactor, Bands: []schema.RawBand{{Min: "", Max: "100", Score: "50"}}},
			},
			expectValid: false,
			expectMsg:   "Invalid value in factor Margin. Min, Max, and Score must all be numeric.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateSubValues(tt.raw)
			assert.Equal(t, tt.expectValid, valid)
			assert.Equal(t, tt.expectMsg, msg)
		})
	}
}

func TestParseSubValues(t *testing.T) {
	t.Run("preserves order", func(t *testing.T) {
		raw := schema.RawSubValueMap{
			{Factor: schema.MarginFactor, Bands: []schema.RawBand{{Min: "50", Max: "150", Score: "20"}, {Min: "0", Max: "100", Score: "10"}}},
			{Factor: schema.CostFactor, Bands: []schema.RawBand{{Min: "0", Max: "100", Score: "50"}}},
		}
		parsed, err := ParseSubValues(raw)
		require.NoError(t, err)
		assert.Equal(t, []schema.Factor{schema.MarginFactor, schema.CostFactor}, parsed.Factors())

		bands, ok := parsed.Bands(schema.MarginFactor)
		require.True(t, ok)
		assert.Equal(t, []schema.Band{{Min: 50, Max: 150, Score: 20}, {Min: 0, Max: 100, Score: 10}}, bands)
	})

	t.Run("error carries location", func(t *testing.T) {
		raw := schema.RawSubValueMap{
			{Factor: schema.CACFactor, Bands: []schema.RawBand{{Min: "0", Max: "10", Score: "1"}, {Min: "10", Max: "ten", Score: "2"}}},
		}
		parsed, err := ParseSubValues(raw)
		require.Error(t, err)
		assert.Nil(t, parsed)

		var bandErr *schema.NonNumericBandError
		require.True(t, errors.As(err, &bandErr))
		assert.Equal(t, schema.CACFactor, bandErr.Factor)
		assert.Equal(t, 1, bandErr.Index)
		assert.Equal(t, schema.BandMax, bandErr.Field)
		assert.Equal(t, "ten", bandErr.Value)
	})
}

func TestParseBandValue(t *testing.T) {
	v, err := ParseBandValue("  12.5\t")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	v, err = ParseBandValue("1e400")
	require.NoError(t, err)
	assert.True(t, math.IsInf(v, 1))

	v, err = ParseBandValue("NaN")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))

	_, err = ParseBandValue("12abc")
	assert.Error(t, err)
}

func TestParseBandValueSpellings(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		valid    bool
	}{
		{"-nan", math.NaN(), true},
		{"+NaN", math.NaN(), true},
		{" -Infinity ", math.Inf(-1), true},
		{"+inf", math.Inf(1), true},
		{"1_000.5", 1000.5, true},
		{"1e1_0", 1e10, true},
		{"--nan", 0, false},
		{"0x1p4", 0, false},
		{"-0X10", 0, false},
		{"_1", 0, false},
		{"1__0", 0, false},
		{"1_", 0, false},
		{"1_.5", 0, false},
		{"nan_", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseBandValue(tt.input)
			if !tt.valid {
				var numErr *strconv.NumError
				if assert.ErrorAs(t, err, &numErr) {
					assert.ErrorIs(t, numErr.Err, strconv.ErrSyntax)
				}
				return
			}
			require.NoError(t, err)
			if math.IsNaN(tt.expected) {
				assert.True(t, math.IsNaN(v))
				return
			}
			assert.Equal(t, tt.expected, v)
		})
	}
}
