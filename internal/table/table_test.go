package table

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/prodscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadString(t *testing.T) {
	data := "Product,Cost,Margin,CAC,Return Rate,Stock Status\n" +
		"Widget, 50 ,20,10,0.05,1\n" +
		"Gadget,150,,5,0.2,0\n"

	tbl, err := ReadString(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Product", "Cost", "Margin", "CAC", "Return Rate", "Stock Status"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)

	first := tbl.Rows[0]
	assert.Equal(t, "Widget", first.Fields["Product"])
	assert.Equal(t, "50", first.Fields["Cost"])
	assert.Equal(t, 50.0, first.Values[schema.CostFactor])
	assert.Equal(t, 0.05, first.Values[schema.ReturnRateFactor])
	assert.Len(t, first.Values, 5)

	second := tbl.Rows[1]
	margin, ok := second.Value(schema.MarginFactor)
	require.True(t, ok)
	assert.True(t, math.IsNaN(margin))
	assert.Equal(t, "", second.Fields["Margin"])
}

func TestReadStringMissingFactorColumns(t *testing.T) {
	tbl, err := ReadString("Name,Cost\nA,1\n")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)

	_, ok := tbl.Rows[0].Value(schema.MarginFactor)
	assert.False(t, ok)
	assert.True(t, tbl.HasColumn("Cost"))
	assert.False(t, tbl.HasColumn("Margin"))
}

func TestReadStringHeaderOnly(t *testing.T) {
	tbl, err := ReadString("Cost,Margin\n")
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)
}

func TestReadStringFactorNamesAreExact(t *testing.T) {
	tbl, err := ReadString("cost,Return_Rate\nabc,def\n")
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows[0].Values)
	assert.Equal(t, "abc", tbl.Rows[0].Fields["cost"])
}

func TestReadStringByteOrderMark(t *testing.T) {
	tbl, err := ReadString("\ufeffCost,Margin\n1,2\n")
	require.NoError(t, err)
	assert.Equal(t, "Cost", tbl.Header[0])
	assert.Equal(t, 1.0, tbl.Rows[0].Values[schema.CostFactor])
}

func TestReadStringErrors(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		expectLine int
		expectCol  string
		contains   string
	}{
		{
			name:       "non numeric factor cell",
			data:       "Name,Cost\nA,1\nB,cheap\n",
			expectLine: 3,
			expectCol:  "Cost",
			contains:   `line 3, column "Cost": invalid value "cheap"`,
		},
		{
			name:       "ragged row",
			data:       "Name,Cost\nA,1,extra\n",
			expectLine: 2,
			contains:   "wrong number of fields",
		},
		{
			name:       "duplicate header",
			data:       "Cost,Cost\n1,2\n",
			expectLine: 1,
			contains:   `duplicate column "Cost"`,
		},
		{
			name:       "empty header",
			data:       "Name,,Cost\n1,2,3\n",
			expectLine: 1,
			contains:   "column 2 has an empty header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := ReadString(tt.data)
			require.Error(t, err)
			assert.Nil(t, tbl)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.expectLine, parseErr.Line)
			assert.Equal(t, tt.expectCol, parseErr.Column)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestReadStringEmpty(t *testing.T) {
	_, err := ReadString("")
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte("Cost,Margin\n1,2\n3,4\n"), 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
