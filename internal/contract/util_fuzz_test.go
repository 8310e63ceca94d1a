package contract

import (
	"slices"
	"testing"

	"github.com/huangsam/prodscore/schema"
)

// FuzzParseWeightsString fuzzes the --weights parser with arbitrary input.
func FuzzParseWeightsString(f *testing.F) {
	seeds := []string{
		"cost:0.3,margin:0.2",
		"Return Rate:0.5, stock_status:0.5",
		"cost:abc",
		"cost",
		"",
		",,,",
		"cac:1e400",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(_ *testing.T, s string) {
		_, _ = ParseWeightsString(s)
	})
}

// FuzzParseBandString fuzzes the --band parser with arbitrary input.
func FuzzParseBandString(f *testing.F) {
	seeds := []string{
		"cost:0:100:50",
		"return-rate:-1:1:10",
		"margin:::",
		"cac:1:2",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		factor, band, err := ParseBandString(s)
		if err == nil {
			if !slices.Contains(schema.AllFactors, factor) {
				t.Errorf("parsed unknown factor %q from %q", factor, s)
			}
			_ = band.Complete()
		}
	})
}
