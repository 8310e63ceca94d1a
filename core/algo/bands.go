package algo

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/huangsam/prodscore/schema"
)

// ParseBandValue parses one band field as a decimal number. Surrounding
// whitespace is ignored, and NaN, Inf and out-of-range magnitudes are
// accepted as float64 values. A sign may precede nan, single underscores
// may separate digits, and hexadecimal floats are rejected.
func ParseBandValue(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	unsigned := strings.TrimLeft(trimmed, "+-")
	if len(trimmed)-len(unsigned) <= 1 {
		if strings.EqualFold(unsigned, "nan") {
			return math.NaN(), nil
		}
		if strings.HasPrefix(unsigned, "0x") || strings.HasPrefix(unsigned, "0X") {
			return 0, syntaxError(s)
		}
	}
	if strings.Contains(trimmed, "_") {
		if !validUnderscores(trimmed) {
			return 0, syntaxError(s)
		}
		trimmed = strings.ReplaceAll(trimmed, "_", "")
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil && errors.Is(err, strconv.ErrRange) {
		// ParseFloat already returns the signed Inf or zero
		return v, nil
	}
	return v, err
}

// validUnderscores reports whether every underscore sits between two digits.
func validUnderscores(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func syntaxError(s string) error {
	return &strconv.NumError{Func: "ParseFloat", Num: s, Err: strconv.ErrSyntax}
}

// ParseSubValues converts raw bands into numeric bands, preserving factor and
// band order. It stops at the first field that is not numeric and reports it
// as a *schema.NonNumericBandError; later factors are never inspected.
// Band ordering, overlap and min <= max are not checked.
func ParseSubValues(raw schema.RawSubValueMap) (schema.SubValueMap, error) {
	parsed := make(schema.SubValueMap, 0, len(raw))
	for _, rfb := range raw {
		bands := make([]schema.Band, 0, len(rfb.Bands))
		for i, rb := range rfb.Bands {
			band, err := parseBand(rfb.Factor, i, rb)
			if err != nil {
				return nil, err
			}
			bands = append(bands, band)
		}
		parsed = append(parsed, schema.FactorBands{Factor: rfb.Factor, Bands: bands})
	}
	return parsed, nil
}

// ValidateSubValues reports whether every band field parses as a number.
// On failure it returns the user-facing message for the first offending factor.
func ValidateSubValues(raw schema.RawSubValueMap) (bool, string) {
	if _, err := ParseSubValues(raw); err != nil {
		return false, err.Error()
	}
	return true, ""
}

func parseBand(factor schema.Factor, index int, rb schema.RawBand) (schema.Band, error) {
	names := [3]schema.BandField{schema.BandMin, schema.BandMax, schema.BandScore}
	raws := [3]string{rb.Min, rb.Max, rb.Score}

	var values [3]float64
	for i, raw := range raws {
		v, err := ParseBandValue(raw)
		if err != nil {
			return schema.Band{}, &schema.NonNumericBandError{
				Factor: factor,
				Index:  index,
				Field:  names[i],
				Value:  raw,
			}
		}
		values[i] = v
	}
	return schema.Band{Min: values[0], Max: values[1], Score: values[2]}, nil
}
