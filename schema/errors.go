package schema

import "fmt"

// WeightSumError reports that the weights do not sum to 1.
type WeightSumError struct {
	Sum       float64
	Tolerance float64
}

func (e *WeightSumError) Error() string {
	return fmt.Sprintf("The total of all weights must equal 1. Please re-enter the values. (got %.6g)", e.Sum)
}

// NonNumericBandError reports the first band field that failed numeric parsing.
// The message names the factor only, matching what users see in the report.
type NonNumericBandError struct {
	Factor Factor
	Index  int       // Zero-based band position within the factor
	Field  BandField // Offending field
	Value  string
}

func (e *NonNumericBandError) Error() string {
	return fmt.Sprintf("Invalid value in factor %s. Min, Max, and Score must all be numeric.", e.Factor)
}

// MissingFactorError reports a row without a column for a banded factor.
type MissingFactorError struct {
	Factor Factor
	Row    int // Zero-based row index
}

func (e *MissingFactorError) Error() string {
	return fmt.Sprintf("row %d has no value for factor %q", e.Row+1, e.Factor)
}
