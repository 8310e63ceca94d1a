package algo

import (
	"math"

	"github.com/huangsam/prodscore/schema"
)

// Weight sum tolerances.
const (
	// ExactWeightTolerance requires the weights to sum to exactly 1.0 in float64.
	ExactWeightTolerance = 0.0

	// DefaultWeightTolerance absorbs float64 accumulation error such as ten weights of 0.1.
	DefaultWeightTolerance = 1e-6
)

// WeightSum adds the weights in the given order, starting from 0.
func WeightSum(weights []float64) float64 {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	return sum
}

// ValidateWeights reports whether the weights sum to 1.0 within tolerance.
// With ExactWeightTolerance, 0.999999999 and 1.0000000001 both fail.
// A NaN weight or a negative tolerance never validates.
func ValidateWeights(weights []float64, tolerance float64) bool {
	return math.Abs(WeightSum(weights)-1.0) <= tolerance
}

// CheckWeights validates a WeightSet in declared factor order, treating
// unset factors as 0.
func CheckWeights(ws schema.WeightSet, tolerance float64) error {
	values := ws.Values()
	if ValidateWeights(values, tolerance) {
		return nil
	}
	return &schema.WeightSumError{Sum: WeightSum(values), Tolerance: tolerance}
}
