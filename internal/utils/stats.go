package utils

import "math"

// Round rounds v to the given number of decimals, ties to even. Ratios are
// compared against tables produced with the same rule, so a half-away rule
// would shift values such as 0.125 into a different facet.
func Round(v float64, decimals int) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	scale := math.Pow(10, float64(decimals))
	return math.RoundToEven(v*scale) / scale
}
