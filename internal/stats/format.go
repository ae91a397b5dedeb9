package stats

import (
	"math"
	"strconv"
)

// Format renders v rounded to 4 decimal places (half away from zero) with
// exactly 4 digits after the point, e.g. 0.123451 -> "0.1235". Non-finite
// values render as "NaN", "+Inf" or "-Inf".
func Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 4, 64)
	}
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		// Drop the sign of negative zero.
		r = 0
	}
	return strconv.FormatFloat(r, 'f', 4, 64)
}
