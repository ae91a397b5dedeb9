package stats

import (
	"fmt"
	"math"
)

// minOneMinusRSquared floors 1 - r² so that |r| ≈ 1 produces a huge but
// finite t statistic instead of a division by zero or a negative radicand.
const minOneMinusRSquared = 1e-16

// StudentTCDF returns P(T <= t) for a Student's t distribution with df
// degrees of freedom.
func StudentTCDF(t, df float64) float64 {
	if t == 0 {
		return 0.5
	}
	ib := RegularizedIncompleteBeta(df/(df+t*t), df/2, 0.5)
	if t > 0 {
		return 1 - ib/2
	}
	return ib / 2
}

// TwoSidedPValue converts a correlation coefficient r over n pairs into a
// two-sided p-value under the null hypothesis of no correlation. It returns
// ErrInsufficientSamples when n < 3.
func TwoSidedPValue(r float64, n int) (float64, error) {
	if n < MinSamples {
		return 0, fmt.Errorf("p-value for n=%d: %w", n, ErrInsufficientSamples)
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/math.Max(minOneMinusRSquared, 1-r*r))
	return 2 * (1 - StudentTCDF(math.Abs(t), df)), nil
}
