// Package stats is the numeric engine behind the analytics API: correlation
// between two gauge series with a significance test, and descriptive
// statistics over a single series that may contain sensor gaps.
//
// Every function is pure. Nothing here holds state, so concurrent callers
// need no coordination.
//
// # Correlation
//
// [Pearson] measures linear association. [Spearman] applies Pearson to the
// fractional ranks produced by [Rank], where tied values share the average of
// the ranks they occupy.
//
// Both report a two-sided p-value derived from the Student's t statistic
//
//	t = r * sqrt((n-2) / (1 - r²))
//
// with n-2 degrees of freedom. The t CDF is evaluated through the regularized
// incomplete beta function Iₓ(a, b), which in turn uses a Lanczos log-gamma and
// a continued fraction solved with the modified Lentz method (Numerical
// Recipes §6.4).
//
// # Boundary conditions
//
// Degenerate inputs are reported as errors instead of NaN or Inf values:
//
//	ErrLengthMismatch        the two series differ in length
//	ErrInsufficientSamples   fewer than 3 pairs (no positive degrees of freedom)
//	ErrUndefinedCorrelation  a series has zero variance
//
// When |r| is within floating-point noise of 1 the denominator 1 - r² is
// floored at 1e-16, which yields a very large but finite t and a p-value of 0.
//
// # Descriptive statistics
//
// [Summarize] skips absent (nil or NaN) values and reports mean, population
// standard deviation (divisor n), min, max and the 25th/50th/75th percentiles
// using linear interpolation between closest ranks.
package stats
