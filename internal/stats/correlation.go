package stats

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// MinSamples is the smallest number of pairs for which a correlation p-value
// is defined (n-2 degrees of freedom must be positive).
const MinSamples = 3

var (
	// ErrLengthMismatch is returned when the two series differ in length.
	ErrLengthMismatch = errors.New("series lengths differ")
	// ErrInsufficientSamples is returned when fewer than MinSamples pairs are supplied.
	ErrInsufficientSamples = errors.New("not enough samples to compute correlation")
	// ErrUndefinedCorrelation is returned when either series has zero variance.
	ErrUndefinedCorrelation = errors.New("correlation undefined for constant series")
)

// Method names a correlation coefficient.
type Method string

const (
	MethodPearson  Method = "pearson"
	MethodSpearman Method = "spearman"
)

// ParseMethod accepts "pearson" or "spearman" (case-insensitive). An empty
// string selects Pearson.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(MethodPearson):
		return MethodPearson, nil
	case string(MethodSpearman):
		return MethodSpearman, nil
	default:
		return "", fmt.Errorf("unknown correlation method %q", s)
	}
}

// Correlation is the outcome of a single correlation test.
type Correlation struct {
	Method      Method  `json:"method"`
	Coefficient float64 `json:"coefficient"`
	PValue      float64 `json:"p_value"`
	N           int     `json:"n"`
}

// Pearson returns the product-moment correlation of x and y with its
// two-sided p-value.
func Pearson(x, y []float64) (Correlation, error) {
	r, err := pearsonCoefficient(x, y)
	if err != nil {
		return Correlation{}, err
	}
	p, err := TwoSidedPValue(r, len(x))
	if err != nil {
		return Correlation{}, err
	}
	return Correlation{Method: MethodPearson, Coefficient: r, PValue: p, N: len(x)}, nil
}

// Spearman returns the rank correlation of x and y: Pearson's coefficient
// over the tie-averaged ranks of each series.
func Spearman(x, y []float64) (Correlation, error) {
	if err := checkPairs(x, y); err != nil {
		return Correlation{}, err
	}
	rho, err := pearsonCoefficient(Rank(x), Rank(y))
	if err != nil {
		return Correlation{}, err
	}
	p, err := TwoSidedPValue(rho, len(x))
	if err != nil {
		return Correlation{}, err
	}
	return Correlation{Method: MethodSpearman, Coefficient: rho, PValue: p, N: len(x)}, nil
}

// Correlate dispatches to Pearson or Spearman.
func Correlate(method Method, x, y []float64) (Correlation, error) {
	switch method {
	case MethodPearson:
		return Pearson(x, y)
	case MethodSpearman:
		return Spearman(x, y)
	default:
		return Correlation{}, fmt.Errorf("unknown correlation method %q", method)
	}
}

func checkPairs(x, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) < MinSamples {
		return fmt.Errorf("n=%d: %w", len(x), ErrInsufficientSamples)
	}
	return nil
}

func pearsonCoefficient(x, y []float64) (float64, error) {
	if err := checkPairs(x, y); err != nil {
		return 0, err
	}

	meanX, meanY := mean(x), mean(y)
	var sxy, sxx, syy float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, ErrUndefinedCorrelation
	}

	r := sxy / math.Sqrt(sxx*syy)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, ErrUndefinedCorrelation
	}
	return r, nil
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
