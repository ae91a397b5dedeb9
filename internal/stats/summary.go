package stats

import (
	"math"
	"sort"
)

// Summary holds descriptive statistics of the valid entries of a series.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	Max   float64 `json:"max"`
}

// Summarize computes a Summary over values, skipping nil and NaN entries.
// It reports false when no valid entry remains.
func Summarize(values []*float64) (Summary, bool) {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if v == nil || math.IsNaN(*v) {
			continue
		}
		valid = append(valid, *v)
	}
	if len(valid) == 0 {
		return Summary{}, false
	}

	n := float64(len(valid))
	m := mean(valid)
	var ss float64
	for _, v := range valid {
		d := v - m
		ss += d * d
	}

	sort.Float64s(valid)
	return Summary{
		Count: len(valid),
		Mean:  m,
		Std:   math.Sqrt(ss / n),
		Min:   valid[0],
		P25:   Percentile(valid, 0.25),
		P50:   Percentile(valid, 0.5),
		P75:   Percentile(valid, 0.75),
		Max:   valid[len(valid)-1],
	}, true
}

// Percentile returns the p-quantile (0 <= p <= 1) of an ascending slice by
// linear interpolation between the two closest ranks. sorted must not be
// empty.
func Percentile(sorted []float64, p float64) float64 {
	idx := float64(len(sorted)-1) * p
	lo := math.Floor(idx)
	hi := math.Ceil(idx)
	if lo == hi {
		return sorted[int(lo)]
	}
	frac := idx - lo
	return sorted[int(lo)]*(1-frac) + sorted[int(hi)]*frac
}
