package stats

import "sort"

// Rank returns the 1-based fractional ranks of values. Tied values receive
// the mean of the ranks they jointly occupy, so three values tied across
// ranks 4, 5 and 6 all get 5. The output is index-aligned with the input and
// always sums to n(n+1)/2.
func Rank(values []float64) []float64 {
	n := len(values)
	ranks := make([]float64, n)
	if n == 0 {
		return ranks
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return values[order[i]] < values[order[j]]
	})

	for start := 0; start < n; {
		end := start + 1
		for end < n && values[order[end]] == values[order[start]] {
			end++
		}
		// Positions start..end-1 hold ranks start+1..end.
		avg := float64(start+1+end) / 2
		for k := start; k < end; k++ {
			ranks[order[k]] = avg
		}
		start = end
	}
	return ranks
}
