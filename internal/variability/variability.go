// Package variability measures how much independently sampled exam
// generations differ in the questions and answers they contain.
//
// A score of 0 means two generations share every identifier, 1 means none of
// the first generation's identifiers appear in the second.
package variability

// PairwiseCompare applies compare to every unordered pair (i, j) with i < j,
// outer index ascending, inner index ascending. It returns n(n-1)/2 results
// and nothing for fewer than two items.
func PairwiseCompare[T, U any](items []T, compare func(a, b T) U) []U {
	n := len(items)
	if n < 2 {
		return []U{}
	}

	out := make([]U, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, compare(items[i], items[j]))
		}
	}
	return out
}

// Between returns the number of distinct identifiers of a that are missing
// from b, divided by the raw length of a. It is not symmetric: duplicates and
// a length mismatch only ever count against a. An empty a scores 0.
func Between(a, b []string) float64 {
	if len(a) == 0 {
		return 0
	}

	missing := make(map[string]struct{}, len(a))
	for _, id := range a {
		missing[id] = struct{}{}
	}
	for _, id := range b {
		delete(missing, id)
	}

	return float64(len(missing)) / float64(len(a))
}

// Summary aggregates pairwise scores for one dimension.
type Summary struct {
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
	Min  float64 `json:"min"`
}

// Summarize computes mean, max and min in a single pass. Max starts at 0 and
// Min at 1, so an empty input reports {Mean: 0, Max: 0, Min: 1}.
func Summarize(scores []float64) Summary {
	s := Summary{Max: 0, Min: 1}
	if len(scores) == 0 {
		return s
	}

	var sum float64
	for _, v := range scores {
		sum += v
		if v > s.Max {
			s.Max = v
		}
		if v < s.Min {
			s.Min = v
		}
	}
	s.Mean = sum / float64(len(scores))
	return s
}
