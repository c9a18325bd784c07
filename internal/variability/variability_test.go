package variability

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(ns ...int) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = strconv.Itoa(n)
	}
	return out
}

func TestPairwiseCompareCount(t *testing.T) {
	for n := 0; n <= 7; n++ {
		items := make([]int, n)
		calls := 0
		got := PairwiseCompare(items, func(a, b int) int {
			calls++
			return a + b
		})
		assert.Len(t, got, n*(n-1)/2, "n=%d", n)
		assert.Equal(t, n*(n-1)/2, calls, "n=%d", n)
	}

	four := [][]string{ids(1, 2, 3), ids(4, 5, 6), ids(7, 8, 9), ids(10, 11, 12)}
	assert.Len(t, PairwiseCompare(four, Between), 6)
}

func TestPairwiseCompareOrder(t *testing.T) {
	type pair struct{ a, b string }

	got := PairwiseCompare([]string{"A", "B", "C", "D"}, func(a, b string) pair {
		return pair{a, b}
	})

	assert.Equal(t, []pair{
		{"A", "B"}, {"A", "C"}, {"A", "D"},
		{"B", "C"}, {"B", "D"},
		{"C", "D"},
	}, got)
}

func TestPairwiseCompareEmpty(t *testing.T) {
	assert.Empty(t, PairwiseCompare([]int{}, func(a, b int) int { return 0 }))
	assert.Empty(t, PairwiseCompare([]int{1}, func(a, b int) int { return 0 }))
	assert.NotNil(t, PairwiseCompare[int, int](nil, func(a, b int) int { return 0 }))
}

func TestBetweenDisjoint(t *testing.T) {
	sets := [][]string{ids(1, 2, 3), ids(4, 5, 6), ids(7, 8, 9)}
	scores := PairwiseCompare(sets, Between)

	require.Len(t, scores, 3)
	for _, s := range scores {
		assert.Equal(t, 1.0, s)
	}
}

func TestBetweenIdentical(t *testing.T) {
	sets := [][]string{ids(1, 2, 3), ids(1, 2, 3), ids(3, 1, 2)}
	scores := PairwiseCompare(sets, Between)

	require.Len(t, scores, 3)
	for _, s := range scores {
		assert.Equal(t, 0.0, s)
	}
}

func TestBetweenPartialOverlap(t *testing.T) {
	sets := [][]string{ids(1, 2, 3), ids(3, 4, 5), ids(5, 6, 1)}
	scores := PairwiseCompare(sets, Between)

	require.Len(t, scores, 3)
	for _, s := range scores {
		assert.InDelta(t, 2.0/3.0, s, 1e-6)
	}
}

func TestBetweenAsymmetry(t *testing.T) {
	short := ids(1, 2)
	long := ids(1, 3, 4, 5)

	assert.InDelta(t, 0.5, Between(short, long), 1e-9)
	assert.InDelta(t, 0.75, Between(long, short), 1e-9)

	// Duplicates collapse in the numerator only.
	dup := []string{"a", "a", "b", "b"}
	assert.InDelta(t, 0.5, Between(dup, []string{"c", "d", "e", "f"}), 1e-9)
	assert.Equal(t, 1.0, Between([]string{"c", "d", "e", "f"}, dup))
}

func TestBetweenEmptyLeft(t *testing.T) {
	assert.Equal(t, 0.0, Between(nil, ids(1, 2)))
	assert.Equal(t, 0.0, Between([]string{}, nil))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{Mean: 0, Max: 0, Min: 1}, Summarize(nil))
	assert.Equal(t, Summary{Mean: 0, Max: 0, Min: 1}, Summarize([]float64{}))

	s := Summarize([]float64{0.25, 0.75, 0.5})
	assert.InDelta(t, 0.5, s.Mean, 1e-9)
	assert.Equal(t, 0.75, s.Max)
	assert.Equal(t, 0.25, s.Min)

	zeros := Summarize([]float64{0, 0})
	assert.Equal(t, Summary{Mean: 0, Max: 0, Min: 0}, zeros)
}
