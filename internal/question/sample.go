package question

import (
	"math/rand/v2"
)

// Intn returns a uniform random integer in [0, n).
type Intn func(n int) int

// SampleDistinct picks n distinct indices out of [0, population) without
// replacement, in draw order. It returns nil when population < n.
func SampleDistinct(population, n int, intn Intn) []int {
	if n < 0 || population < n {
		return nil
	}
	if intn == nil {
		intn = rand.IntN
	}

	// Partial Fisher-Yates: the first n slots end up holding the sample.
	idx := make([]int, population)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + intn(population-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	return idx[:n:n]
}

// Shuffle returns a shuffled copy of s.
func Shuffle(s []string, intn Intn) []string {
	if intn == nil {
		intn = rand.IntN
	}

	out := make([]string, len(s))
	copy(out, s)
	for i := len(out) - 1; i > 0; i-- {
		j := intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}

	return out
}
