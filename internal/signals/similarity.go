package signals

import "strings"

// #region similarity

const (
	editWeight    = 0.6
	overlapWeight = 0.4
)

// Similarity scores two strings in [0, 1] as a blend of normalized
// Levenshtein closeness and word-set Jaccard overlap. Two empty strings are
// identical. Symmetric in its arguments.
func Similarity(a, b string) float64 {
	la := []rune(strings.ToLower(a))
	lb := []rune(strings.ToLower(b))

	longest := max(len(la), len(lb), 1)
	distance := float64(levenshtein(la, lb)) / float64(longest)

	sim := editWeight*(1-distance) + overlapWeight*WordOverlap(a, b)
	return Bounded01(sim, 0)
}

// WordOverlap is the Jaccard index of the lowercase token sets of a and b.
// Both empty gives 1, exactly one empty gives 0.
func WordOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	switch {
	case len(setA) == 0 && len(setB) == 0:
		return 1
	case len(setA) == 0 || len(setB) == 0:
		return 0
	}

	var shared int
	for t := range setA {
		if _, ok := setB[t]; ok {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	return float64(shared) / float64(union)
}

// levenshtein computes the edit distance between two rune slices using a
// rolling two-row matrix.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// #endregion similarity
