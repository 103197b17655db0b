package signals

import (
	"math"
	"strings"
)

// #region helpers

// Tokenize splits text into lowercase whitespace-delimited tokens.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// tokenSet returns the distinct tokens of text.
func tokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Clamp01 restricts v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Finite returns v, or fallback when v is NaN or infinite.
func Finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// Bounded01 sanitizes and clamps v into [0, 1].
func Bounded01(v, fallback float64) float64 {
	return Clamp01(Finite(v, fallback))
}

// #endregion helpers
