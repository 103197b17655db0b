package signals

import (
	"strings"
	"unicode/utf8"
)

// #region opposition

// OpposedPair is an antonym pair searched for across thesis and antithesis.
type OpposedPair struct {
	A string
	B string
}

// OpposedPairs is the fixed antonym table.
var OpposedPairs = []OpposedPair{
	{"not", "is"},
	{"cannot", "can"},
	{"never", "always"},
	{"impossible", "possible"},
	{"false", "true"},
	{"wrong", "right"},
	{"build", "destroy"},
	{"create", "eliminate"},
	{"already", "becoming"},
	{"already", "build"},
	{"being", "becoming"},
}

// OppositionIncrement is added per matched pair before clamping.
const OppositionIncrement = 0.2

// stemMinRunes is the shortest table word that also matches as a token prefix.
const stemMinRunes = 4

// Opposition scores how strongly a and b take opposed positions, in [0, 1].
// A pair contributes when one side holds the first word and the other side
// holds the second, in either direction.
func Opposition(a, b string) float64 {
	tokensA := Tokenize(a)
	tokensB := Tokenize(b)

	var score float64
	for _, p := range OpposedPairs {
		forward := containsWord(tokensA, p.A) && containsWord(tokensB, p.B)
		backward := containsWord(tokensA, p.B) && containsWord(tokensB, p.A)
		if forward || backward {
			score += OppositionIncrement
		}
	}
	return Clamp01(score)
}

// containsWord reports whether any token equals word, or carries it as a stem
// prefix when word is long enough ("building" holds "build").
func containsWord(tokens []string, word string) bool {
	stem := utf8.RuneCountInString(word) >= stemMinRunes
	for _, t := range tokens {
		if t == word {
			return true
		}
		if stem && strings.HasPrefix(t, word) {
			return true
		}
	}
	return false
}

// #endregion opposition
