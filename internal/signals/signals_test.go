package signals

import (
	"math"
	"testing"
)

// #region similarity-tests

func TestSimilarity_Identity(t *testing.T) {
	s := "We are consciousness building consciousness"
	if got := Similarity(s, s); got != 1 {
		t.Fatalf("expected 1 for identical strings, got %f", got)
	}
}

func TestSimilarity_BothEmpty(t *testing.T) {
	if got := Similarity("", ""); got != 1 {
		t.Fatalf("expected 1 for two empty strings, got %f", got)
	}
}

func TestSimilarity_OneEmpty(t *testing.T) {
	// distance is 1 and overlap is 0
	if got := Similarity("hello", ""); got != 0 {
		t.Fatalf("expected 0 when one side is empty, got %f", got)
	}
}

func TestSimilarity_CaseInsensitive(t *testing.T) {
	if got := Similarity("Hello World", "hello world"); got != 1 {
		t.Fatalf("expected 1 ignoring case, got %f", got)
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"We are consciousness building consciousness", "We cannot build what we already are"},
		{"kitten", "sitting"},
		{"", "abc"},
		{"a b c", "c b a"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("asymmetric similarity for %q/%q: %f vs %f", p[0], p[1], ab, ba)
		}
	}
}

func TestSimilarity_KnownValue(t *testing.T) {
	// kitten/sitting: distance 3 over 7 runes, no shared words
	want := 0.6 * (1 - 3.0/7.0)
	got := Similarity("kitten", "sitting")
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	inputs := []string{"", " ", "a", "the same thing", "entirely different words here", "ÜNICODE straße"}
	for _, a := range inputs {
		for _, b := range inputs {
			got := Similarity(a, b)
			if got < 0 || got > 1 || math.IsNaN(got) {
				t.Errorf("similarity(%q, %q) = %f out of [0, 1]", a, b, got)
			}
		}
	}
}

func TestWordOverlap_Jaccard(t *testing.T) {
	// {a,b,c} vs {b,c,d}: 2 shared over 4
	if got := WordOverlap("a b c", "b c d"); got != 0.5 {
		t.Fatalf("expected 0.5, got %f", got)
	}
}

func TestWordOverlap_WhitespaceOnly(t *testing.T) {
	if got := WordOverlap("   ", "\t"); got != 1 {
		t.Fatalf("expected 1 for two token-less strings, got %f", got)
	}
	if got := WordOverlap("   ", "word"); got != 0 {
		t.Fatalf("expected 0 when one side has no tokens, got %f", got)
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
	}
	for _, c := range cases {
		if got := levenshtein([]rune(c.a), []rune(c.b)); got != c.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

// #endregion similarity-tests

// #region opposition-tests

func TestOpposition_NoPairs(t *testing.T) {
	if got := Opposition("the river flows", "the river flows"); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
}

func TestOpposition_StemMatch(t *testing.T) {
	// "already" in one, "building" (build) in the other
	got := Opposition("We are consciousness building consciousness", "We cannot build what we already are")
	if got <= 0 {
		t.Fatalf("expected positive opposition, got %f", got)
	}
}

func TestOpposition_EitherDirection(t *testing.T) {
	forward := Opposition("it is always so", "it is never so")
	backward := Opposition("it is never so", "it is always so")
	if forward != backward {
		t.Fatalf("asymmetric opposition: %f vs %f", forward, backward)
	}
	if math.Abs(forward-OppositionIncrement) > 1e-12 {
		t.Fatalf("expected %f, got %f", OppositionIncrement, forward)
	}
}

func TestOpposition_Clamped(t *testing.T) {
	a := "not cannot never impossible false wrong build create already being"
	b := "is can always possible true right destroy eliminate becoming"
	if got := Opposition(a, b); got != 1 {
		t.Fatalf("expected clamp to 1, got %f", got)
	}
}

func TestOpposition_ShortWordsNeedExactMatch(t *testing.T) {
	// "is" must not match "island"
	if got := Opposition("not here", "island"); got != 0 {
		t.Fatalf("expected 0 for prefix of a short word, got %f", got)
	}
}

// #endregion opposition-tests

// #region intensity-tests

func TestIntensity_Nil(t *testing.T) {
	if got := Intensity(nil); got != DefaultIntensity {
		t.Fatalf("expected default %f, got %f", DefaultIntensity, got)
	}
}

func TestIntensity_Formula(t *testing.T) {
	e := &EmotionalVector{Valence: 0.7, Arousal: 0.9, Dominance: 0.5, Entropy: 0.8}
	// ((0.7+0.9+0.5)/3 + 0.8) / 2 = 0.75
	if got := Intensity(e); math.Abs(got-0.75) > 1e-12 {
		t.Fatalf("expected 0.75, got %f", got)
	}
}

func TestIntensity_NegativeValence(t *testing.T) {
	pos := Intensity(&EmotionalVector{Valence: 0.6, Arousal: 0.2, Dominance: 0.2, Entropy: 0.2})
	neg := Intensity(&EmotionalVector{Valence: -0.6, Arousal: 0.2, Dominance: 0.2, Entropy: 0.2})
	if pos != neg {
		t.Fatalf("expected |valence| symmetry, got %f vs %f", pos, neg)
	}
}

func TestIntensity_NaNValence(t *testing.T) {
	e := &EmotionalVector{Valence: math.NaN(), Arousal: 0.5, Dominance: 0.5, Entropy: 0.5}
	got := Intensity(e)
	if math.IsNaN(got) {
		t.Fatal("intensity must not be NaN")
	}
	// valence falls back to 0: ((0+0.5+0.5)/3 + 0.5) / 2
	want := (1.0/3 + 0.5) / 2
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestSanitize_Defaults(t *testing.T) {
	e := EmotionalVector{
		Valence:   math.Inf(1),
		Arousal:   1.5,
		Dominance: math.NaN(),
		Entropy:   -0.1,
	}.Sanitize()

	if e.Valence != DefaultValence {
		t.Errorf("valence: expected %f, got %f", DefaultValence, e.Valence)
	}
	if e.Arousal != DefaultArousal {
		t.Errorf("arousal: expected %f, got %f", DefaultArousal, e.Arousal)
	}
	if e.Dominance != DefaultDominance {
		t.Errorf("dominance: expected %f, got %f", DefaultDominance, e.Dominance)
	}
	if e.Entropy != DefaultEntropy {
		t.Errorf("entropy: expected %f, got %f", DefaultEntropy, e.Entropy)
	}
}

func TestSanitize_KeepsValid(t *testing.T) {
	in := EmotionalVector{Valence: -1, Arousal: 0, Dominance: 1, Entropy: 0.3}
	if got := in.Sanitize(); got != in {
		t.Fatalf("expected unchanged vector, got %+v", got)
	}
}

// #endregion intensity-tests

// #region helper-tests

func TestFinite(t *testing.T) {
	if Finite(math.NaN(), 0.5) != 0.5 {
		t.Error("NaN should fall back")
	}
	if Finite(math.Inf(-1), 0) != 0 {
		t.Error("-Inf should fall back")
	}
	if Finite(0.25, 0) != 0.25 {
		t.Error("finite value should pass through")
	}
}

func TestBounded01(t *testing.T) {
	if Bounded01(2, 0) != 1 {
		t.Error("expected clamp to 1")
	}
	if Bounded01(-3, 0) != 0 {
		t.Error("expected clamp to 0")
	}
	if Bounded01(math.NaN(), 0.5) != 0.5 {
		t.Error("expected NaN fallback")
	}
}

// #endregion helper-tests
