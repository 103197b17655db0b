package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strings"

	"github.com/danielpatrickdp/paradox-engine/internal/signals"
)

// #region hash

// hashPrefixLen is the number of hex characters kept from the SHA-256 digest.
const hashPrefixLen = 16

// Hash identifies a (thesis, antithesis) pair by content.
func Hash(thesis, antithesis string) string {
	key := strings.ToLower(strings.TrimSpace(thesis) + "|" + strings.TrimSpace(antithesis))
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:hashPrefixLen]
}

// #endregion hash

// #region buckets

// conceptBuckets lists the keywords per embedding dimension, in order:
// self, other, time, change, unity, duality, creation, destruction.
var conceptBuckets = [EmbeddingDims][]string{
	{"self", "myself", "identity", "ego", "mind", "conscious", "soul", "own"},
	{"other", "you", "they", "them", "another", "relation", "between"},
	{"time", "already", "now", "before", "after", "future", "past", "moment"},
	{"change", "becom", "grow", "transform", "evolv", "shift", "adapt"},
	{"one", "unity", "whole", "same", "together", "union", "merge"},
	{"two", "both", "versus", "opposite", "paradox", "contradict", "not"},
	{"creat", "build", "make", "birth", "begin", "generat", "new"},
	{"destroy", "eliminat", "end", "break", "death", "collapse", "lose"},
}

// bucketScale amplifies keyword frequency before clamping.
const bucketScale = 5

// #endregion buckets

// #region embed

// Embed maps a pair to its concept-frequency vector. Each dimension is the
// share of tokens containing any bucket keyword, scaled and clamped to [0, 1].
func Embed(thesis, antithesis string) Embedding {
	var e Embedding
	tokens := signals.Tokenize(thesis + " " + antithesis)
	if len(tokens) == 0 {
		return e
	}

	for dim, keywords := range conceptBuckets {
		var hits int
		for _, t := range tokens {
			for _, kw := range keywords {
				if strings.Contains(t, kw) {
					hits++
					break
				}
			}
		}
		e[dim] = signals.Clamp01(float64(hits) / float64(len(tokens)) * bucketScale)
	}
	return e
}

// Distance is the Euclidean distance between two embeddings. It is not
// normalized by √8, so the similarity threshold applies to raw distance.
func Distance(a, b Embedding) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// #endregion embed
