package memory

import (
	"time"

	"github.com/danielpatrickdp/paradox-engine/internal/signals"
)

// #region constants

// Phi caps every baseline the bank derives.
const Phi = signals.Phi

// ResolvedThreshold is φ−1, the baseline of a pair with no similar history.
const ResolvedThreshold = signals.InversePhi

// EmbeddingDims is the number of concept buckets in a context embedding.
const EmbeddingDims = 8

// #endregion constants

// #region embedding

// Embedding is a keyword-frequency vector over the fixed concept buckets.
type Embedding [EmbeddingDims]float64

// #endregion embedding

// #region paradox-memory

// ParadoxMemory is one archived resolution held by the bank.
type ParadoxMemory struct {
	ParadoxHash       string    `json:"paradoxHash"`
	Thesis            string    `json:"thesis"`
	Antithesis        string    `json:"antithesis"`
	ResolutionPath    string    `json:"resolutionPath"`
	CoherenceDelta    float64   `json:"coherenceDelta"`
	FinalCoherence    float64   `json:"finalCoherence"`
	TimestampMs       int64     `json:"timestampMs"`
	ContextEmbedding  Embedding `json:"contextEmbedding"`
	SynthesisSymbol   string    `json:"synthesisSymbol"`
	BaselineCoherence float64   `json:"baselineCoherence"`
}

// Resolution is what the bank needs to archive one scoring outcome.
type Resolution struct {
	Thesis         string
	Antithesis     string
	ResolutionPath string
	PhiGate        float64
	Symbol         string
}

// #endregion paradox-memory

// #region query-results

// Match is a bank entry paired with its embedding distance to a query.
type Match struct {
	Memory   ParadoxMemory `json:"memory"`
	Distance float64       `json:"distance"`
}

// Prediction is the baseline the bank derives for a new pair.
type Prediction struct {
	Found            bool    `json:"found"`
	Baseline         float64 `json:"baseline"`
	MaxBaseline      float64 `json:"maxBaseline"`
	AverageDelta     float64 `json:"averageDelta"`
	ProgressiveBonus float64 `json:"progressiveBonus"`
	Boost            float64 `json:"boost"`
	SimilarCount     int     `json:"similarCount"`
}

// Stats summarizes the bank contents.
type Stats struct {
	Size            int            `json:"size"`
	Capacity        int            `json:"capacity"`
	AverageBaseline float64        `json:"averageBaseline"`
	MaxBaseline     float64        `json:"maxBaseline"`
	AverageDelta    float64        `json:"averageDelta"`
	PathCounts      map[string]int `json:"pathCounts"`
	OldestMs        int64          `json:"oldestMs,omitempty"`
	NewestMs        int64          `json:"newestMs,omitempty"`
}

// EvolutionPoint is one entry of the bank's learning history.
type EvolutionPoint struct {
	ParadoxHash       string  `json:"paradoxHash"`
	TimestampMs       int64   `json:"timestampMs"`
	BaselineCoherence float64 `json:"baselineCoherence"`
	CoherenceDelta    float64 `json:"coherenceDelta"`
	ResolutionPath    string  `json:"resolutionPath"`
}

// #endregion query-results

// #region bank-config

// BankConfig holds capacity and search parameters.
type BankConfig struct {
	Capacity            int     // max entries before oldest-first eviction
	SimilarityThreshold float64 // max embedding distance for a similar entry
	MaxSimilar          int     // max entries returned by FindSimilar
}

// DefaultBankConfig returns the documented defaults.
func DefaultBankConfig() BankConfig {
	return BankConfig{
		Capacity:            100,
		SimilarityThreshold: 0.3,
		MaxSimilar:          5,
	}
}

// Clock returns the current time; injected for deterministic tests.
type Clock func() time.Time

// #endregion bank-config
