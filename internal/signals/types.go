package signals

// #region golden-ratio

// Phi is the golden ratio.
const Phi = 1.6180339887498949

// InversePhi is 1/φ, equal to φ−1.
const InversePhi = Phi - 1

// #endregion golden-ratio

// #region emotional-vector

// EmotionalVector is the affective context of a scoring call.
// Valence lies in [-1, 1]; arousal, dominance and entropy lie in [0, 1].
type EmotionalVector struct {
	Valence   float64 `json:"valence"`
	Arousal   float64 `json:"arousal"`
	Dominance float64 `json:"dominance"`
	Entropy   float64 `json:"entropy"`
}

// Fallbacks substituted for non-finite or out-of-range fields.
const (
	DefaultValence   = 0.0
	DefaultArousal   = 0.5
	DefaultDominance = 0.5
	DefaultEntropy   = 0.5

	// DefaultIntensity is returned when no emotional vector is supplied.
	DefaultIntensity = 0.5
)

// #endregion emotional-vector
