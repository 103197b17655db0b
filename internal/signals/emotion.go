package signals

import "math"

// #region sanitize

// Sanitize replaces non-finite or out-of-range fields with their defaults.
func (e EmotionalVector) Sanitize() EmotionalVector {
	return EmotionalVector{
		Valence:   inRange(e.Valence, -1, 1, DefaultValence),
		Arousal:   inRange(e.Arousal, 0, 1, DefaultArousal),
		Dominance: inRange(e.Dominance, 0, 1, DefaultDominance),
		Entropy:   inRange(e.Entropy, 0, 1, DefaultEntropy),
	}
}

func inRange(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
		return fallback
	}
	return v
}

// #endregion sanitize

// #region intensity

// Intensity maps an emotional vector to a combined intensity/instability
// scalar in [0, 1]. A nil vector yields DefaultIntensity.
func Intensity(e *EmotionalVector) float64 {
	if e == nil {
		return DefaultIntensity
	}
	s := e.Sanitize()
	intensity := (math.Abs(s.Valence) + s.Arousal + s.Dominance) / 3
	instability := s.Entropy
	return Bounded01((intensity+instability)/2, DefaultIntensity)
}

// #endregion intensity
