package gate

import "github.com/danielpatrickdp/paradox-engine/internal/signals"

// #region path
// Path is the resolution path implied by a final gate value.
type Path string

const (
	PathCollapse  Path = "collapse"
	PathSustain   Path = "sustain"
	PathTranscend Path = "transcend"
)

// Valid reports whether p is a known path.
func (p Path) Valid() bool {
	switch p {
	case PathCollapse, PathSustain, PathTranscend:
		return true
	}
	return false
}

// #endregion path

// #region gate-config
// GateConfig holds gains and thresholds for gate decisions.
type GateConfig struct {
	SingleStateGain    float64 // k1: steepness of the tension sigmoid
	TwoStateGain       float64 // k2: steepness of the weak-gain sigmoid
	Epsilon            float64 // floor on thesis/target overlap
	BlendWeight        float64 // share of the single-state gate in the blend
	MemoryBoostWeight  float64 // weak-gain bonus per unit of memory boost
	ReanchorDamping    float64 // how much of raw-gate excess survives re-anchoring
	TranscendOverride  float64 // final gate above which the category becomes transcendent
	TranscendThreshold float64 // final gate above which the path is transcend
	SustainThreshold   float64 // final gate above which the path is sustain
}

// DefaultGateConfig returns the canonical memory-enhanced constants.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		SingleStateGain:    4,
		TwoStateGain:       8,
		Epsilon:            1e-6,
		BlendWeight:        0.5,
		MemoryBoostWeight:  0.2,
		ReanchorDamping:    0.7,
		TranscendOverride:  0.68,
		TranscendThreshold: 0.8,
		SustainThreshold:   signals.InversePhi,
	}
}

// #endregion gate-config

// #region two-state
// TwoStateInput carries the similarities feeding the pre/post-selection gate.
type TwoStateInput struct {
	CandidateThesis float64 // similarity(candidate, T1)
	CandidateTarget float64 // similarity(candidate, T2)
	ThesisTarget    float64 // similarity(T1, T2)
	MemoryBoost     float64
}

// TwoStateResult is the evaluated pre/post-selection gate.
type TwoStateResult struct {
	Support  float64
	Overlap  float64
	WeakGain float64
	Gate     float64
}

// #endregion two-state

// #region gate-decision
// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Base       float64         // single-state φ-gate
	TwoState   *TwoStateResult // nil when no target was supplied
	Raw        float64         // blended gate before memory re-anchoring
	Final      float64         // reported phiGate, in [0, φ]
	Reanchored bool
	Path       Path
}

// #endregion gate-decision
