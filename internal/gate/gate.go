package gate

import (
	"math"

	"github.com/danielpatrickdp/paradox-engine/internal/signals"
)

// #region gate
// Gate turns tension and optional two-state evidence into a bounded score.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Config returns the gate's configuration.
func (g *Gate) Config() GateConfig {
	return g.config
}

// Evaluate computes the single-state gate from tension, blends in the
// two-state gate when present, and re-anchors on a memory baseline when one
// is supplied. The final value never exceeds φ.
func (g *Gate) Evaluate(tension float64, twoState *TwoStateInput, baseline *float64) GateDecision {
	base := g.SingleState(tension)
	decision := GateDecision{Base: base, Raw: base}

	if twoState != nil {
		ts := g.TwoState(*twoState)
		decision.TwoState = &ts
		w := g.config.BlendWeight
		decision.Raw = w*base + (1-w)*ts.Gate
	}
	decision.Raw = signals.Bounded01(decision.Raw, 0.5)

	if baseline != nil {
		decision.Final = g.Reanchor(*baseline, decision.Raw)
		decision.Reanchored = true
	} else {
		decision.Final = decision.Raw
	}

	decision.Path = g.PathFor(decision.Final)
	return decision
}

// SingleState is sigmoid(k1 · (tension − 1/φ)).
func (g *Gate) SingleState(tension float64) float64 {
	t := signals.Finite(tension, 0)
	return Sigmoid(g.config.SingleStateGain * (t - signals.InversePhi))
}

// TwoState evaluates the pre/post-selection gate.
func (g *Gate) TwoState(in TwoStateInput) TwoStateResult {
	overlap := max(g.config.Epsilon, signals.Finite(in.ThesisTarget, 0))
	support := signals.Finite(in.CandidateThesis, 0) * signals.Finite(in.CandidateTarget, 0)
	weak := support/overlap + signals.Finite(in.MemoryBoost, 0)*g.config.MemoryBoostWeight
	weak = signals.Finite(weak, 0)

	return TwoStateResult{
		Support:  support,
		Overlap:  overlap,
		WeakGain: weak,
		Gate:     Sigmoid(g.config.TwoStateGain * (weak - signals.InversePhi)),
	}
}

// Reanchor shifts the raw gate onto a learned baseline, bounded to [0, φ].
func (g *Gate) Reanchor(baseline, raw float64) float64 {
	b := signals.Finite(baseline, signals.InversePhi)
	v := b + (raw-signals.InversePhi)*g.config.ReanchorDamping
	v = signals.Finite(v, signals.InversePhi)
	return math.Max(0, math.Min(signals.Phi, v))
}

// PathFor maps a final gate value to its resolution path.
func (g *Gate) PathFor(final float64) Path {
	switch {
	case final > g.config.TranscendThreshold:
		return PathTranscend
	case final > g.config.SustainThreshold:
		return PathSustain
	default:
		return PathCollapse
	}
}

// Transcends reports whether a final gate forces the transcendent category.
func (g *Gate) Transcends(final float64) bool {
	return final > g.config.TranscendOverride
}

// #endregion gate

// #region helpers
// Sigmoid is the logistic function, 0.5 for non-finite input.
func Sigmoid(x float64) float64 {
	if math.IsNaN(x) {
		return 0.5
	}
	return 1 / (1 + math.Exp(-x))
}

// #endregion helpers
