package eval

import (
	"encoding/hex"
	"fmt"
	"math"

	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
)

// #region eval-harness
// EvalHarness runs lightweight validation on a synthesis before it is
// recorded.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run validates bounds, finiteness, the φ cap, the hash and the overlay.
func (h *EvalHarness) Run(syn paradox.Synthesis) EvalResult {
	var metrics []EvalMetric
	var failReasons []string

	check := func(name string, value float64, pass bool, reason string) {
		metrics = append(metrics, EvalMetric{Name: name, Value: value, Pass: pass})
		if !pass {
			failReasons = append(failReasons, reason)
		}
	}

	// 1. Unit-interval metrics
	m := syn.Metrics
	unit := []struct {
		name string
		v    float64
	}{
		{"similarity", m.Similarity},
		{"tension", m.Tension},
		{"opposition", m.Opposition},
		{"complexity", m.Complexity},
		{"emotional_delta", m.EmotionalDelta},
	}
	for _, u := range unit {
		ok := finite(u.v) && u.v >= 0 && u.v <= 1
		check(u.name, u.v, ok, fmt.Sprintf("%s %.4f outside [0,1]", u.name, u.v))
	}

	// 2. Gate cap
	gateOK := finite(m.PhiGate) && m.PhiGate >= 0 && m.PhiGate <= h.config.MaxPhiGate
	check("phi_gate", m.PhiGate, gateOK, fmt.Sprintf("phi gate %.4f outside [0,%.4f]", m.PhiGate, h.config.MaxPhiGate))

	// 3. Optional metrics must be finite when present
	for name, p := range map[string]*float64{
		"two_state_support": m.TwoStateSupport,
		"memory_baseline":   m.MemoryBaseline,
		"memory_boost":      m.MemoryBoost,
	} {
		if p == nil {
			continue
		}
		check(name, *p, finite(*p), fmt.Sprintf("%s is not finite", name))
	}

	// 4. Content hash shape
	_, decodeErr := hex.DecodeString(syn.ContentHash)
	hashOK := decodeErr == nil && len(syn.ContentHash) == h.config.HashLength
	check("content_hash", float64(len(syn.ContentHash)), hashOK, fmt.Sprintf("content hash %q malformed", syn.ContentHash))

	// 5. Overlay
	n := len(syn.Overlay)
	check("overlay", float64(n), n >= h.config.MinOverlayTags, fmt.Sprintf("overlay has %d tags", n))

	// 6. Tension: informational only
	metrics = append(metrics, EvalMetric{
		Name:  "tension_baseline",
		Value: m.Tension,
		Pass:  m.Tension <= h.config.TensionBaseline,
	})

	reason := "all checks passed"
	if len(failReasons) == 1 {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
	} else if len(failReasons) > 1 {
		reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
	}

	return EvalResult{
		Passed:  len(failReasons) == 0,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region helpers
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// #endregion helpers
