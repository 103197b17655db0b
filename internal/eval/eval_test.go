package eval

import (
	"math"
	"strings"
	"testing"

	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
	"github.com/danielpatrickdp/paradox-engine/internal/signals"
)

func makeSynthesis() paradox.Synthesis {
	return paradox.Synthesis{
		Type:        paradox.CategoryDialectical,
		Overlay:     []string{"synthesis", "balance"},
		ContentHash: strings.Repeat("ab", 32),
		Metrics: paradox.Metrics{
			Similarity:     0.4,
			Tension:        0.6,
			Complexity:     0.3,
			PhiGate:        0.5,
			EmotionalDelta: 0.5,
		},
	}
}

func metric(result EvalResult, name string) (EvalMetric, bool) {
	for _, m := range result.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return EvalMetric{}, false
}

func TestEvalPassesOnValidSynthesis(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	result := h.Run(makeSynthesis())

	if !result.Passed {
		t.Fatalf("expected pass, got fail: %s", result.Reason)
	}
	if len(result.Metrics) == 0 {
		t.Fatal("expected metrics")
	}
}

func TestEvalPassesOnScoredSynthesis(t *testing.T) {
	s := paradox.NewScorer(nil, nil, nil)
	syn, err := s.Score(paradox.Input{SessionID: "s", Thesis: "light is a wave", Antithesis: "light is not a wave", Post: &paradox.Post{}}, paradox.StrategySustain)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result := NewEvalHarness(DefaultEvalConfig()).Run(syn); !result.Passed {
		t.Fatalf("expected scored synthesis to pass: %s", result.Reason)
	}
}

func TestEvalFailsAbovePhi(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	syn := makeSynthesis()
	syn.Metrics.PhiGate = signals.Phi + 0.01

	result := h.Run(syn)
	if result.Passed {
		t.Fatal("expected fail above phi")
	}
	if m, ok := metric(result, "phi_gate"); !ok || m.Pass {
		t.Fatal("expected phi_gate metric to fail")
	}
}

func TestEvalFailsOnNaN(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	syn := makeSynthesis()
	syn.Metrics.Similarity = math.NaN()
	boost := math.Inf(1)
	syn.Metrics.MemoryBoost = &boost

	result := h.Run(syn)
	if result.Passed {
		t.Fatal("expected fail on NaN")
	}
	if !strings.Contains(result.Reason, "2 checks") {
		t.Fatalf("expected two failures, got %q", result.Reason)
	}
}

func TestEvalFailsOnMalformedHash(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	syn := makeSynthesis()
	syn.ContentHash = "not-hex"

	if h.Run(syn).Passed {
		t.Fatal("expected fail on malformed hash")
	}
}

func TestEvalTensionIsInformational(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	syn := makeSynthesis()
	syn.Metrics.Tension = 1

	result := h.Run(syn)
	if !result.Passed {
		t.Fatalf("tension baseline should not fail: %s", result.Reason)
	}
	if m, ok := metric(result, "tension_baseline"); !ok || m.Pass {
		t.Fatal("expected tension_baseline metric to report above baseline")
	}
}
