package paradox

// #region imports
import (
	"fmt"
	"time"

	"github.com/danielpatrickdp/paradox-engine/internal/gate"
	"github.com/danielpatrickdp/paradox-engine/internal/memory"
	"github.com/danielpatrickdp/paradox-engine/internal/signals"
)

// #endregion

// #region scorer

// MemorySource supplies learned baselines for a pair.
type MemorySource interface {
	Predict(thesis, antithesis string) memory.Prediction
}

// Scorer turns a paradox input into a synthesis. It holds no mutable state
// of its own; history enters only through the memory source.
type Scorer struct {
	gate   *gate.Gate
	memory MemorySource
	now    func() time.Time
}

// NewScorer creates a scorer. A nil memory source disables re-anchoring and
// a nil clock uses time.Now.
func NewScorer(g *gate.Gate, mem MemorySource, now func() time.Time) *Scorer {
	if g == nil {
		g = gate.NewGate(gate.DefaultGateConfig())
	}
	if now == nil {
		now = time.Now
	}
	return &Scorer{gate: g, memory: mem, now: now}
}

// Gate returns the scorer's gate.
func (s *Scorer) Gate() *gate.Gate {
	return s.gate
}

// Score computes the synthesis for in under the given strategy.
func (s *Scorer) Score(in Input, strategy Strategy) (Synthesis, error) {
	if err := in.Validate(); err != nil {
		return Synthesis{}, err
	}
	in = in.sanitized()

	similarity := signals.Bounded01(signals.Similarity(in.Thesis, in.Antithesis), 0)
	opposition := signals.Bounded01(signals.Opposition(in.Thesis, in.Antithesis), 0)
	emotional := signals.Bounded01(signals.Intensity(in.Emotion), signals.DefaultIntensity)

	tension := 1 - similarity + opposition
	complexity := signals.Clamp01(0.5*(1-similarity) + 0.5*opposition)

	category := Categorize(emotional, tension)
	statement := Statement(category, in.Thesis, in.Antithesis)

	var (
		baseline *float64
		boost    float64
	)
	if s.memory != nil {
		if pred := s.memory.Predict(in.Thesis, in.Antithesis); pred.Found {
			b := signals.Finite(pred.Baseline, signals.InversePhi)
			baseline = &b
			boost = signals.Bounded01(pred.Boost, 0)
		}
	}

	var twoState *gate.TwoStateInput
	if target, ok := in.target(); ok {
		twoState = &gate.TwoStateInput{
			CandidateThesis: signals.Similarity(statement, in.Thesis),
			CandidateTarget: signals.Similarity(statement, target),
			ThesisTarget:    signals.Similarity(in.Thesis, target),
			MemoryBoost:     boost,
		}
	}

	decision := s.gate.Evaluate(tension, twoState, baseline)

	if s.gate.Transcends(decision.Final) && category != CategoryTranscendent {
		category = CategoryTranscendent
		statement = Statement(category, in.Thesis, in.Antithesis)
	}

	overlay := Overlay(category)
	if decision.TwoState != nil {
		overlay = appendTag(overlay, TagAccord)
	}
	if boost > 0.1 {
		overlay = appendTag(overlay, TagMemory)
	}

	metrics := Metrics{
		Similarity:     similarity,
		Tension:        signals.Clamp01(1 - similarity),
		Opposition:     opposition,
		Complexity:     complexity,
		PhiGate:        decision.Final,
		EmotionalDelta: emotional,
	}
	if decision.TwoState != nil {
		support := signals.Finite(decision.TwoState.Support, 0)
		metrics.TwoStateSupport = &support
	}
	if baseline != nil {
		metrics.MemoryBaseline = baseline
		metrics.MemoryBoost = &boost
	}

	hash, err := ContentHash(in, category, statement, metrics, overlay)
	if err != nil {
		return Synthesis{}, fmt.Errorf("score paradox: %w", err)
	}

	return Synthesis{
		Type:           category,
		Overlay:        overlay,
		Statement:      statement,
		Metrics:        metrics,
		ContentHash:    hash,
		Timestamp:      s.now().UTC().Format(time.RFC3339Nano),
		ResolutionPath: decision.Path,
		QuantumState:   QuantumStateFor(strategy),
	}, nil
}

// Categorize picks the category from emotional delta and gate tension.
func Categorize(emotionalDelta, tension float64) Category {
	switch {
	case emotionalDelta+tension > 1.2:
		return CategoryTranscendent
	case tension > 0.6:
		return CategoryRecursive
	default:
		return CategoryDialectical
	}
}

// #endregion scorer
