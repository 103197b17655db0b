package replay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/danielpatrickdp/paradox-engine/internal/engine"
	"github.com/danielpatrickdp/paradox-engine/internal/eval"
	"github.com/danielpatrickdp/paradox-engine/internal/gate"
	"github.com/danielpatrickdp/paradox-engine/internal/memory"
	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
	"github.com/danielpatrickdp/paradox-engine/internal/registry"
)

// #region types
// Step actions.
const (
	ActionScore   = "score"
	ActionArchive = "archive"
)

// Step is a single recorded call for replay.
type Step struct {
	StepID string
	Action string // "score" (default) | "archive"
	Input  paradox.Input
}

// ReplayConfig bundles bank, gate, and eval configs for a replay run.
type ReplayConfig struct {
	BankConfig memory.BankConfig
	GateConfig gate.GateConfig
	EvalConfig eval.EvalConfig
}

// DefaultReplayConfig returns the defaults for all three stages.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{
		BankConfig: memory.DefaultBankConfig(),
		GateConfig: gate.DefaultGateConfig(),
		EvalConfig: eval.DefaultEvalConfig(),
	}
}

// ReplayResult captures the outcome of replaying one step.
type ReplayResult struct {
	StepID      string
	Action      string
	ParadoxID   string
	State       registry.State
	Category    paradox.Category
	PhiGate     float64
	ContentHash string
	Archived    int
	Err         string
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalSteps  int
	Resolving   int
	Synthesized int
	Transcended int
	Archived    int
	Errors      int
	FinalStats  engine.Stats
}

// Mismatch is a step whose content hash differed between two runs.
type Mismatch struct {
	StepID string
	First  string
	Second string
}

// VerifyReport is the outcome of a determinism check.
type VerifyReport struct {
	Steps      int
	Mismatches []Mismatch
}

// Deterministic reports whether both runs agreed on every step.
func (r VerifyReport) Deterministic() bool {
	return len(r.Mismatches) == 0
}

// #endregion types

// #region replay
// Replay runs steps through a fresh in-memory engine with a synthetic clock.
// The returned stats describe the engine after the last step.
func Replay(ctx context.Context, steps []Step, config ReplayConfig) ([]ReplayResult, engine.Stats, error) {
	e, err := engine.New(engine.Options{
		Bank: config.BankConfig,
		Gate: config.GateConfig,
		Eval: config.EvalConfig,
		Now:  syntheticClock(),
	})
	if err != nil {
		return nil, engine.Stats{}, fmt.Errorf("new engine: %w", err)
	}
	defer e.Close()

	results := make([]ReplayResult, 0, len(steps))
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return results, e.Stats(), err
		}

		switch step.Action {
		case "", ActionScore:
			res, err := e.Score(ctx, step.Input)
			if err != nil {
				results = append(results, ReplayResult{StepID: step.StepID, Action: ActionScore, Err: err.Error()})
				continue
			}
			results = append(results, ReplayResult{
				StepID:      step.StepID,
				Action:      ActionScore,
				ParadoxID:   res.ParadoxID,
				State:       res.ResolutionState,
				Category:    res.Synthesis.Type,
				PhiGate:     res.Synthesis.Metrics.PhiGate,
				ContentHash: res.Synthesis.ContentHash,
			})
		case ActionArchive:
			res, err := e.ArchiveResolved(ctx)
			if err != nil {
				results = append(results, ReplayResult{StepID: step.StepID, Action: ActionArchive, Err: err.Error()})
				continue
			}
			results = append(results, ReplayResult{StepID: step.StepID, Action: ActionArchive, Archived: res.Archived})
		default:
			results = append(results, ReplayResult{
				StepID: step.StepID,
				Action: step.Action,
				Err:    fmt.Sprintf("unknown action %q", step.Action),
			})
		}
	}

	return results, e.Stats(), nil
}

// Verify replays steps twice on independent engines and compares content
// hashes step by step.
func Verify(ctx context.Context, steps []Step, config ReplayConfig) (VerifyReport, error) {
	first, _, err := Replay(ctx, steps, config)
	if err != nil {
		return VerifyReport{}, fmt.Errorf("first run: %w", err)
	}
	second, _, err := Replay(ctx, steps, config)
	if err != nil {
		return VerifyReport{}, fmt.Errorf("second run: %w", err)
	}

	report := VerifyReport{Steps: len(first)}
	for i := range first {
		if first[i].ContentHash != second[i].ContentHash || first[i].Err != second[i].Err {
			report.Mismatches = append(report.Mismatches, Mismatch{
				StepID: first[i].StepID,
				First:  first[i].ContentHash,
				Second: second[i].ContentHash,
			})
		}
	}
	return report, nil
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult, final engine.Stats) ReplaySummary {
	s := ReplaySummary{
		TotalSteps: len(results),
		FinalStats: final,
	}
	for _, r := range results {
		if r.Err != "" {
			s.Errors++
			continue
		}
		s.Archived += r.Archived
		switch r.State {
		case registry.StateResolving:
			s.Resolving++
		case registry.StateSynthesized:
			s.Synthesized++
		case registry.StateTranscended:
			s.Transcended++
		}
	}
	return s
}

// #endregion replay

// #region clock
// syntheticClock starts at a fixed epoch and advances one millisecond per
// read, so replays order memories identically on every run.
func syntheticClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}

// #endregion clock
