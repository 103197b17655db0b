package engine

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/paradox-engine/internal/eval"
	"github.com/danielpatrickdp/paradox-engine/internal/gate"
	"github.com/danielpatrickdp/paradox-engine/internal/logging"
	"github.com/danielpatrickdp/paradox-engine/internal/memory"
	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
	"github.com/danielpatrickdp/paradox-engine/internal/registry"
	"github.com/danielpatrickdp/paradox-engine/internal/signals"
	"github.com/danielpatrickdp/paradox-engine/internal/store"
)

// #endregion

// #region engine-struct

// Engine is the paradox service: it owns the memory bank and the registry,
// scores inputs against them, and persists to an optional store.
type Engine struct {
	scorer   *paradox.Scorer
	bank     *memory.Bank
	registry *registry.Registry
	eval     *eval.EvalHarness
	store    *store.Store
	logger   *zap.Logger
	now      func() time.Time

	// persistMu orders store snapshots; pending holds genealogy entries
	// whose write failed and is retried on the next archive or on Close.
	persistMu sync.Mutex
	pending   []registry.GenealogyEntry

	closeOnce sync.Once
	closeErr  error
}

// #endregion

// #region constructor

// New creates an engine and restores persisted memories and genealogy
// when a store is configured.
func New(opts Options) (*Engine, error) {
	if opts.Bank.Capacity <= 0 {
		opts.Bank = memory.DefaultBankConfig()
	}
	if opts.Gate.SingleStateGain == 0 {
		opts.Gate = gate.DefaultGateConfig()
	}
	if opts.Eval.HashLength == 0 {
		opts.Eval = eval.DefaultEvalConfig()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	bank := memory.NewBank(opts.Bank, opts.Now)
	e := &Engine{
		scorer:   paradox.NewScorer(gate.NewGate(opts.Gate), bank, opts.Now),
		bank:     bank,
		registry: registry.New(opts.Now),
		eval:     eval.NewEvalHarness(opts.Eval),
		store:    opts.Store,
		logger:   opts.Logger,
		now:      opts.Now,
	}

	if e.store != nil {
		mems, err := e.store.LoadMemories()
		if err != nil {
			return nil, fmt.Errorf("restore memories: %w", err)
		}
		bank.Restore(mems)
		gen, err := e.store.LoadGenealogy(0)
		if err != nil {
			return nil, fmt.Errorf("restore genealogy: %w", err)
		}
		e.registry.RestoreGenealogy(gen)
		e.logger.Info("restored engine state",
			zap.Int("memories", bank.Len()),
			zap.Int("genealogy", len(gen)))
	}
	return e, nil
}

// #endregion

// #region score

// Score scores one input with the default sustain strategy and records the
// attempt.
func (e *Engine) Score(ctx context.Context, in paradox.Input) (ScoreResult, error) {
	if err := ctx.Err(); err != nil {
		return ScoreResult{}, err
	}
	syn, rec, err := e.attempt(in, paradox.StrategySustain, "score")
	if err != nil {
		return ScoreResult{}, err
	}
	return ScoreResult{
		Synthesis:       syn,
		ParadoxID:       rec.ParadoxID,
		ResolutionState: rec.CurrentState,
		Stats:           e.Stats(),
	}, nil
}

// attempt scores, validates, records and, on success, remembers one input.
func (e *Engine) attempt(in paradox.Input, strategy paradox.Strategy, stage string) (paradox.Synthesis, registry.Record, error) {
	syn, err := e.scorer.Score(in, strategy)
	if err != nil {
		if !errors.Is(err, paradox.ErrInvalidInput) {
			e.logger.Error("scoring failed",
				zap.String("stage", stage),
				zap.String("session", in.SessionID),
				zap.String("input", excerpt(in.Thesis, in.Antithesis)),
				zap.Error(err))
		}
		return paradox.Synthesis{}, registry.Record{}, err
	}

	if res := e.eval.Run(syn); !res.Passed {
		e.logger.Error("synthesis failed validation",
			zap.String("stage", stage),
			zap.String("session", in.SessionID),
			zap.String("contentHash", syn.ContentHash),
			zap.String("input", excerpt(in.Thesis, in.Antithesis)),
			zap.String("reason", res.Reason))
	}

	rec := e.registry.RecordAttempt(in, syn, strategy)
	if syn.Metrics.PhiGate > registry.SuccessThreshold {
		e.remember(rec.Thesis, rec.Antithesis, syn)
	}

	e.logger.Debug("paradox scored",
		zap.String("stage", stage),
		zap.String("paradoxId", rec.ParadoxID),
		zap.String("category", string(syn.Type)),
		zap.Float64("phiGate", syn.Metrics.PhiGate),
		zap.String("state", string(rec.CurrentState)))
	e.audit(logging.ProvenanceEntry{
		ContentHash:  syn.ContentHash,
		SessionID:    in.SessionID,
		ParadoxID:    rec.ParadoxID,
		Stage:        stage,
		Decision:     string(rec.CurrentState),
		Reason:       fmt.Sprintf("phiGate %.4f path %s", syn.Metrics.PhiGate, syn.ResolutionPath),
		InputExcerpt: excerpt(in.Thesis, in.Antithesis),
	})
	return syn, rec, nil
}

func (e *Engine) remember(thesis, antithesis string, syn paradox.Synthesis) memory.ParadoxMemory {
	var symbol string
	if len(syn.Overlay) > 0 {
		symbol = syn.Overlay[0]
	}
	return e.bank.Store(memory.Resolution{
		Thesis:         thesis,
		Antithesis:     antithesis,
		ResolutionPath: string(syn.ResolutionPath),
		PhiGate:        syn.Metrics.PhiGate,
		Symbol:         symbol,
	})
}

// #endregion

// #region batch-resolve

// BatchResolve re-scores each active paradox under strategy. Unknown or
// already resolved IDs are skipped; attempts that stay below the success
// threshold fail.
func (e *Engine) BatchResolve(ctx context.Context, ids []string, strategy paradox.Strategy) BatchResult {
	results := make([]BatchItem, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			results = append(results, BatchItem{ParadoxID: id, Status: BatchFailed, Reason: err.Error()})
			continue
		}
		results = append(results, e.resolveOne(id, strategy))
	}
	return BatchResult{Results: results, QuantumCoherence: e.coherence()}
}

func (e *Engine) resolveOne(id string, strategy paradox.Strategy) BatchItem {
	rec, err := e.registry.Get(id)
	if err != nil {
		return BatchItem{ParadoxID: id, Status: BatchSkipped, Reason: "paradox not found"}
	}
	if rec.CurrentState.Terminal() {
		return BatchItem{ParadoxID: id, Status: BatchSkipped, Reason: "already " + string(rec.CurrentState), PhiGate: rec.BestPhiGate()}
	}

	syn, updated, err := e.attempt(rec.Input, strategy, "batch")
	if err != nil {
		return BatchItem{ParadoxID: id, Status: BatchFailed, Reason: err.Error()}
	}
	if !updated.CurrentState.Terminal() {
		return BatchItem{
			ParadoxID: id,
			Status:    BatchFailed,
			Reason:    fmt.Sprintf("phiGate %.4f below %.4f", syn.Metrics.PhiGate, registry.SuccessThreshold),
			PhiGate:   syn.Metrics.PhiGate,
		}
	}
	return BatchItem{ParadoxID: id, Status: BatchResolved, Reason: string(updated.CurrentState), PhiGate: syn.Metrics.PhiGate}
}

// #endregion

// #region archive

// ArchiveResolved moves every terminal record into the genealogy and
// reinforces the memory bank with each archived resolution.
func (e *Engine) ArchiveResolved(ctx context.Context) (ArchiveResult, error) {
	if err := ctx.Err(); err != nil {
		return ArchiveResult{}, err
	}
	res := e.registry.Archive()

	for _, rec := range res.Archived {
		if rec.Synthesis != nil {
			e.remember(rec.Thesis, rec.Antithesis, *rec.Synthesis)
		}
		e.audit(logging.ProvenanceEntry{
			ParadoxID:    rec.ParadoxID,
			SessionID:    rec.Input.SessionID,
			ContentHash:  contentHash(rec),
			Stage:        "archive",
			Decision:     "archived",
			Reason:       string(rec.CurrentState),
			InputExcerpt: excerpt(rec.Thesis, rec.Antithesis),
		})
	}

	if err := e.persist(res.Entries()); err != nil {
		return ArchiveResult{}, err
	}

	e.logger.Info("archived resolved paradoxes",
		zap.Int("archived", len(res.Archived)),
		zap.Int("remaining", res.Remaining),
		zap.Int("genealogy", res.GenealogySize))

	return ArchiveResult{
		Archived:      len(res.Archived),
		Remaining:     res.Remaining,
		GenealogySize: res.GenealogySize,
	}, nil
}

// #endregion

// #region stats

// Stats reports the aggregate engine state.
func (e *Engine) Stats() Stats {
	return Stats{
		ActiveParadoxes:  e.registry.Len(),
		QuantumCoherence: e.coherence(),
		MemorySize:       e.bank.Len(),
		AverageBaseline:  e.bank.AverageBaseline(),
		GenealogySize:    e.registry.GenealogySize(),
	}
}

func (e *Engine) coherence() float64 {
	return signals.Finite(e.registry.Coherence(e.bank.AverageBaseline()), signals.InversePhi)
}

// Registry exposes the active registry for read access.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Bank exposes the memory bank for read access.
func (e *Engine) Bank() *memory.Bank {
	return e.bank
}

// #endregion

// #region close

// Close persists the memory bank and closes the store. It is safe to call
// more than once.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		if e.store == nil {
			return
		}
		e.closeErr = e.persist(nil)
		if err := e.store.Close(); err != nil && e.closeErr == nil {
			e.closeErr = fmt.Errorf("close store: %w", err)
		}
	})
	return e.closeErr
}

// #endregion

// #region persist

// persist writes entries plus any previously failed genealogy, then
// snapshots the memory bank. Unwritten entries stay pending.
func (e *Engine) persist(entries []registry.GenealogyEntry) error {
	if e.store == nil {
		return nil
	}
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	batch := make([]registry.GenealogyEntry, 0, len(e.pending)+len(entries))
	batch = append(batch, e.pending...)
	batch = append(batch, entries...)
	if len(batch) > 0 {
		if err := e.store.AppendGenealogy(batch); err != nil {
			e.pending = batch
			e.logger.Error("genealogy write failed",
				zap.Int("pending", len(batch)),
				zap.Error(err))
			return fmt.Errorf("persist genealogy: %w", err)
		}
		e.pending = nil
	}
	if err := e.store.SaveMemories(e.bank.Entries()); err != nil {
		return fmt.Errorf("persist memories: %w", err)
	}
	return nil
}

// PendingGenealogy reports how many archived entries still await a
// successful store write.
func (e *Engine) PendingGenealogy() int {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()
	return len(e.pending)
}

// #endregion

// #region helpers

func (e *Engine) audit(entry logging.ProvenanceEntry) {
	if e.store == nil {
		return
	}
	entry.CreatedAt = e.now().UTC()
	if err := logging.LogDecision(e.store.DB(), entry); err != nil {
		e.logger.Error("provenance write failed",
			zap.String("stage", entry.Stage),
			zap.String("paradoxId", entry.ParadoxID),
			zap.Error(err))
	}
}

func excerpt(thesis, antithesis string) string {
	return paradox.Excerpt(thesis, 60) + " | " + paradox.Excerpt(antithesis, 60)
}

func contentHash(rec registry.Record) string {
	if rec.Synthesis == nil {
		return ""
	}
	return rec.Synthesis.ContentHash
}

// #endregion
