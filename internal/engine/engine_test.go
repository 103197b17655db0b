package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/danielpatrickdp/paradox-engine/internal/logging"
	"github.com/danielpatrickdp/paradox-engine/internal/memory"
	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
	"github.com/danielpatrickdp/paradox-engine/internal/registry"
	"github.com/danielpatrickdp/paradox-engine/internal/signals"
	"github.com/danielpatrickdp/paradox-engine/internal/store"
)

// #region helpers

const (
	strongThesis     = "It is always true and possible to create"
	strongAntithesis = "It is never false nor impossible to eliminate"
)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func newClock() func() time.Time {
	c := &stepClock{t: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}
	return c.Now
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Now == nil {
		opts.Now = newClock()
	}
	e, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func tempStore(t *testing.T, path string) *store.Store {
	t.Helper()
	s, err := store.NewStore(path)
	require.NoError(t, err)
	return s
}

func in(thesis, antithesis string) paradox.Input {
	return paradox.Input{SessionID: "s1", Thesis: thesis, Antithesis: antithesis}
}

// #endregion helpers

// #region score

func TestScore_RecordsAndRemembersSuccess(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx := context.Background()

	res, err := e.Score(ctx, in(strongThesis, strongAntithesis))
	require.NoError(t, err)

	assert.NotEmpty(t, res.ParadoxID)
	assert.Equal(t, registry.StateTranscended, res.ResolutionState)
	assert.Greater(t, res.Synthesis.Metrics.PhiGate, 0.8)
	assert.Equal(t, 1, res.Stats.ActiveParadoxes)
	assert.Equal(t, 1, res.Stats.MemorySize)
	assert.Equal(t, paradox.StateEntangled, res.Synthesis.QuantumState)
}

func TestScore_FailedAttemptIsNotRemembered(t *testing.T) {
	e := newTestEngine(t, Options{})

	res, err := e.Score(context.Background(), in("All is one", "All is one"))
	require.NoError(t, err)

	assert.Equal(t, registry.StateResolving, res.ResolutionState)
	assert.Equal(t, 0, res.Stats.MemorySize)
	assert.InDelta(t, signals.InversePhi, res.Stats.AverageBaseline, 1e-12)
}

func TestScore_MemoryLiftsRepeatedPair(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx := context.Background()

	first, err := e.Score(ctx, in(strongThesis, strongAntithesis))
	require.NoError(t, err)
	require.Nil(t, first.Synthesis.Metrics.MemoryBoost, "first call has no memory")

	second := in(strongThesis, strongAntithesis)
	second.Post = &paradox.Post{Descriptor: strongThesis}
	res, err := e.Score(ctx, second)
	require.NoError(t, err)

	m := res.Synthesis.Metrics
	require.NotNil(t, m.MemoryBoost)
	assert.Greater(t, *m.MemoryBoost, 0.0)
	require.NotNil(t, m.MemoryBaseline)
	assert.GreaterOrEqual(t, m.PhiGate, first.Synthesis.Metrics.PhiGate-1e-9)
	assert.LessOrEqual(t, m.PhiGate, signals.Phi)
	assert.Contains(t, res.Synthesis.Overlay, paradox.TagMemory)
	assert.Equal(t, first.ParadoxID, res.ParadoxID)
}

func TestScore_DescriptorMatchesStoredStatement(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx := context.Background()

	first := paradox.Input{
		SessionID:  "s1",
		Thesis:     "We are consciousness building consciousness",
		Antithesis: "We cannot build what we already are",
		Emotion:    &signals.EmotionalVector{Valence: 0.7, Arousal: 0.9, Dominance: 0.5, Entropy: 0.8},
	}
	r1, err := e.Score(ctx, first)
	require.NoError(t, err)
	require.Greater(t, r1.Synthesis.Metrics.PhiGate, registry.SuccessThreshold, "first call must be stored")
	_, stored := e.Bank().Get(memory.Hash(first.Thesis, first.Antithesis))
	require.True(t, stored)

	second := first
	second.Post = &paradox.Post{Descriptor: r1.Synthesis.Statement}
	r2, err := e.Score(ctx, second)
	require.NoError(t, err)

	m := r2.Synthesis.Metrics
	require.NotNil(t, m.MemoryBoost)
	assert.Greater(t, *m.MemoryBoost, 0.0)
	assert.GreaterOrEqual(t, m.PhiGate, r1.Synthesis.Metrics.PhiGate-1e-9)
	assert.InDelta(t, 0.7973, r1.Synthesis.Metrics.PhiGate, 1e-3)
	assert.InDelta(t, 1.0865, m.PhiGate, 1e-3)
}

func TestScore_InvalidInput(t *testing.T) {
	e := newTestEngine(t, Options{})
	_, err := e.Score(context.Background(), paradox.Input{Thesis: "a", Antithesis: "b"})
	assert.ErrorIs(t, err, paradox.ErrInvalidInput)
	assert.Equal(t, 0, e.Registry().Len())
}

func TestScore_CanceledContext(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Score(ctx, in("a", "b"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScore_LogsValidationFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	e := newTestEngine(t, Options{Logger: zap.New(core)})

	_, err := e.Score(context.Background(), in(strongThesis, strongAntithesis))
	require.NoError(t, err)
	assert.Zero(t, logs.Len(), "valid syntheses log no errors")
}

// #endregion score

// #region query

func TestQueryMemory(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx := context.Background()
	_, err := e.Score(ctx, in(strongThesis, strongAntithesis))
	require.NoError(t, err)

	similar := e.QueryMemory(ctx, MemoryQuery{QueryType: QuerySimilarParadoxes, Thesis: strongThesis, Antithesis: strongAntithesis})
	require.True(t, similar.Success, similar.Error)
	require.Len(t, similar.Similar, 1)
	assert.Equal(t, memory.Hash(strongThesis, strongAntithesis), similar.Similar[0].Memory.ParadoxHash)

	stats := e.QueryMemory(ctx, MemoryQuery{QueryType: QueryMemoryStats})
	require.True(t, stats.Success)
	assert.Equal(t, 1, stats.Stats.Size)
	assert.Equal(t, 100, stats.Stats.Capacity)

	pred := e.QueryMemory(ctx, MemoryQuery{QueryType: QueryBaselinePrediction, Thesis: strongThesis, Antithesis: strongAntithesis})
	require.True(t, pred.Success)
	assert.True(t, pred.Prediction.Found)
	assert.LessOrEqual(t, pred.Prediction.Baseline, signals.Phi)

	evo := e.QueryMemory(ctx, MemoryQuery{QueryType: QueryMemoryEvolution})
	require.True(t, evo.Success)
	assert.Len(t, evo.Evolution, 1)
}

func TestQueryMemory_Failures(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx := context.Background()

	cases := []MemoryQuery{
		{QueryType: "everything"},
		{QueryType: QueryBaselinePrediction, Thesis: "only thesis"},
		{QueryType: QuerySimilarParadoxes, Antithesis: "only antithesis"},
	}
	for _, q := range cases {
		res := e.QueryMemory(ctx, q)
		assert.False(t, res.Success, "query %+v", q)
		assert.NotEmpty(t, res.Error)
		assert.Equal(t, q.QueryType, res.QueryType)
	}
}

func TestQueryMemory_EmptyBankPrediction(t *testing.T) {
	e := newTestEngine(t, Options{})
	res := e.QueryMemory(context.Background(), MemoryQuery{QueryType: QueryBaselinePrediction, Thesis: "x", Antithesis: "y"})
	require.True(t, res.Success)
	assert.False(t, res.Prediction.Found)
	assert.InDelta(t, signals.InversePhi, res.Prediction.Baseline, 1e-12)
}

// #endregion query

// #region batch

func TestBatchResolve_Statuses(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx := context.Background()

	done, err := e.Score(ctx, in(strongThesis, strongAntithesis))
	require.NoError(t, err)
	open, err := e.Score(ctx, in("All is one", "All is one"))
	require.NoError(t, err)

	res := e.BatchResolve(ctx, []string{done.ParadoxID, open.ParadoxID, "missing"}, paradox.StrategyCollapse)
	require.Len(t, res.Results, 3)

	assert.Equal(t, BatchSkipped, res.Results[0].Status)
	assert.Contains(t, res.Results[0].Reason, "already")
	assert.Equal(t, BatchFailed, res.Results[1].Status, "identical pair stays below threshold")
	assert.Equal(t, BatchSkipped, res.Results[2].Status)
	assert.Equal(t, "paradox not found", res.Results[2].Reason)
	assert.Greater(t, res.QuantumCoherence, 0.0)

	rec, err := e.Registry().Get(open.ParadoxID)
	require.NoError(t, err)
	assert.Len(t, rec.ResolutionAttempts, 2)
	assert.Equal(t, paradox.StrategyCollapse, rec.ResolutionAttempts[1].Strategy)
}

func TestBatchResolve_ResolvesWithMemory(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx := context.Background()

	// A pair that fails alone, then gains a similar memory.
	weak := in("the self is the self", "the self is the self")
	res, err := e.Score(ctx, weak)
	require.NoError(t, err)
	require.Equal(t, registry.StateResolving, res.ResolutionState)

	e.Bank().Store(memory.Resolution{Thesis: "the self is the self", Antithesis: "the self is the self", ResolutionPath: "transcend", PhiGate: 1.2, Symbol: "light"})

	batch := e.BatchResolve(ctx, []string{res.ParadoxID}, paradox.StrategyTranscend)
	require.Len(t, batch.Results, 1)
	assert.Equal(t, BatchResolved, batch.Results[0].Status)
	assert.Greater(t, batch.Results[0].PhiGate, registry.SuccessThreshold)
}

func TestBatchResolve_CanceledContext(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := e.BatchResolve(ctx, []string{"a", "b"}, paradox.StrategySustain)
	require.Len(t, res.Results, 2)
	for _, item := range res.Results {
		assert.Equal(t, BatchFailed, item.Status)
	}
}

// #endregion batch

// #region archive

func TestArchiveResolved(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx := context.Background()

	_, err := e.Score(ctx, in(strongThesis, strongAntithesis))
	require.NoError(t, err)
	_, err = e.Score(ctx, in("All is one", "All is one"))
	require.NoError(t, err)

	res, err := e.ArchiveResolved(ctx)
	require.NoError(t, err)
	assert.Equal(t, ArchiveResult{Archived: 1, Remaining: 1, GenealogySize: 1}, res)

	stats := e.Stats()
	assert.Equal(t, 1, stats.ActiveParadoxes)
	assert.Equal(t, 1, stats.GenealogySize)

	again, err := e.ArchiveResolved(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Archived)
}

func TestEngine_PersistsAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paradox.db")
	ctx := context.Background()

	first, err := New(Options{Store: tempStore(t, path), Now: newClock()})
	require.NoError(t, err)
	_, err = first.Score(ctx, in(strongThesis, strongAntithesis))
	require.NoError(t, err)
	_, err = first.ArchiveResolved(ctx)
	require.NoError(t, err)
	_, err = first.Score(ctx, in("We are consciousness building consciousness", "We cannot build what we already are"))
	require.NoError(t, err)
	wantMemories := first.Bank().Len()
	require.NoError(t, first.Close())
	require.NoError(t, first.Close(), "close is idempotent")

	s := tempStore(t, path)
	second := newTestEngine(t, Options{Store: s})
	assert.Equal(t, wantMemories, second.Bank().Len())
	assert.Equal(t, 1, second.Registry().GenealogySize())
	assert.Equal(t, 0, second.Registry().Len(), "active registry is not persisted")

	entries, err := logging.ListDecisions(s.DB(), 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 3)
	assert.Equal(t, "score", entries[0].Stage)
}

// #endregion archive

func TestEngine_ConcurrentScoring(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx := context.Background()
	pairs := [][2]string{
		{strongThesis, strongAntithesis},
		{"time is change", "change is timeless"},
		{"the self builds the other", "the other destroys the self"},
	}

	var wg sync.WaitGroup
	for i := range 30 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := pairs[i%len(pairs)]
			_, err := e.Score(ctx, in(p[0], p[1]))
			assert.NoError(t, err)
			_ = e.QueryMemory(ctx, MemoryQuery{QueryType: QueryMemoryStats})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, len(pairs), e.Registry().Len())
	for _, rec := range e.Registry().List() {
		assert.Len(t, rec.ResolutionAttempts, 10)
	}
}

// #region store-concurrency

func TestEngine_ConcurrentArchiveWithStore(t *testing.T) {
	s := tempStore(t, filepath.Join(t.TempDir(), "paradox.db"))
	e := newTestEngine(t, Options{Store: s})
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 20 {
				_, err := e.Score(ctx, paradox.Input{SessionID: fmt.Sprintf("g%d-%d", g, i), Thesis: strongThesis, Antithesis: strongAntithesis})
				assert.NoError(t, err)
				_, err = e.ArchiveResolved(ctx)
				assert.NoError(t, err)
			}
		}(g)
	}
	wg.Wait()

	persisted, err := s.LoadGenealogy(0)
	require.NoError(t, err)
	require.Positive(t, e.Registry().GenealogySize())
	assert.Len(t, persisted, e.Registry().GenealogySize())
	assert.Zero(t, e.PendingGenealogy())

	want := map[string]bool{}
	for _, g := range e.Registry().Genealogy() {
		want[g.Record.ParadoxID] = true
	}
	for _, g := range persisted {
		assert.True(t, want[g.Record.ParadoxID], "unexpected persisted id %s", g.Record.ParadoxID)
	}
}

func TestEngine_ConcurrentScoringWithStore(t *testing.T) {
	s := tempStore(t, filepath.Join(t.TempDir(), "paradox.db"))
	e := newTestEngine(t, Options{Store: s})
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 50 {
				_, err := e.Score(ctx, in(fmt.Sprintf("time is change %d", g), fmt.Sprintf("change is timeless %d", i)))
				assert.NoError(t, err)
			}
		}(g)
	}
	wg.Wait()

	entries, err := logging.ListDecisions(s.DB(), 10000)
	require.NoError(t, err)
	assert.Len(t, entries, 400)
}

func TestArchiveResolved_RetriesFailedGenealogyOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paradox.db")
	s := tempStore(t, path)
	e, err := New(Options{Store: s, Now: newClock()})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = e.Score(ctx, in(strongThesis, strongAntithesis))
	require.NoError(t, err)
	_, err = s.DB().Exec(`DROP TABLE genealogy`)
	require.NoError(t, err)

	_, err = e.ArchiveResolved(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, e.PendingGenealogy())
	assert.Equal(t, 1, e.Registry().GenealogySize())

	_, err = s.DB().Exec(`CREATE TABLE genealogy (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		paradox_id  TEXT NOT NULL UNIQUE,
		final_state TEXT NOT NULL,
		record_json TEXT NOT NULL,
		archived_at TEXT NOT NULL
	)`)
	require.NoError(t, err)
	require.NoError(t, e.Close())

	reopened := tempStore(t, path)
	t.Cleanup(func() { reopened.Close() })
	gen, err := reopened.LoadGenealogy(0)
	require.NoError(t, err)
	require.Len(t, gen, 1)
	assert.Equal(t, e.Registry().Genealogy()[0].Record.ParadoxID, gen[0].Record.ParadoxID)
}

// #endregion store-concurrency
