package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/danielpatrickdp/paradox-engine/internal/signals"
)

// #region bank-struct

// Bank is a bounded, time-ordered store of past resolutions. All mutations
// happen under a single write lock, so readers never observe a partially
// inserted or evicted entry.
type Bank struct {
	mu      sync.RWMutex
	config  BankConfig
	now     Clock
	entries map[string]*entry
	seq     uint64
}

type entry struct {
	mem ParadoxMemory
	seq uint64 // insertion order, breaks timestamp ties
}

// NewBank creates an empty bank. A nil clock uses time.Now.
func NewBank(config BankConfig, now Clock) *Bank {
	if config.Capacity <= 0 {
		config.Capacity = DefaultBankConfig().Capacity
	}
	if config.MaxSimilar <= 0 {
		config.MaxSimilar = DefaultBankConfig().MaxSimilar
	}
	if now == nil {
		now = time.Now
	}
	return &Bank{
		config:  config,
		now:     now,
		entries: make(map[string]*entry),
	}
}

// #endregion bank-struct

// #region store

// Store archives a resolution. A recurring pair keeps the best baseline and
// delta it has ever reached; new pairs are inserted and the oldest entries
// are evicted once the bank exceeds capacity.
func (b *Bank) Store(res Resolution) ParadoxMemory {
	hash := Hash(res.Thesis, res.Antithesis)
	gate := signals.Finite(res.PhiGate, 0)
	delta := gate - ResolvedThreshold

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	nowMs := b.now().UnixMilli()

	if e, ok := b.entries[hash]; ok {
		e.mem.CoherenceDelta = max(e.mem.CoherenceDelta, delta)
		e.mem.BaselineCoherence = max(e.mem.BaselineCoherence, gate)
		e.mem.FinalCoherence = gate
		e.mem.ResolutionPath = res.ResolutionPath
		if res.Symbol != "" {
			e.mem.SynthesisSymbol = res.Symbol
		}
		e.mem.TimestampMs = nowMs
		e.seq = b.seq
		return e.mem
	}

	mem := ParadoxMemory{
		ParadoxHash:       hash,
		Thesis:            res.Thesis,
		Antithesis:        res.Antithesis,
		ResolutionPath:    res.ResolutionPath,
		CoherenceDelta:    delta,
		FinalCoherence:    gate,
		TimestampMs:       nowMs,
		ContextEmbedding:  Embed(res.Thesis, res.Antithesis),
		SynthesisSymbol:   res.Symbol,
		BaselineCoherence: gate,
	}
	b.entries[hash] = &entry{mem: mem, seq: b.seq}
	b.evictLocked()
	return mem
}

// evictLocked drops oldest-by-timestamp entries until the bank is at capacity.
func (b *Bank) evictLocked() {
	for len(b.entries) > b.config.Capacity {
		var oldest *entry
		for _, e := range b.entries {
			if oldest == nil || older(e, oldest) {
				oldest = e
			}
		}
		delete(b.entries, oldest.mem.ParadoxHash)
	}
}

func older(a, b *entry) bool {
	if a.mem.TimestampMs != b.mem.TimestampMs {
		return a.mem.TimestampMs < b.mem.TimestampMs
	}
	return a.seq < b.seq
}

// #endregion store

// #region find-similar

// ConfiguredThreshold asks FindSimilar to use BankConfig.SimilarityThreshold.
const ConfiguredThreshold = -1

// FindSimilar returns up to MaxSimilar entries within threshold of the pair's
// embedding, nearest first. A threshold of 0 keeps exact embedding matches
// only; a negative threshold uses the configured one.
func (b *Bank) FindSimilar(thesis, antithesis string, threshold float64) []Match {
	if threshold < 0 {
		threshold = b.config.SimilarityThreshold
	}
	query := Embed(thesis, antithesis)

	b.mu.RLock()
	type ranked struct {
		Match
		seq uint64
	}
	var found []ranked
	for _, e := range b.entries {
		d := Distance(query, e.mem.ContextEmbedding)
		if d <= threshold {
			found = append(found, ranked{Match{Memory: e.mem, Distance: d}, e.seq})
		}
	}
	b.mu.RUnlock()

	sort.Slice(found, func(i, j int) bool {
		if found[i].Distance != found[j].Distance {
			return found[i].Distance < found[j].Distance
		}
		return found[i].seq > found[j].seq
	})

	n := min(len(found), b.config.MaxSimilar)
	matches := make([]Match, n)
	for i := range n {
		matches[i] = found[i].Match
	}
	return matches
}

// #endregion find-similar

// #region predict

// Predict derives the starting baseline for a pair from similar past
// resolutions. Without similar entries the baseline is φ−1 and Found is false.
func (b *Bank) Predict(thesis, antithesis string) Prediction {
	similar := b.FindSimilar(thesis, antithesis, ConfiguredThreshold)
	if len(similar) == 0 {
		return Prediction{Baseline: ResolvedThreshold}
	}

	var maxBaseline, deltaSum float64
	for i, m := range similar {
		if i == 0 || m.Memory.BaselineCoherence > maxBaseline {
			maxBaseline = m.Memory.BaselineCoherence
		}
		deltaSum += m.Memory.CoherenceDelta
	}
	avgDelta := deltaSum / float64(len(similar))
	bonus := min(0.2, float64(len(similar))*0.05)

	baseline := min(Phi, maxBaseline+avgDelta*0.3+bonus)
	return Prediction{
		Found:            true,
		Baseline:         signals.Finite(baseline, ResolvedThreshold),
		MaxBaseline:      maxBaseline,
		AverageDelta:     avgDelta,
		ProgressiveBonus: bonus,
		Boost:            signals.Bounded01(avgDelta+bonus, 0),
		SimilarCount:     len(similar),
	}
}

// #endregion predict

// #region reads

// Len returns the number of stored entries.
func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Capacity returns the configured maximum size.
func (b *Bank) Capacity() int {
	return b.config.Capacity
}

// Get returns the entry for a pair hash.
func (b *Bank) Get(hash string) (ParadoxMemory, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[hash]
	if !ok {
		return ParadoxMemory{}, false
	}
	return e.mem, true
}

// Entries returns a copy of all entries, oldest first.
func (b *Bank) Entries() []ParadoxMemory {
	b.mu.RLock()
	ordered := make([]*entry, 0, len(b.entries))
	for _, e := range b.entries {
		ordered = append(ordered, e)
	}
	b.mu.RUnlock()

	sort.Slice(ordered, func(i, j int) bool { return older(ordered[i], ordered[j]) })
	out := make([]ParadoxMemory, len(ordered))
	for i, e := range ordered {
		out[i] = e.mem
	}
	return out
}

// AverageBaseline is the mean baseline over all entries, or φ−1 when empty.
// Entries are summed oldest first so identical banks give identical bits.
func (b *Bank) AverageBaseline() float64 {
	entries := b.Entries()
	if len(entries) == 0 {
		return ResolvedThreshold
	}
	var sum float64
	for _, m := range entries {
		sum += m.BaselineCoherence
	}
	return sum / float64(len(entries))
}

// Stats summarizes the bank.
func (b *Bank) Stats() Stats {
	entries := b.Entries()
	st := Stats{
		Size:            len(entries),
		Capacity:        b.config.Capacity,
		AverageBaseline: ResolvedThreshold,
		PathCounts:      make(map[string]int),
	}
	if len(entries) == 0 {
		return st
	}

	var baseSum, deltaSum float64
	for i, m := range entries {
		baseSum += m.BaselineCoherence
		deltaSum += m.CoherenceDelta
		if i == 0 || m.BaselineCoherence > st.MaxBaseline {
			st.MaxBaseline = m.BaselineCoherence
		}
		st.PathCounts[m.ResolutionPath]++
	}
	st.AverageBaseline = baseSum / float64(len(entries))
	st.AverageDelta = deltaSum / float64(len(entries))
	st.OldestMs = entries[0].TimestampMs
	st.NewestMs = entries[len(entries)-1].TimestampMs
	return st
}

// Evolution returns the most recent limit entries in chronological order.
func (b *Bank) Evolution(limit int) []EvolutionPoint {
	entries := b.Entries()
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	points := make([]EvolutionPoint, len(entries))
	for i, m := range entries {
		points[i] = EvolutionPoint{
			ParadoxHash:       m.ParadoxHash,
			TimestampMs:       m.TimestampMs,
			BaselineCoherence: m.BaselineCoherence,
			CoherenceDelta:    m.CoherenceDelta,
			ResolutionPath:    m.ResolutionPath,
		}
	}
	return points
}

// #endregion reads

// #region restore

// Restore replaces the bank contents with previously persisted entries.
// Entries are ordered by timestamp and trimmed to capacity.
func (b *Bank) Restore(mems []ParadoxMemory) {
	sorted := make([]ParadoxMemory, len(mems))
	copy(sorted, mems)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TimestampMs < sorted[j].TimestampMs })

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = make(map[string]*entry, len(sorted))
	for _, m := range sorted {
		b.seq++
		b.entries[m.ParadoxHash] = &entry{mem: m, seq: b.seq}
	}
	b.evictLocked()
}

// #endregion restore
