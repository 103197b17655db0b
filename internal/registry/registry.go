package registry

// #region imports
import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/paradox-engine/internal/memory"
	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
	"github.com/danielpatrickdp/paradox-engine/internal/signals"
)

// #endregion

// Thresholds for the attempt state machine.
const (
	SuccessThreshold   = signals.InversePhi
	TranscendThreshold = 0.8
)

// #region registry

// Registry holds active paradoxes keyed by ID, with a pair index so repeated
// scoring of the same thesis/antithesis accumulates on one record.
type Registry struct {
	mu        sync.RWMutex
	records   map[string]*Record
	byPair    map[string]string
	genealogy []GenealogyEntry
	now       func() time.Time
	newID     func() string
}

// New creates an empty registry. A nil clock uses time.Now.
func New(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		records: make(map[string]*Record),
		byPair:  make(map[string]string),
		now:     now,
		newID:   uuid.NewString,
	}
}

// RecordAttempt appends a scoring result to the record for the input's pair,
// creating the record on first sight, and advances its state.
func (r *Registry) RecordAttempt(in paradox.Input, syn paradox.Synthesis, strategy paradox.Strategy) Record {
	now := r.now().UTC()
	key := memory.Hash(in.Thesis, in.Antithesis)

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[r.byPair[key]]
	if !ok {
		rec = &Record{
			ParadoxID:    r.newID(),
			Thesis:       in.Thesis,
			Antithesis:   in.Antithesis,
			CurrentState: StateUnresolved,
			CreatedAt:    now,
		}
		r.records[rec.ParadoxID] = rec
		r.byPair[key] = rec.ParadoxID
	}

	gateValue := syn.Metrics.PhiGate
	rec.ResolutionAttempts = append(rec.ResolutionAttempts, Attempt{
		Strategy:       strategy,
		PhiGate:        gateValue,
		ResolutionPath: syn.ResolutionPath,
		ContentHash:    syn.ContentHash,
		Success:        gateValue > SuccessThreshold,
		At:             now,
	})
	if rec.Synthesis == nil || gateValue >= rec.Synthesis.Metrics.PhiGate {
		s := syn
		rec.Synthesis = &s
		rec.Input = in
	}
	rec.TensionScore = 100 * signals.Clamp01(syn.Metrics.Tension+syn.Metrics.Opposition)
	rec.CurrentState = Advance(rec.CurrentState, gateValue)
	rec.LastModifiedAt = now

	return rec.clone()
}

// Advance applies one attempt with the given gate to state s. Terminal states
// never regress; a synthesized record may still transcend.
func Advance(s State, phiGate float64) State {
	switch {
	case s == StateTranscended:
		return s
	case phiGate > TranscendThreshold:
		return StateTranscended
	case s == StateSynthesized:
		return s
	case phiGate > SuccessThreshold:
		return StateSynthesized
	default:
		return StateResolving
	}
}

// #endregion registry

// #region reads

// Get returns the record with the given ID.
func (r *Registry) Get(id string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return Record{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return rec.clone(), nil
}

// Lookup returns the active record for a pair.
func (r *Registry) Lookup(thesis, antithesis string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[r.byPair[memory.Hash(thesis, antithesis)]]
	if !ok {
		return Record{}, false
	}
	return rec.clone(), true
}

// List returns active records ordered by creation time.
func (r *Registry) List() []Record {
	r.mu.RLock()
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ParadoxID < out[j].ParadoxID
	})
	return out
}

// Len returns the number of active records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Genealogy returns archived records oldest first.
func (r *Registry) Genealogy() []GenealogyEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]GenealogyEntry, len(r.genealogy))
	for i, g := range r.genealogy {
		out[i] = GenealogyEntry{Record: g.Record.clone(), ArchivedAt: g.ArchivedAt}
	}
	return out
}

// GenealogySize returns the number of archived records.
func (r *Registry) GenealogySize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.genealogy)
}

// #endregion reads

// #region archive

// Archive moves every terminal record into the genealogy.
func (r *Registry) Archive() ArchiveResult {
	now := r.now().UTC()

	r.mu.Lock()
	var archived []Record
	for id, rec := range r.records {
		if !rec.CurrentState.Terminal() {
			continue
		}
		archived = append(archived, rec.clone())
		r.removeLocked(id)
	}
	sort.Slice(archived, func(i, j int) bool {
		if !archived[i].CreatedAt.Equal(archived[j].CreatedAt) {
			return archived[i].CreatedAt.Before(archived[j].CreatedAt)
		}
		return archived[i].ParadoxID < archived[j].ParadoxID
	})
	for _, rec := range archived {
		r.genealogy = append(r.genealogy, GenealogyEntry{Record: rec, ArchivedAt: now})
	}
	res := ArchiveResult{Archived: archived, ArchivedAt: now, Remaining: len(r.records), GenealogySize: len(r.genealogy)}
	r.mu.Unlock()

	return res
}

// ArchiveOne moves a single terminal record into the genealogy.
func (r *Registry) ArchiveOne(id string) (Record, error) {
	now := r.now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return Record{}, fmt.Errorf("archive %s: %w", id, ErrNotFound)
	}
	if !rec.CurrentState.Terminal() {
		return Record{}, fmt.Errorf("archive %s in state %s: %w", id, rec.CurrentState, ErrNotResolved)
	}
	out := rec.clone()
	r.removeLocked(id)
	r.genealogy = append(r.genealogy, GenealogyEntry{Record: out, ArchivedAt: now})
	return out, nil
}

func (r *Registry) removeLocked(id string) {
	rec := r.records[id]
	delete(r.byPair, memory.Hash(rec.Thesis, rec.Antithesis))
	delete(r.records, id)
}

// RestoreGenealogy replaces the genealogy with persisted entries.
func (r *Registry) RestoreGenealogy(entries []GenealogyEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.genealogy = append([]GenealogyEntry(nil), entries...)
}

// #endregion archive

// #region coherence

// Coherence blends the attempt-weighted mean of active records' best gates
// with the memory bank's average baseline. Without active records the bank
// average is returned unchanged.
func (r *Registry) Coherence(bankAverage float64) float64 {
	bankAverage = signals.Finite(bankAverage, signals.InversePhi)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var weighted, weights float64
	for _, rec := range r.sortedLocked() {
		n := float64(len(rec.ResolutionAttempts))
		if n == 0 {
			continue
		}
		weighted += rec.BestPhiGate() * n
		weights += n
	}
	if weights == 0 {
		return bankAverage
	}
	return 0.7*(weighted/weights) + 0.3*bankAverage
}

// sortedLocked returns active records by creation time then id. The caller
// holds r.mu.
func (r *Registry) sortedLocked() []*Record {
	out := make([]*Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ParadoxID < out[j].ParadoxID
	})
	return out
}

// #endregion coherence
