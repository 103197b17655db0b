package registry

// #region imports
import (
	"errors"
	"time"

	"github.com/danielpatrickdp/paradox-engine/internal/gate"
	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
)

// #endregion

var (
	// ErrNotFound is returned for unknown paradox IDs.
	ErrNotFound = errors.New("paradox not found")
	// ErrNotResolved is returned when a record has not reached a terminal state.
	ErrNotResolved = errors.New("paradox not resolved")
)

// #region state

// State is the lifecycle state of an active paradox.
type State string

const (
	StateUnresolved  State = "unresolved"
	StateResolving   State = "resolving"
	StateSynthesized State = "synthesized"
	StateTranscended State = "transcended"
)

// Terminal reports whether s is eligible for archival.
func (s State) Terminal() bool {
	return s == StateSynthesized || s == StateTranscended
}

// #endregion state

// #region record

// Attempt is one scoring call against a record.
type Attempt struct {
	Strategy       paradox.Strategy `json:"strategy"`
	PhiGate        float64          `json:"phiGate"`
	ResolutionPath gate.Path        `json:"resolutionPath"`
	ContentHash    string           `json:"contentHash"`
	Success        bool             `json:"success"`
	At             time.Time        `json:"at"`
}

// Record is an active paradox accumulating resolution attempts.
type Record struct {
	ParadoxID          string             `json:"paradoxId"`
	Thesis             string             `json:"thesis"`
	Antithesis         string             `json:"antithesis"`
	TensionScore       float64            `json:"tensionScore"`
	ResolutionAttempts []Attempt          `json:"resolutionAttempts"`
	CurrentState       State              `json:"currentState"`
	CreatedAt          time.Time          `json:"createdAt"`
	LastModifiedAt     time.Time          `json:"lastModifiedAt"`
	Synthesis          *paradox.Synthesis `json:"synthesis,omitempty"`
	Input              paradox.Input      `json:"input"` // input that produced Synthesis
}

// BestPhiGate returns the highest gate across attempts, or 0 without any.
func (r Record) BestPhiGate() float64 {
	var best float64
	for i, a := range r.ResolutionAttempts {
		if i == 0 || a.PhiGate > best {
			best = a.PhiGate
		}
	}
	return best
}

// clone returns a copy that shares no mutable slices with r.
func (r Record) clone() Record {
	out := r
	out.ResolutionAttempts = append([]Attempt(nil), r.ResolutionAttempts...)
	if r.Synthesis != nil {
		s := *r.Synthesis
		out.Synthesis = &s
	}
	return out
}

// GenealogyEntry is an archived record.
type GenealogyEntry struct {
	Record     Record    `json:"record"`
	ArchivedAt time.Time `json:"archivedAt"`
}

// ArchiveResult summarizes one archive pass.
type ArchiveResult struct {
	Archived      []Record  `json:"archived"`
	ArchivedAt    time.Time `json:"archivedAt"`
	Remaining     int       `json:"remaining"`
	GenealogySize int       `json:"genealogySize"`
}

// Entries returns the genealogy entries this pass appended.
func (a ArchiveResult) Entries() []GenealogyEntry {
	out := make([]GenealogyEntry, len(a.Archived))
	for i, rec := range a.Archived {
		out[i] = GenealogyEntry{Record: rec, ArchivedAt: a.ArchivedAt}
	}
	return out
}

// #endregion record
