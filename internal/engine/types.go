package engine

// #region imports
import (
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/paradox-engine/internal/eval"
	"github.com/danielpatrickdp/paradox-engine/internal/gate"
	"github.com/danielpatrickdp/paradox-engine/internal/memory"
	"github.com/danielpatrickdp/paradox-engine/internal/paradox"
	"github.com/danielpatrickdp/paradox-engine/internal/registry"
	"github.com/danielpatrickdp/paradox-engine/internal/store"
)

// #endregion

// #region options

// Options wires an engine. Zero values select defaults; a nil Store keeps
// all state in memory.
type Options struct {
	Bank   memory.BankConfig
	Gate   gate.GateConfig
	Eval   eval.EvalConfig
	Store  *store.Store
	Logger *zap.Logger
	Now    func() time.Time
}

// #endregion

// #region stats

// Stats is the aggregate engine state reported with every mutation.
type Stats struct {
	ActiveParadoxes  int     `json:"activeParadoxes"`
	QuantumCoherence float64 `json:"quantumCoherence"`
	MemorySize       int     `json:"memorySize"`
	AverageBaseline  float64 `json:"averageBaseline"`
	GenealogySize    int     `json:"genealogySize"`
}

// #endregion

// #region score-result

// ScoreResult is a synthesis plus registry bookkeeping.
type ScoreResult struct {
	Synthesis       paradox.Synthesis `json:"synthesis"`
	ParadoxID       string            `json:"paradoxId"`
	ResolutionState registry.State    `json:"resolutionState"`
	Stats           Stats             `json:"stats"`
}

// #endregion

// #region memory-query

// QueryType selects the shape of a memory query.
type QueryType string

const (
	QuerySimilarParadoxes   QueryType = "similarParadoxes"
	QueryMemoryStats        QueryType = "memoryStats"
	QueryBaselinePrediction QueryType = "baselinePrediction"
	QueryMemoryEvolution    QueryType = "memoryEvolution"
)

// DefaultEvolutionLimit bounds memoryEvolution results when no limit is given.
const DefaultEvolutionLimit = 20

// MemoryQuery is a request against the memory bank.
type MemoryQuery struct {
	QueryType  QueryType `json:"queryType"`
	Thesis     string    `json:"thesis,omitempty"`
	Antithesis string    `json:"antithesis,omitempty"`
	Limit      int       `json:"limit,omitempty"`
}

// MemoryQueryResult carries exactly one populated payload on success.
type MemoryQueryResult struct {
	Success    bool                    `json:"success"`
	Error      string                  `json:"error,omitempty"`
	QueryType  QueryType               `json:"queryType"`
	Similar    []memory.Match          `json:"similar,omitempty"`
	Stats      *memory.Stats           `json:"stats,omitempty"`
	Prediction *memory.Prediction      `json:"prediction,omitempty"`
	Evolution  []memory.EvolutionPoint `json:"evolution,omitempty"`
}

// #endregion

// #region batch

// BatchStatus is the per-item outcome of a batch resolve.
type BatchStatus string

const (
	BatchResolved BatchStatus = "resolved"
	BatchSkipped  BatchStatus = "skipped"
	BatchFailed   BatchStatus = "failed"
)

// BatchItem reports one paradox of a batch.
type BatchItem struct {
	ParadoxID string      `json:"paradoxId"`
	Status    BatchStatus `json:"status"`
	Reason    string      `json:"reason,omitempty"`
	PhiGate   float64     `json:"phiGate,omitempty"`
}

// BatchResult is the outcome of a batch resolve.
type BatchResult struct {
	Results          []BatchItem `json:"results"`
	QuantumCoherence float64     `json:"quantumCoherence"`
}

// #endregion

// #region archive

// ArchiveResult counts one archive pass.
type ArchiveResult struct {
	Archived      int `json:"archived"`
	Remaining     int `json:"remaining"`
	GenealogySize int `json:"genealogySize"`
}

// #endregion
