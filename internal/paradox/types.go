package paradox

// #region imports
import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/paradox-engine/internal/gate"
	"github.com/danielpatrickdp/paradox-engine/internal/signals"
)

// #endregion

// ErrInvalidInput is returned for call shapes the scorer cannot accept.
var ErrInvalidInput = errors.New("invalid paradox input")

// #region target-sync

// TargetSync is the synchronisation mode of a post-selection target.
type TargetSync string

const (
	SyncPassive   TargetSync = "Passive"
	SyncActive    TargetSync = "Active"
	SyncRecursive TargetSync = "Recursive"
)

// Valid reports whether s is empty or a known mode.
func (s TargetSync) Valid() bool {
	switch s {
	case "", SyncPassive, SyncActive, SyncRecursive:
		return true
	}
	return false
}

// #endregion

// #region input

// Post is the optional post-selection target of a scoring call.
type Post struct {
	TargetCoherence *float64   `json:"targetCoherence,omitempty"`
	TargetSync      TargetSync `json:"targetSync,omitempty"`
	Descriptor      string     `json:"descriptor,omitempty"`
}

// Input is one scoring request.
type Input struct {
	SessionID  string                   `json:"sessionId"`
	Thesis     string                   `json:"thesis"`
	Antithesis string                   `json:"antithesis"`
	Emotion    *signals.EmotionalVector `json:"emotion,omitempty"`
	Post       *Post                    `json:"post,omitempty"`
}

// Validate checks the required string fields and the target sync tag.
func (in Input) Validate() error {
	switch {
	case strings.TrimSpace(in.SessionID) == "":
		return fmt.Errorf("%w: sessionId is required", ErrInvalidInput)
	case strings.TrimSpace(in.Thesis) == "":
		return fmt.Errorf("%w: thesis is required", ErrInvalidInput)
	case strings.TrimSpace(in.Antithesis) == "":
		return fmt.Errorf("%w: antithesis is required", ErrInvalidInput)
	}
	if in.Post != nil && !in.Post.TargetSync.Valid() {
		return fmt.Errorf("%w: unknown targetSync %q", ErrInvalidInput, in.Post.TargetSync)
	}
	return nil
}

// sanitized returns a copy with every numeric field finite and in range.
func (in Input) sanitized() Input {
	out := in
	if in.Emotion != nil {
		e := in.Emotion.Sanitize()
		out.Emotion = &e
	}
	if in.Post != nil {
		p := *in.Post
		if p.TargetCoherence != nil {
			tc := signals.Bounded01(*p.TargetCoherence, 0.5)
			p.TargetCoherence = &tc
		}
		out.Post = &p
	}
	return out
}

// target returns the T2 text for two-state gating, or false without a post.
func (in Input) target() (string, bool) {
	if in.Post == nil {
		return "", false
	}
	if d := strings.TrimSpace(in.Post.Descriptor); d != "" {
		return d, true
	}
	return in.Antithesis, true
}

// #endregion

// #region category

// Category is the synthesis type selected for a pair.
type Category string

const (
	CategoryDialectical  Category = "dialectical"
	CategoryRecursive    Category = "recursive"
	CategoryTranscendent Category = "transcendent"
)

// #endregion

// #region strategy

// Strategy is the resolution strategy tag supplied by the caller.
type Strategy string

const (
	StrategyCollapse  Strategy = "collapse"
	StrategySustain   Strategy = "sustain"
	StrategyTranscend Strategy = "transcend"
)

// ParseStrategy validates a strategy tag.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyCollapse, StrategySustain, StrategyTranscend:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, s)
}

// QuantumState is the decorative state label derived from a strategy.
type QuantumState string

const (
	StateCollapsed     QuantumState = "collapsed"
	StateEntangled     QuantumState = "entangled"
	StateSuperposition QuantumState = "superposition"
)

// QuantumStateFor maps a strategy to its state label.
func QuantumStateFor(s Strategy) QuantumState {
	switch s {
	case StrategyCollapse:
		return StateCollapsed
	case StrategyTranscend:
		return StateSuperposition
	default:
		return StateEntangled
	}
}

// #endregion

// #region output

// Metrics are the scalar results of one scoring call.
type Metrics struct {
	Similarity      float64  `json:"similarity"`
	Tension         float64  `json:"tension"`
	Opposition      float64  `json:"opposition"`
	Complexity      float64  `json:"complexity"`
	PhiGate         float64  `json:"phiGate"`
	EmotionalDelta  float64  `json:"emotionalDelta"`
	TwoStateSupport *float64 `json:"twoStateSupport,omitempty"`
	MemoryBaseline  *float64 `json:"memoryBaseline,omitempty"`
	MemoryBoost     *float64 `json:"memoryBoost,omitempty"`
}

// Synthesis is the immutable result of a scoring call.
type Synthesis struct {
	Type           Category     `json:"type"`
	Overlay        []string     `json:"overlay"`
	Statement      string       `json:"statement"`
	Metrics        Metrics      `json:"metrics"`
	ContentHash    string       `json:"contentHash"`
	Timestamp      string       `json:"timestamp"`
	ResolutionPath gate.Path    `json:"resolutionPath"`
	QuantumState   QuantumState `json:"quantumState"`
}

// #endregion
