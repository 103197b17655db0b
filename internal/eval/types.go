package eval

import "github.com/danielpatrickdp/paradox-engine/internal/signals"

// #region eval-config
// EvalConfig holds thresholds for post-score validation.
type EvalConfig struct {
	MaxPhiGate      float64 // reject if the gate exceeds this cap
	HashLength      int     // expected hex length of the content hash
	MinOverlayTags  int     // reject overlays shorter than this
	TensionBaseline float64 // warn if tension rises above baseline
}

// DefaultEvalConfig returns the defaults for synthesis validation.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MaxPhiGate:      signals.Phi,
		HashLength:      64,
		MinOverlayTags:  1,
		TensionBaseline: 0.95,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of post-score validation.
type EvalResult struct {
	Passed  bool         `json:"passed"`
	Metrics []EvalMetric `json:"metrics"`
	Reason  string       `json:"reason"`
}

// #endregion eval-result
