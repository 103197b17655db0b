package logging

import "time"

// #region provenance-entry
// ProvenanceEntry is a single row in the provenance_log table.
type ProvenanceEntry struct {
	ContentHash  string
	SessionID    string
	ParadoxID    string
	Stage        string // "score" | "batch" | "archive"
	Decision     string // resulting registry state, or "archived" / "rejected"
	Reason       string
	InputExcerpt string
	CreatedAt    time.Time
}

// #endregion provenance-entry

// #region logger-config
// LoggerConfig selects the zap encoder and level.
type LoggerConfig struct {
	Level       string // debug | info | warn | error
	Development bool   // console encoder with caller and stack traces
}

// #endregion logger-config
