package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-decision
// LogDecision writes a provenance entry to the provenance_log table.
func LogDecision(db *sql.DB, entry ProvenanceEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO provenance_log (content_hash, session_id, paradox_id, stage, decision, reason, input_excerpt, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullIfEmpty(entry.ContentHash),
		nullIfEmpty(entry.SessionID),
		nullIfEmpty(entry.ParadoxID),
		entry.Stage,
		entry.Decision,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.InputExcerpt),
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// #endregion log-decision

// #region list-decisions
// ListDecisions returns the most recent provenance entries, newest first.
func ListDecisions(db *sql.DB, limit int) ([]ProvenanceEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(
		`SELECT content_hash, session_id, paradox_id, stage, decision, reason, input_excerpt, created_at
		 FROM provenance_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var entries []ProvenanceEntry
	for rows.Next() {
		var (
			e                                         ProvenanceEntry
			hash, session, paradoxID, reason, excerpt sql.NullString
			createdAt                                 string
		)
		if err := rows.Scan(&hash, &session, &paradoxID, &e.Stage, &e.Decision, &reason, &excerpt, &createdAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		e.ContentHash = hash.String
		e.SessionID = session.String
		e.ParadoxID = paradoxID.String
		e.Reason = reason.String
		e.InputExcerpt = excerpt.String
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion list-decisions

// #region helpers
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
