package store

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/paradox-engine/internal/memory"
	"github.com/danielpatrickdp/paradox-engine/internal/registry"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS paradox_memories (
	paradox_hash       TEXT PRIMARY KEY,
	thesis             TEXT NOT NULL,
	antithesis         TEXT NOT NULL,
	resolution_path    TEXT NOT NULL,
	coherence_delta    REAL NOT NULL,
	final_coherence    REAL NOT NULL,
	timestamp_ms       INTEGER NOT NULL,
	context_embedding  BLOB NOT NULL,
	synthesis_symbol   TEXT,
	baseline_coherence REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS genealogy (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	paradox_id    TEXT NOT NULL UNIQUE,
	final_state   TEXT NOT NULL,
	record_json   TEXT NOT NULL,
	archived_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS provenance_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	content_hash  TEXT,
	session_id    TEXT,
	paradox_id    TEXT,
	stage         TEXT NOT NULL,
	decision      TEXT NOT NULL,
	reason        TEXT,
	input_excerpt TEXT,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store persists the memory bank and the genealogy in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection serializes writers; SQLite allows only one at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an already-migrated database. Callers sharing it
// across goroutines should limit it to one open connection.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region memories
// SaveMemories replaces the persisted bank with mems in one transaction.
func (s *Store) SaveMemories(mems []memory.ParadoxMemory) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM paradox_memories`); err != nil {
		return fmt.Errorf("clear memories: %w", err)
	}
	for _, m := range mems {
		_, err := tx.Exec(
			`INSERT INTO paradox_memories (paradox_hash, thesis, antithesis, resolution_path, coherence_delta,
			 final_coherence, timestamp_ms, context_embedding, synthesis_symbol, baseline_coherence)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ParadoxHash, m.Thesis, m.Antithesis, m.ResolutionPath, m.CoherenceDelta,
			m.FinalCoherence, m.TimestampMs, encodeEmbedding(m.ContextEmbedding), nullIfEmpty(m.SynthesisSymbol),
			m.BaselineCoherence,
		)
		if err != nil {
			return fmt.Errorf("insert memory %s: %w", m.ParadoxHash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadMemories reads every persisted memory, oldest first.
func (s *Store) LoadMemories() ([]memory.ParadoxMemory, error) {
	rows, err := s.db.Query(
		`SELECT paradox_hash, thesis, antithesis, resolution_path, coherence_delta, final_coherence,
		 timestamp_ms, context_embedding, synthesis_symbol, baseline_coherence
		 FROM paradox_memories ORDER BY timestamp_ms ASC, paradox_hash ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	var mems []memory.ParadoxMemory
	for rows.Next() {
		var (
			m      memory.ParadoxMemory
			emb    []byte
			symbol sql.NullString
		)
		if err := rows.Scan(&m.ParadoxHash, &m.Thesis, &m.Antithesis, &m.ResolutionPath, &m.CoherenceDelta,
			&m.FinalCoherence, &m.TimestampMs, &emb, &symbol, &m.BaselineCoherence); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		m.ContextEmbedding = decodeEmbedding(emb)
		m.SynthesisSymbol = symbol.String
		mems = append(mems, m)
	}
	return mems, rows.Err()
}

// #endregion memories

// #region genealogy
// AppendGenealogy records archived paradoxes. Re-archiving an ID replaces it.
func (s *Store) AppendGenealogy(entries []registry.GenealogyEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		recJSON, err := json.Marshal(e.Record)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", e.Record.ParadoxID, err)
		}
		_, err = tx.Exec(
			`INSERT INTO genealogy (paradox_id, final_state, record_json, archived_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(paradox_id) DO UPDATE SET final_state = excluded.final_state,
			 record_json = excluded.record_json, archived_at = excluded.archived_at`,
			e.Record.ParadoxID, string(e.Record.CurrentState), string(recJSON), e.ArchivedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert genealogy %s: %w", e.Record.ParadoxID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadGenealogy reads archived paradoxes in archive order. A positive limit
// keeps only the most recent entries.
func (s *Store) LoadGenealogy(limit int) ([]registry.GenealogyEntry, error) {
	query := `SELECT record_json, archived_at FROM genealogy ORDER BY id ASC`
	args := []any{}
	if limit > 0 {
		query = `SELECT record_json, archived_at FROM
			(SELECT id, record_json, archived_at FROM genealogy ORDER BY id DESC LIMIT ?) ORDER BY id ASC`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query genealogy: %w", err)
	}
	defer rows.Close()

	var entries []registry.GenealogyEntry
	for rows.Next() {
		var recJSON, archivedAt string
		if err := rows.Scan(&recJSON, &archivedAt); err != nil {
			return nil, fmt.Errorf("scan genealogy: %w", err)
		}
		var e registry.GenealogyEntry
		if err := json.Unmarshal([]byte(recJSON), &e.Record); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		e.ArchivedAt, err = time.Parse(time.RFC3339Nano, archivedAt)
		if err != nil {
			return nil, fmt.Errorf("parse archived_at: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion genealogy

// #region embedding-encoding
func encodeEmbedding(e memory.Embedding) []byte {
	buf := make([]byte, memory.EmbeddingDims*8)
	for i, f := range e {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeEmbedding(b []byte) memory.Embedding {
	var e memory.Embedding
	for i := range e {
		if i*8+8 <= len(b) {
			e[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
		}
	}
	return e
}

// #endregion embedding-encoding

// #region helpers
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
