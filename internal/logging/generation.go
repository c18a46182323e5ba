package logging

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS generation_log (
	id          TEXT PRIMARY KEY,
	chain_id    INTEGER NOT NULL,
	kind        TEXT NOT NULL,
	input       TEXT,
	output      TEXT,
	outcome     TEXT NOT NULL,
	attempts    INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_generation_chain ON generation_log(chain_id, created_at);
`

// EnsureSchema creates the generation_log table if needed.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("generation log schema: %w", err)
	}
	return nil
}
// #endregion schema

// #region log-generation
// LogGeneration writes entry to the generation_log table and returns its id.
// An empty ID gets a fresh UUID.
func LogGeneration(db *sql.DB, entry GenerationEntry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Outcome == "" {
		entry.Outcome = OutcomeOK
	}

	_, err := db.Exec(
		`INSERT INTO generation_log (id, chain_id, kind, input, output, outcome, attempts, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.ChainID,
		entry.Kind,
		nullIfEmpty(entry.Input),
		nullIfEmpty(entry.Output),
		entry.Outcome,
		entry.Attempts,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("log generation: %w", err)
	}
	return entry.ID, nil
}
// #endregion log-generation

// #region recent
// Recent returns up to n entries of a chain, newest first.
func Recent(db *sql.DB, chainID int64, n int) ([]GenerationEntry, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := db.Query(
		`SELECT id, chain_id, kind, COALESCE(input, ''), COALESCE(output, ''), outcome, attempts, created_at
		 FROM generation_log WHERE chain_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		chainID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("recent generations: %w", err)
	}
	defer rows.Close()

	var out []GenerationEntry
	for rows.Next() {
		var e GenerationEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.ChainID, &e.Kind, &e.Input, &e.Output, &e.Outcome, &e.Attempts, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}
// #endregion recent

// #region recorder
// Recorder logs generations to a database. A nil *Recorder records nothing.
type Recorder struct {
	db *sql.DB
}

// NewRecorder ensures the schema and returns a Recorder over db.
func NewRecorder(db *sql.DB) (*Recorder, error) {
	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	return &Recorder{db: db}, nil
}

// Record writes entry, returning its id.
func (r *Recorder) Record(entry GenerationEntry) (string, error) {
	if r == nil {
		return "", nil
	}
	return LogGeneration(r.db, entry)
}
// #endregion recorder

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
