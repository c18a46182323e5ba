package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/marcosbot/marcos/internal/markov"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS transitions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	chain_id    INTEGER NOT NULL,
	from_state  TEXT NOT NULL,
	to_state    TEXT NOT NULL,
	frequency   INTEGER NOT NULL DEFAULT 0 CHECK (frequency >= 0),
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	UNIQUE(chain_id, from_state, to_state)
);
CREATE INDEX IF NOT EXISTS idx_transitions_from ON transitions(chain_id, from_state);
CREATE INDEX IF NOT EXISTS idx_transitions_to ON transitions(chain_id, to_state);
`

// #endregion schema

// #region types

// Transition is one stored counter.
type Transition struct {
	ChainID   int64     `json:"chain_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Frequency uint64    `json:"frequency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats summarizes a chain.
type Stats struct {
	Transitions  int    `json:"transitions"`
	Observations uint64 `json:"observations"`
	States       int    `json:"states"`
}

// Store keeps word-chain transitions in SQLite. It implements
// markov.TransitionStore.
type Store struct {
	db *sql.DB
}

var _ markov.TransitionStore = (*Store)(nil)

// #endregion types

// #region constructor

// Open opens (or creates) the database at path and runs migrations.
// ":memory:" gives a private throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases
	// shared between queries.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for the roster and the generation log.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region increment

// Increment records one observation of from -> to.
func (s *Store) Increment(ctx context.Context, chainID int64, from, to string) error {
	return s.IncrementBy(ctx, chainID, from, to, 1)
}

// IncrementBy adds n observations of from -> to, creating the row if needed.
// It is a single upsert, so concurrent callers never lose counts.
func (s *Store) IncrementBy(ctx context.Context, chainID int64, from, to string, n uint64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transitions (chain_id, from_state, to_state, frequency, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(chain_id, from_state, to_state) DO UPDATE SET
		   frequency = transitions.frequency + excluded.frequency,
		   updated_at = excluded.updated_at`,
		chainID, from, to, int64(n), now, now,
	)
	if err != nil {
		return fmt.Errorf("increment %q -> %q: %w", from, to, err)
	}
	return nil
}

// #endregion increment

// #region queries

// From returns the states that followed from, in insertion order.
func (s *Store) From(ctx context.Context, chainID int64, from string) ([]markov.Count, error) {
	return s.counts(ctx,
		`SELECT to_state, frequency FROM transitions
		 WHERE chain_id = ? AND from_state = ? AND frequency > 0
		 ORDER BY id`,
		chainID, from)
}

// To returns the states that preceded to, in insertion order.
func (s *Store) To(ctx context.Context, chainID int64, to string) ([]markov.Count, error) {
	return s.counts(ctx,
		`SELECT from_state, frequency FROM transitions
		 WHERE chain_id = ? AND to_state = ? AND frequency > 0
		 ORDER BY id`,
		chainID, to)
}

func (s *Store) counts(ctx context.Context, query string, args ...any) ([]markov.Count, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var out []markov.Count
	for rows.Next() {
		var c markov.Count
		var freq int64
		if err := rows.Scan(&c.Key, &freq); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		c.Frequency = uint64(freq)
		out = append(out, c)
	}
	return out, rows.Err()
}

// List returns every transition of a chain in insertion order.
func (s *Store) List(ctx context.Context, chainID int64) ([]Transition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chain_id, from_state, to_state, frequency, created_at, updated_at
		 FROM transitions WHERE chain_id = ? ORDER BY id`,
		chainID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var t Transition
		var freq int64
		var createdAt, updatedAt string
		if err := rows.Scan(&t.ChainID, &t.From, &t.To, &freq, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		t.Frequency = uint64(freq)
		t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Stats counts the rows, observations and distinct states of a chain.
func (s *Store) Stats(ctx context.Context, chainID int64) (Stats, error) {
	var st Stats
	var obs int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(frequency), 0) FROM transitions WHERE chain_id = ?`,
		chainID,
	).Scan(&st.Transitions, &obs)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	st.Observations = uint64(obs)

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (
		   SELECT from_state FROM transitions WHERE chain_id = ?
		   UNION
		   SELECT to_state FROM transitions WHERE chain_id = ?
		 )`,
		chainID, chainID,
	).Scan(&st.States)
	if err != nil {
		return Stats{}, fmt.Errorf("stats states: %w", err)
	}
	return st, nil
}

// Chains lists the ids of every chain with at least one transition.
func (s *Store) Chains(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT chain_id FROM transitions ORDER BY chain_id`)
	if err != nil {
		return nil, fmt.Errorf("list chains: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// #endregion queries
