package roster

// #region imports
import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// #endregion imports

// #region types

// User is a chat member the bot has seen speak.
type User struct {
	UserID    int64
	ChainID   int64
	FirstName string
	LastName  string
	Username  string
}

// DisplayName is the name used when the bot talks about the user:
// the first name, else the last name, else @username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	case u.Username != "":
		return "@" + u.Username
	}
	return fmt.Sprintf("user%d", u.UserID)
}

// #endregion types

// #region store

// Roster keeps chat members and per-chat word sets ("swords") in SQLite.
type Roster struct {
	db *sql.DB
}

// New creates the users and swords tables if needed and returns a roster.
func New(db *sql.DB) (*Roster, error) {
	r := &Roster{db: db}
	if err := r.init(); err != nil {
		return nil, fmt.Errorf("roster schema: %w", err)
	}
	return r, nil
}

func (r *Roster) init() error {
	_, err := r.db.Exec(`
	CREATE TABLE IF NOT EXISTS users (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     INTEGER NOT NULL,
		chain_id    INTEGER NOT NULL,
		first_name  TEXT,
		last_name   TEXT,
		username    TEXT,
		UNIQUE(user_id, chain_id)
	);
	CREATE TABLE IF NOT EXISTS swords (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		chain_id    INTEGER NOT NULL,
		set_name    TEXT NOT NULL,
		word        TEXT NOT NULL,
		UNIQUE(chain_id, set_name, word)
	)`)
	return err
}

// AddUser remembers u in its chat. Known users are left untouched.
func (r *Roster) AddUser(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (user_id, chain_id, first_name, last_name, username)
		 VALUES (?, ?, ?, ?, ?)`,
		u.UserID, u.ChainID, nullIfEmpty(u.FirstName), nullIfEmpty(u.LastName), nullIfEmpty(u.Username),
	)
	if err != nil {
		return fmt.Errorf("add user %d: %w", u.UserID, err)
	}
	return nil
}

// Users returns the members seen in a chat, oldest first.
func (r *Roster) Users(ctx context.Context, chainID int64) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, chain_id, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(username, '')
		 FROM users WHERE chain_id = ? ORDER BY id`,
		chainID,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.UserID, &u.ChainID, &u.FirstName, &u.LastName, &u.Username); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// AddSword adds word to the named set of a chat. Words are stored lower-cased.
func (r *Roster) AddSword(ctx context.Context, chainID int64, set, word string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO swords (chain_id, set_name, word) VALUES (?, ?, ?)`,
		chainID, strings.ToLower(set), strings.ToLower(word),
	)
	if err != nil {
		return fmt.Errorf("add sword %q to %q: %w", word, set, err)
	}
	return nil
}

// Swords returns the words of one set, in insertion order.
func (r *Roster) Swords(ctx context.Context, chainID int64, set string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT word FROM swords WHERE chain_id = ? AND set_name = ? ORDER BY id`,
		chainID, strings.ToLower(set),
	)
	if err != nil {
		return nil, fmt.Errorf("list swords: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// AllSwords returns every set of a chat keyed by set name.
func (r *Roster) AllSwords(ctx context.Context, chainID int64) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT set_name, word FROM swords WHERE chain_id = ? ORDER BY id`,
		chainID,
	)
	if err != nil {
		return nil, fmt.Errorf("list swords: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var set, w string
		if err := rows.Scan(&set, &w); err != nil {
			return nil, err
		}
		out[set] = append(out[set], w)
	}
	return out, rows.Err()
}

// #endregion store

// #region helpers
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
