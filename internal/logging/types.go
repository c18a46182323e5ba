package logging

import "time"

// #region generation-entry
// GenerationEntry is a single row in the generation_log table.
type GenerationEntry struct {
	ID        string
	ChainID   int64
	Kind      string // "phrase" | "extend" | "haiku" | "store"
	Input     string
	Output    string
	Outcome   string // "ok" | "impossible" | "error"
	Attempts  int
	CreatedAt time.Time // defaults to now when zero
}
// #endregion generation-entry

// #region outcomes
const (
	OutcomeOK         = "ok"
	OutcomeImpossible = "impossible"
	OutcomeError      = "error"
)
// #endregion outcomes
