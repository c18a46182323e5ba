package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/marcosbot/marcos/internal/store"
)

// #region fixture-types

// Fixture is the top-level JSON structure for an exported chain.
type Fixture struct {
	Description string       `json:"description"`
	ChainID     int64        `json:"chain_id"`
	Transitions []Transition `json:"transitions"`
}

// Transition is one counter in storage form. From and To are word keys,
// so the phrase boundaries appear as INIT and TERM.
type Transition struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Frequency uint64 `json:"frequency"`
}

// Lister reads every transition of a chain. *store.Store implements it.
type Lister interface {
	List(ctx context.Context, chainID int64) ([]store.Transition, error)
}

// Incrementer adds observations to a chain. Both *store.Store and
// *markov.MemoryStore implement it.
type Incrementer interface {
	IncrementBy(ctx context.Context, chainID int64, from, to string, n uint64) error
}

// #endregion fixture-types

// #region export

// Export snapshots chainID from src.
func Export(ctx context.Context, src Lister, chainID int64, description string) (*Fixture, error) {
	rows, err := src.List(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("export chain %d: %w", chainID, err)
	}
	f := &Fixture{Description: description, ChainID: chainID, Transitions: make([]Transition, 0, len(rows))}
	for _, r := range rows {
		if r.Frequency == 0 {
			continue
		}
		f.Transitions = append(f.Transitions, Transition{From: r.From, To: r.To, Frequency: r.Frequency})
	}
	return f, nil
}

// #endregion export

// #region fixture-loader

// Load reads and parses a JSON fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Save writes f to path as indented JSON.
func (f *Fixture) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// Apply adds every counter of f to dst under f.ChainID. Counters add up,
// so applying the same fixture twice doubles its frequencies.
func (f *Fixture) Apply(ctx context.Context, dst Incrementer) error {
	for i, t := range f.Transitions {
		if t.From == "" || t.To == "" {
			return fmt.Errorf("fixture transition %d: empty state", i)
		}
		if t.Frequency == 0 {
			continue
		}
		if err := dst.IncrementBy(ctx, f.ChainID, t.From, t.To, t.Frequency); err != nil {
			return fmt.Errorf("apply transition %d: %w", i, err)
		}
	}
	return nil
}

// #endregion fixture-loader
