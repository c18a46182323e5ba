package main

import (
	"cmp"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/marcosbot/marcos/internal/logging"
	"github.com/marcosbot/marcos/internal/phraser"
	"github.com/marcosbot/marcos/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to marcos.db")
	chatID := flag.Int64("chat", 1, "chain (chat) id to inspect")
	from := flag.String("from", "", "show the words that followed this word")
	to := flag.String("to", "", "show the words that preceded this word")
	logN := flag.Int("log", 0, "show the N most recent generations")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/marcos.db [--chat N] [--from W | --to W | --log N] [--json]")
		os.Exit(2)
	}

	ctx := context.Background()
	s, err := store.Open(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	switch {
	case *from != "" || *to != "":
		err = runTransitionsMode(ctx, s, *chatID, *from, *to, *jsonOut)
	case *logN > 0:
		err = runLogMode(s, *chatID, *logN, *jsonOut)
	default:
		err = runSummaryMode(ctx, s, *chatID, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region summary-mode

type summary struct {
	ChainID int64       `json:"chain_id"`
	Chains  []int64     `json:"chains"`
	Stats   store.Stats `json:"stats"`
	Top     []topRow    `json:"top"`
}

type topRow struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Frequency uint64 `json:"frequency"`
}

const topN = 10

func runSummaryMode(ctx context.Context, s *store.Store, chatID int64, jsonOut bool) error {
	chains, err := s.Chains(ctx)
	if err != nil {
		return err
	}
	st, err := s.Stats(ctx, chatID)
	if err != nil {
		return err
	}
	rows, err := s.List(ctx, chatID)
	if err != nil {
		return err
	}

	top := make([]topRow, 0, len(rows))
	for _, r := range rows {
		top = append(top, topRow{From: r.From, To: r.To, Frequency: r.Frequency})
	}
	slices.SortStableFunc(top, func(a, b topRow) int {
		return cmp.Compare(b.Frequency, a.Frequency)
	})
	if len(top) > topN {
		top = top[:topN]
	}

	out := summary{ChainID: chatID, Chains: chains, Stats: st, Top: top}
	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Chains:       %s\n", joinIDs(chains))
	fmt.Printf("Chat:         %d\n", chatID)
	fmt.Printf("Transitions:  %d\n", st.Transitions)
	fmt.Printf("Observations: %d\n", st.Observations)
	fmt.Printf("States:       %d\n", st.States)
	if len(top) == 0 {
		return nil
	}
	fmt.Println()
	fmt.Printf("%-20s  %-20s  %9s\n", "From", "To", "Frequency")
	fmt.Printf("%-20s+-%-20s+-%9s\n", "--------------------", "--------------------", "---------")
	for _, r := range top {
		fmt.Printf("%-20s  %-20s  %9d\n", r.From, r.To, r.Frequency)
	}
	return nil
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return "(none)"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

// #endregion summary-mode

// #region transitions-mode

func runTransitionsMode(ctx context.Context, s *store.Store, chatID int64, from, to string, jsonOut bool) error {
	p := phraser.New(s, nil)

	var (
		ts    []phraser.Transition
		err   error
		label string
	)
	if from != "" {
		ts, err = p.TransitionsFrom(ctx, chatID, from)
		label = fmt.Sprintf("After %q", from)
	} else {
		ts, err = p.TransitionsTo(ctx, chatID, to)
		label = fmt.Sprintf("Before %q", to)
	}
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(ts)
	}
	if len(ts) == 0 {
		fmt.Fprintln(os.Stderr, "no transitions found")
		return nil
	}

	fmt.Printf("%s in chat %d:\n", label, chatID)
	for _, t := range ts {
		fmt.Printf("  %-20s  %6.2f%%\n", t.Word, t.Probability*100)
	}
	return nil
}

// #endregion transitions-mode

// #region log-mode

type logRow struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Input     string `json:"input,omitempty"`
	Output    string `json:"output,omitempty"`
	Outcome   string `json:"outcome"`
	Attempts  int    `json:"attempts,omitempty"`
	CreatedAt string `json:"created_at"`
}

func runLogMode(s *store.Store, chatID int64, n int, jsonOut bool) error {
	if err := logging.EnsureSchema(s.DB()); err != nil {
		return err
	}
	entries, err := logging.Recent(s.DB(), chatID, n)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no generations found")
		return nil
	}

	rows := make([]logRow, len(entries))
	for i, e := range entries {
		rows[i] = logRow{
			ID:        e.ID,
			Kind:      e.Kind,
			Input:     e.Input,
			Output:    e.Output,
			Outcome:   e.Outcome,
			Attempts:  e.Attempts,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-8s  %-7s  %-10s  %3s  %-20s  %s\n", "ID", "Kind", "Outcome", "Try", "Time", "Output")
	fmt.Printf("%-8s+-%-7s+-%-10s+-%3s+-%-20s+-%s\n",
		"--------", "-------", "----------", "---", "--------------------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-8s  %-7s  %-10s  %3d  %-20s  %s\n",
			shortID(r.ID), r.Kind, r.Outcome, r.Attempts, r.CreatedAt, oneLine(r.Output))
	}
	return nil
}

// #endregion log-mode

// #region helpers

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " / ")
}

// #endregion helpers
