package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcosbot/marcos/internal/logging"
	"github.com/marcosbot/marcos/internal/phraser"
)

func init() {
	learnCmd := &cobra.Command{
		Use:   "learn FILE",
		Short: "Feed a corpus into the chain, one phrase per line",
		Long: `Stores every non-blank line of FILE as a phrase of the chain selected
with --chat. Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: runLearn,
	}

	sayCmd := &cobra.Command{
		Use:   "say [WORDS...]",
		Short: "Print a random phrase, or grow the given words into one",
		RunE:  runSay,
	}
	sayCmd.Flags().Bool("before", true, "extend the given words backward")
	sayCmd.Flags().Bool("after", true, "extend the given words forward")

	haikuCmd := &cobra.Command{
		Use:   "haiku [SEED...]",
		Short: "Print a 5-7-5 haiku, optionally starting with SEED",
		RunE:  runHaiku,
	}

	rootCmd.AddCommand(learnCmd, sayCmd, haikuCmd)
}

func runLearn(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("learn: %w", err)
		}
		defer f.Close()
		in = f
	}

	n := 0
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := a.phraser.StorePhrase(ctx, a.cfg.ChatID, line); err != nil {
			return fmt.Errorf("learn line %d: %w", n+1, err)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("learn: read %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Learned %d phrases into chat %d.\n", n, a.cfg.ChatID)
	return nil
}

func runSay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	entry := logging.GenerationEntry{ChainID: a.cfg.ChatID, Kind: "phrase"}
	var text string
	if len(args) == 0 {
		text, err = a.phraser.GeneratePhrase(ctx, a.cfg.ChatID)
	} else {
		before, _ := cmd.Flags().GetBool("before")
		after, _ := cmd.Flags().GetBool("after")
		entry.Kind = "extend"
		entry.Input = strings.Join(args, " ")
		text, err = a.phraser.ExtendPhrase(ctx, a.cfg.ChatID, entry.Input, before, after)
	}
	entry.Output = text
	if err != nil {
		entry.Outcome = logging.OutcomeError
	}
	if _, rerr := a.recorder.Record(entry); rerr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", rerr)
	}
	if err != nil {
		return err
	}
	if text == "" {
		return errors.New("say: the chain has no transitions yet")
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func runHaiku(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	seed := strings.Join(args, " ")
	res, err := a.phraser.ComposeHaiku(ctx, a.cfg.ChatID, seed)

	entry := logging.GenerationEntry{
		ChainID:  a.cfg.ChatID,
		Kind:     "haiku",
		Input:    seed,
		Output:   strings.Join(res.Lines, "\n"),
		Attempts: res.Attempts,
	}
	switch {
	case errors.Is(err, phraser.ErrImpossibleHaiku):
		entry.Outcome = logging.OutcomeImpossible
	case err != nil:
		entry.Outcome = logging.OutcomeError
	}
	if _, rerr := a.recorder.Record(entry); rerr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", rerr)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(res.Lines, "\n"))
	return nil
}
