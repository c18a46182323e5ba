package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcosbot/marcos/internal/fixture"
)

func init() {
	exportCmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the chain selected with --chat to a JSON fixture",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().String("description", "", "description stored in the fixture")

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Add the counters of a JSON fixture to a chain",
		Long: `Adds every transition of FILE to the chain it was exported from, or to
the chain given with --chat. Counters add up with what is already stored.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	rootCmd.AddCommand(exportCmd, importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	desc, _ := cmd.Flags().GetString("description")
	f, err := fixture.Export(ctx, a.store, a.cfg.ChatID, desc)
	if err != nil {
		return err
	}
	if err := f.Save(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transitions of chat %d to %s\n", len(f.Transitions), f.ChainID, args[0])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := fixture.Load(args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("chat") {
		f.ChainID = a.cfg.ChatID
	}
	if err := f.Apply(ctx, a.store); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transitions into chat %d\n", len(f.Transitions), f.ChainID)
	return nil
}
