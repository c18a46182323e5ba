package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marcosbot/marcos/internal/config"
	"github.com/marcosbot/marcos/internal/rpc"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Ask a running marcos serve for phrases and haikus",
}

func init() {
	remoteCmd.PersistentFlags().String("addr", "", "server address (default localhost:50151)")

	remoteCmd.AddCommand(&cobra.Command{
		Use:   "say",
		Short: "Print a random phrase from the server",
		Args:  cobra.NoArgs,
		RunE:  runRemoteSay,
	}, &cobra.Command{
		Use:   "haiku [SEED...]",
		Short: "Print a haiku from the server",
		RunE:  runRemoteHaiku,
	})
	rootCmd.AddCommand(remoteCmd)
}

func dialRemote(cmd *cobra.Command) (*rpc.Client, config.Config, error) {
	cfg := config.LoadFrom(viper.GetViper())
	addr := cfg.GRPCAddr
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}
	c, err := rpc.Dial(addr)
	return c, cfg, err
}

func runRemoteSay(cmd *cobra.Command, _ []string) error {
	c, cfg, err := dialRemote(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	text, err := c.GeneratePhrase(cmd.Context(), cfg.ChatID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func runRemoteHaiku(cmd *cobra.Command, args []string) error {
	c, cfg, err := dialRemote(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	lines, err := c.GenerateHaiku(cmd.Context(), cfg.ChatID, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
	return nil
}
