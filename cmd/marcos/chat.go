package main

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/marcosbot/marcos/internal/bot"
	"github.com/marcosbot/marcos/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot line by line on stdin",
	Long: `Reads one message per line from stdin and prints the bot's answers.
Commands such as /haiku or /phrase work as they would in a group chat.
Type quit or exit to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Talk to the bot in a terminal UI",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	for _, c := range []*cobra.Command{chatCmd, tuiCmd} {
		c.Flags().String("chat-type", "", "chat type: private, group or supergroup")
		rootCmd.AddCommand(c)
	}
}

func chatType(cmd *cobra.Command, a *app) string {
	if t, _ := cmd.Flags().GetString("chat-type"); t != "" {
		return t
	}
	return a.cfg.ChatType
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	m := bot.NewConsoleMessenger(cmd.InOrStdin(), cmd.OutOrStdout(), a.cfg.ChatID, chatType(cmd, a))
	m.BotName = a.cfg.BotUsername
	b, err := a.newBot(ctx, m)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Marcos ready. DB: %s | chat %d\n", a.cfg.DBPath, a.cfg.ChatID)
	return b.Run(ctx)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// The UI owns the terminal, so logs go to a file or nowhere.
	if a.cfg.Verbose {
		f, err := tea.LogToFile("marcos.log", "marcos")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)
	}

	m := tui.New(a.cfg.ChatID, chatType(cmd, a))
	m.BotName = a.cfg.BotUsername
	b, err := a.newBot(ctx, m)
	if err != nil {
		return err
	}
	return b.Run(ctx)
}
