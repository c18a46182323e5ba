package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"slices"
	"strings"

	"github.com/marcosbot/marcos/internal/config"
	"github.com/marcosbot/marcos/internal/logging"
	"github.com/marcosbot/marcos/internal/phraser"
)

var anyArgs = regexp.MustCompile(`.*`)

// ActionHandler runs a command. args is the match of the action's Args
// pattern against the text after the command.
type ActionHandler func(ctx context.Context, b *Bot, msg Message, args []string) error

// Action is a command the bot answers to.
type Action struct {
	Command     string
	Description string
	// Args validates the arguments. Nil accepts anything.
	Args    *regexp.Regexp
	Handler ActionHandler
}

// RegisterDefaults registers the built-in commands. Commands that need the
// roster are skipped when the bot has none, and someone also needs
// SubstitutePeople.
func (b *Bot) RegisterDefaults() error {
	actions := []Action{Start, Help, Phrase, BeginWith, EndWith, Use, Haiku, TransitionsFrom, TransitionsTo}
	if b.roster != nil {
		if b.cfg.SubstitutePeople {
			actions = append(actions, Someone)
		}
		actions = append(actions, AddSwords, SeeSwords)
	}
	for _, a := range actions {
		if err := b.RegisterAction(a); err != nil {
			return err
		}
	}
	return nil
}

// #region basic

var Start = Action{
	Command:     "start",
	Description: "say hello",
	Handler: func(ctx context.Context, b *Bot, msg Message, _ []string) error {
		return b.Answer(ctx, msg, b.T(config.WelcomeMessage))
	},
}

var Help = Action{
	Command:     "help",
	Description: "list the available commands",
	Handler: func(ctx context.Context, b *Bot, msg Message, _ []string) error {
		var sb strings.Builder
		sb.WriteString(b.T(config.AvailableCommands))
		sb.WriteString(":")
		for _, a := range b.Actions() {
			fmt.Fprintf(&sb, "\n/%s", a.Command)
			if a.Description != "" {
				fmt.Fprintf(&sb, " - %s", a.Description)
			}
		}
		return b.Answer(ctx, msg, sb.String())
	},
}

// #endregion basic

// #region generation

var Phrase = Action{
	Command:     "message",
	Description: "generate a random message",
	Handler: func(ctx context.Context, b *Bot, msg Message, _ []string) error {
		text, err := b.phraser.GeneratePhrase(ctx, msg.ChatID)
		b.record(logging.GenerationEntry{ChainID: msg.ChatID, Kind: "phrase", Output: text}, err)
		if err != nil {
			return err
		}
		if text == "" {
			return b.Answer(ctx, msg, b.T(config.ErrNoTransitions))
		}
		return b.Answer(ctx, msg, text)
	},
}

func extendAction(command, description string, before, after bool) Action {
	return Action{
		Command:     command,
		Description: description,
		Args:        regexp.MustCompile(`(.+)`),
		Handler: func(ctx context.Context, b *Bot, msg Message, args []string) error {
			text, err := b.phraser.ExtendPhrase(ctx, msg.ChatID, args[1], before, after)
			b.record(logging.GenerationEntry{ChainID: msg.ChatID, Kind: "extend", Input: args[1], Output: text}, err)
			if err != nil {
				return err
			}
			return b.Answer(ctx, msg, text)
		},
	}
}

var (
	BeginWith = extendAction("beginwith", "generate a message starting with the given words", false, true)
	EndWith   = extendAction("endwith", "generate a message ending with the given words", true, false)
	Use       = extendAction("use", "generate a message containing the given words", true, true)
)

var Haiku = Action{
	Command:     "haiku",
	Description: "compose a 5-7-5 haiku, optionally starting with the given words",
	Args:        regexp.MustCompile(`(.*)`),
	Handler: func(ctx context.Context, b *Bot, msg Message, args []string) error {
		res, err := b.phraser.ComposeHaiku(ctx, msg.ChatID, args[1])
		entry := logging.GenerationEntry{
			ChainID:  msg.ChatID,
			Kind:     "haiku",
			Input:    args[1],
			Output:   strings.Join(res.Lines, " / "),
			Attempts: res.Attempts,
		}
		if errors.Is(err, phraser.ErrImpossibleHaiku) {
			entry.Outcome = logging.OutcomeImpossible
			b.record(entry, err)
			return b.Answer(ctx, msg, b.T(config.ErrImpossibleHaiku))
		}
		b.record(entry, err)
		if err != nil {
			return err
		}
		return b.Answer(ctx, msg, strings.Join(res.Lines, "\n"))
	},
}

// #endregion generation

// #region transitions

func transitionsAction(command, description string, list func(Phraser, context.Context, int64, string) ([]phraser.Transition, error)) Action {
	return Action{
		Command:     command,
		Description: description,
		Args:        regexp.MustCompile(`(\S+)$`),
		Handler: func(ctx context.Context, b *Bot, msg Message, args []string) error {
			ts, err := list(b.phraser, ctx, msg.ChatID, args[1])
			if err != nil {
				return err
			}
			if len(ts) == 0 {
				return b.Answer(ctx, msg, b.T(config.ErrNoTransitions))
			}
			lines := make([]string, len(ts))
			for i, t := range ts {
				lines[i] = fmt.Sprintf("%s: %g", t.Word, t.Probability)
			}
			return b.Answer(ctx, msg, strings.Join(lines, "\n"))
		},
	}
}

var (
	TransitionsFrom = transitionsAction("transitionsfrom", "list the words that follow a word", Phraser.TransitionsFrom)
	TransitionsTo   = transitionsAction("transitionsto", "list the words that precede a word", Phraser.TransitionsTo)
)

// #endregion transitions

// #region roster

var Someone = Action{
	Command:     "someone",
	Description: "put the given words in the mouth of someone in this chat",
	Args:        regexp.MustCompile(`(.+)`),
	Handler: func(ctx context.Context, b *Bot, msg Message, args []string) error {
		users, err := b.roster.Users(ctx, msg.ChatID)
		if err != nil {
			return err
		}
		name := msg.From.FirstName
		if len(users) > 0 {
			name = users[rand.IntN(len(users))].DisplayName()
		}
		text, err := b.phraser.ExtendPhrase(ctx, msg.ChatID, args[1], false, true)
		b.record(logging.GenerationEntry{ChainID: msg.ChatID, Kind: "extend", Input: args[1], Output: text}, err)
		if err != nil {
			return err
		}
		return b.Answer(ctx, msg, name+": "+text)
	},
}

var AddSwords = Action{
	Command:     "addswords",
	Description: "add words to a named set: /addswords SET WORD...",
	Args:        regexp.MustCompile(`^(\S+)\s+(.+)$`),
	Handler: func(ctx context.Context, b *Bot, msg Message, args []string) error {
		set := strings.ToLower(args[1])
		for _, w := range strings.Fields(args[2]) {
			if err := b.roster.AddSword(ctx, msg.ChatID, set, w); err != nil {
				return err
			}
		}
		ws, err := b.roster.Swords(ctx, msg.ChatID, set)
		if err != nil {
			return err
		}
		return b.Answer(ctx, msg, set+": "+strings.Join(ws, ", "))
	},
}

var SeeSwords = Action{
	Command:     "seeswords",
	Description: "show a named set of words, or all of them",
	Args:        regexp.MustCompile(`^(\S*)$`),
	Handler: func(ctx context.Context, b *Bot, msg Message, args []string) error {
		sets := map[string][]string{}
		if args[1] != "" {
			ws, err := b.roster.Swords(ctx, msg.ChatID, args[1])
			if err != nil {
				return err
			}
			if len(ws) > 0 {
				sets[strings.ToLower(args[1])] = ws
			}
		} else {
			all, err := b.roster.AllSwords(ctx, msg.ChatID)
			if err != nil {
				return err
			}
			sets = all
		}
		if len(sets) == 0 {
			return b.Answer(ctx, msg, b.T(config.ErrNoSwords))
		}

		names := make([]string, 0, len(sets))
		for name := range sets {
			names = append(names, name)
		}
		slices.Sort(names)
		lines := make([]string, len(names))
		for i, name := range names {
			lines[i] = name + ": " + strings.Join(sets[name], ", ")
		}
		return b.Answer(ctx, msg, strings.Join(lines, "\n"))
	},
}

// #endregion roster
