package bot

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"

	"github.com/marcosbot/marcos/internal/config"
	"github.com/marcosbot/marcos/internal/logging"
	"github.com/marcosbot/marcos/internal/phraser"
	"github.com/marcosbot/marcos/internal/roster"
)

var commandRe = regexp.MustCompile(`^/([^\s@]+)(?:@(\S+))?(?:\s(.*))?`)

// #region dependencies

// Phraser is the generation engine the bot talks to.
type Phraser interface {
	StorePhrase(ctx context.Context, chainID int64, text string) error
	GeneratePhrase(ctx context.Context, chainID int64) (string, error)
	ExtendPhrase(ctx context.Context, chainID int64, phrase string, before, after bool) (string, error)
	ComposeHaiku(ctx context.Context, chainID int64, seed string) (phraser.HaikuResult, error)
	TransitionsFrom(ctx context.Context, chainID int64, word string) ([]phraser.Transition, error)
	TransitionsTo(ctx context.Context, chainID int64, word string) ([]phraser.Transition, error)
}

// Roster remembers chat members and word sets.
type Roster interface {
	AddUser(ctx context.Context, u roster.User) error
	Users(ctx context.Context, chainID int64) ([]roster.User, error)
	AddSword(ctx context.Context, chainID int64, set, word string) error
	Swords(ctx context.Context, chainID int64, set string) ([]string, error)
	AllSwords(ctx context.Context, chainID int64) (map[string][]string, error)
}

// Recorder keeps a log of generations.
type Recorder interface {
	Record(entry logging.GenerationEntry) (string, error)
}

// Config tunes the bot's behaviour.
type Config struct {
	Locales          config.Locales
	SubstitutePeople bool
	ListenToAyyLmao  bool
}

// #endregion dependencies

// #region bot

// Bot turns incoming messages into chain updates and generated replies.
type Bot struct {
	cfg       Config
	messenger Messenger
	phraser   Phraser
	roster    Roster
	recorder  Recorder

	mu      sync.RWMutex
	locales config.Locales
	actions []Action
}

// New returns a bot with no actions registered. roster and recorder may
// be nil.
func New(cfg Config, m Messenger, p Phraser, r Roster, rec Recorder) *Bot {
	locales := cfg.Locales
	if locales == nil {
		locales = config.DefaultLocales()
	}
	return &Bot{
		cfg:       cfg,
		messenger: m,
		phraser:   p,
		roster:    r,
		recorder:  rec,
		locales:   locales,
	}
}

// SetLocales swaps the texts the bot answers with.
func (b *Bot) SetLocales(l config.Locales) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locales = l
}

// T returns the localized text for key.
func (b *Bot) T(key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.locales.Get(key)
}

// RegisterAction adds a command. Two actions cannot share a command.
func (b *Bot) RegisterAction(a Action) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.actions {
		if existing.Command == a.Command {
			return fmt.Errorf("there already exists an action registered for the command %q", a.Command)
		}
	}
	b.actions = append(b.actions, a)
	return nil
}

// Actions returns the registered actions in registration order.
func (b *Bot) Actions() []Action {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Action, len(b.actions))
	copy(out, b.actions)
	return out
}

func (b *Bot) action(command string) (Action, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, a := range b.actions {
		if a.Command == command {
			return a, true
		}
	}
	return Action{}, false
}

// Run listens on the messenger until it stops.
func (b *Bot) Run(ctx context.Context) error {
	return b.messenger.Listen(ctx, b.Handle)
}

// Answer sends text to the chat msg came from.
func (b *Bot) Answer(ctx context.Context, msg Message, text string) error {
	return b.messenger.Send(ctx, msg.ChatID, text)
}

// #endregion bot

// #region handling

// Handle processes one message: it remembers the author, feeds the ayy
// lmao listener, then either runs a command or stores the text.
func (b *Bot) Handle(ctx context.Context, msg Message) error {
	if b.roster != nil {
		err := b.roster.AddUser(ctx, roster.User{
			UserID:    msg.From.ID,
			ChainID:   msg.ChatID,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
			Username:  msg.From.Username,
		})
		if err != nil {
			log.Printf("[BOT] store user: %v", err)
		}
	}

	if b.cfg.ListenToAyyLmao {
		for _, reply := range ayyLmao(msg.Text) {
			if err := b.Answer(ctx, msg, reply); err != nil {
				return err
			}
		}
	}

	m := commandRe.FindStringSubmatch(msg.Text)
	if m == nil {
		return b.storePhrase(ctx, msg)
	}
	command, recipient, args := m[1], m[2], m[3]
	me := b.messenger.Username()
	if recipient != "" && recipient != me {
		return nil
	}

	a, ok := b.action(command)
	if !ok {
		// Stay quiet in groups unless the command was addressed to us.
		if msg.ChatType == ChatPrivate || recipient == me {
			return b.Answer(ctx, msg, b.T(config.ErrUnknownCommand))
		}
		return nil
	}
	return b.execute(ctx, msg, a, args)
}

func (b *Bot) execute(ctx context.Context, msg Message, a Action, args string) error {
	re := a.Args
	if re == nil {
		re = anyArgs
	}
	match := re.FindStringSubmatch(args)
	if match == nil {
		return b.Answer(ctx, msg, b.T(config.ErrMalformedArguments))
	}
	if err := a.Handler(ctx, b, msg, match); err != nil {
		return fmt.Errorf("/%s: %w", a.Command, err)
	}
	return nil
}

func (b *Bot) storePhrase(ctx context.Context, msg Message) error {
	err := b.phraser.StorePhrase(ctx, msg.ChatID, msg.Text)
	b.record(logging.GenerationEntry{ChainID: msg.ChatID, Kind: "store", Input: msg.Text}, err)
	if err != nil {
		return fmt.Errorf("store phrase: %w", err)
	}
	return nil
}

// record logs a generation; failures to log never fail the request.
func (b *Bot) record(entry logging.GenerationEntry, err error) {
	if b.recorder == nil {
		return
	}
	if err != nil && entry.Outcome == "" {
		entry.Outcome = logging.OutcomeError
	}
	if _, rerr := b.recorder.Record(entry); rerr != nil {
		log.Printf("[BOT] record %s: %v", entry.Kind, rerr)
	}
}

// #endregion handling

// #region ayy-lmao

var (
	ripRe     = regexp.MustCompile(`(?i)rip`)
	ayyLmaoRe = regexp.MustCompile(`(?i)alien|ayy.*lmao|lmao.*ayy`)
	ayyRe     = regexp.MustCompile(`(?i)ayy(y*)`)
	lmaoRe    = regexp.MustCompile(`(?i)lmao(o*)`)
)

// ayyLmao returns the replies of the ayy lmao listener for text.
func ayyLmao(text string) []string {
	var out []string
	if ripRe.MatchString(text) {
		out = append(out, "in pieces")
	}
	if ayyLmaoRe.MatchString(text) {
		return append(out, "ayy lmao")
	}
	if m := ayyRe.FindStringSubmatch(text); m != nil {
		out = append(out, "lmao"+strings.Repeat("o", len(m[1])))
	}
	if m := lmaoRe.FindStringSubmatch(text); m != nil {
		out = append(out, "ayy"+strings.Repeat("y", len(m[1])))
	}
	return out
}

// #endregion ayy-lmao
