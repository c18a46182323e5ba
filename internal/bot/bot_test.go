package bot

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/marcosbot/marcos/internal/config"
	"github.com/marcosbot/marcos/internal/logging"
	"github.com/marcosbot/marcos/internal/markov"
	"github.com/marcosbot/marcos/internal/phraser"
	"github.com/marcosbot/marcos/internal/roster"
)

const poem = "la casa blanca el gato come pan su luna roja"

// #region helpers

type sent struct {
	chatID int64
	text   string
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sent
}

func (f *fakeMessenger) Username() string { return "MarcosBot" }

func (f *fakeMessenger) Listen(context.Context, Handler) error { return nil }

func (f *fakeMessenger) Send(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{chatID, text})
	return nil
}

func (f *fakeMessenger) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, s := range f.sent {
		out[i] = s.text
	}
	return out
}

func (f *fakeMessenger) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

type recorded struct {
	mu      sync.Mutex
	entries []logging.GenerationEntry
}

func (r *recorded) Record(e logging.GenerationEntry) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return "id", nil
}

type fixture struct {
	bot      *Bot
	out      *fakeMessenger
	roster   *roster.Roster
	recorder *recorded
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	r, err := roster.New(db)
	require.NoError(t, err)

	p := phraser.New(markov.NewMemoryStore(), nil, phraser.WithRand(rand.New(rand.NewPCG(3, 5))))
	out := &fakeMessenger{}
	rec := &recorded{}
	b := New(cfg, out, p, r, rec)
	require.NoError(t, b.RegisterDefaults())
	return &fixture{bot: b, out: out, roster: r, recorder: rec}
}

func private(text string) Message {
	return Message{ChatID: 1, ChatType: ChatPrivate, From: User{ID: 7, FirstName: "Ana"}, Text: text}
}

func group(text string) Message {
	return Message{ChatID: 2, ChatType: ChatGroup, From: User{ID: 8, Username: "beto"}, Text: text}
}

func (f *fixture) send(t *testing.T, msg Message) []string {
	t.Helper()
	f.out.reset()
	require.NoError(t, f.bot.Handle(context.Background(), msg))
	return f.out.texts()
}

// #endregion helpers

func TestRegisterActionRejectsDuplicates(t *testing.T) {
	f := newFixture(t, Config{})
	err := f.bot.RegisterAction(Action{Command: "start", Handler: Start.Handler})
	assert.Error(t, err)
}

func TestStartAndHelp(t *testing.T) {
	f := newFixture(t, Config{SubstitutePeople: true})

	assert.Equal(t, []string{config.DefaultLocales()[config.WelcomeMessage]}, f.send(t, private("/start")))

	help := f.send(t, private("/help"))
	require.Len(t, help, 1)
	assert.True(t, strings.HasPrefix(help[0], "Available commands:"))
	for _, cmd := range []string{"/start", "/haiku", "/someone", "/seeswords"} {
		assert.Contains(t, help[0], cmd)
	}
}

func TestNonCommandTextIsStored(t *testing.T) {
	f := newFixture(t, Config{})
	assert.Empty(t, f.send(t, private("hola mundo")))
	assert.Equal(t, []string{"hola mundo"}, f.send(t, private("/message")))

	require.NotEmpty(t, f.recorder.entries)
	assert.Equal(t, "store", f.recorder.entries[0].Kind)
}

func TestMessageOnEmptyChain(t *testing.T) {
	f := newFixture(t, Config{})
	assert.Equal(t, []string{config.DefaultLocales()[config.ErrNoTransitions]}, f.send(t, private("/message")))
}

func TestCommandAddressing(t *testing.T) {
	f := newFixture(t, Config{})

	assert.Empty(t, f.send(t, group("/start@OtherBot")), "commands for other bots are ignored")
	assert.Len(t, f.send(t, group("/start@MarcosBot")), 1)

	unknown := config.DefaultLocales()[config.ErrUnknownCommand]
	assert.Empty(t, f.send(t, group("/dance")), "unknown commands stay quiet in groups")
	assert.Equal(t, []string{unknown}, f.send(t, group("/dance@MarcosBot")))
	assert.Equal(t, []string{unknown}, f.send(t, private("/dance")))
}

func TestExtendCommands(t *testing.T) {
	f := newFixture(t, Config{})
	f.send(t, private("el gato come pan"))

	assert.Equal(t, []string{"gato come pan"}, f.send(t, private("/beginwith gato")))
	assert.Equal(t, []string{"el gato"}, f.send(t, private("/endwith gato")))
	assert.Equal(t, []string{"el gato come pan"}, f.send(t, private("/use gato come")))

	malformed := config.DefaultLocales()[config.ErrMalformedArguments]
	assert.Equal(t, []string{malformed}, f.send(t, private("/use")))
}

func TestHaikuCommand(t *testing.T) {
	f := newFixture(t, Config{})
	assert.Equal(t, []string{config.DefaultLocales()[config.ErrImpossibleHaiku]}, f.send(t, private("/haiku")))

	f.send(t, private(poem))
	assert.Equal(t, []string{"la casa blanca\nel gato come pan\nsu luna roja"}, f.send(t, private("/haiku")))
	assert.Equal(t, []string{"la casa blanca\nel gato come pan\nsu luna roja"}, f.send(t, private("/haiku la casa")))

	var outcomes []string
	for _, e := range f.recorder.entries {
		if e.Kind == "haiku" {
			outcomes = append(outcomes, e.Outcome)
		}
	}
	assert.Equal(t, []string{logging.OutcomeImpossible, "", ""}, outcomes)
}

func TestTransitionCommands(t *testing.T) {
	f := newFixture(t, Config{})
	f.send(t, private("a b a"))

	assert.Equal(t, []string{"b: 0.5\n<end>: 0.5"}, f.send(t, private("/transitionsfrom a")))
	assert.Equal(t, []string{"<start>: 0.5\nb: 0.5"}, f.send(t, private("/transitionsto a")))
	assert.Equal(t, []string{config.DefaultLocales()[config.ErrNoTransitions]}, f.send(t, private("/transitionsfrom zzz")))
}

func TestSomeone(t *testing.T) {
	f := newFixture(t, Config{SubstitutePeople: true})
	f.send(t, private("el gato come pan"))

	assert.Equal(t, []string{"Ana: gato come pan"}, f.send(t, private("/someone gato")))

	without := newFixture(t, Config{SubstitutePeople: false})
	unknown := config.DefaultLocales()[config.ErrUnknownCommand]
	assert.Equal(t, []string{unknown}, without.send(t, private("/someone gato")))
}

func TestSwords(t *testing.T) {
	f := newFixture(t, Config{})

	assert.Equal(t, []string{config.DefaultLocales()[config.ErrNoSwords]}, f.send(t, private("/seeswords")))
	assert.Equal(t, []string{"cielo: sol, luna"}, f.send(t, private("/addswords Cielo sol luna")))
	assert.Equal(t, []string{"mar: ola"}, f.send(t, private("/addswords mar ola")))
	assert.Equal(t, []string{"cielo: sol, luna\nmar: ola"}, f.send(t, private("/seeswords")))
	assert.Equal(t, []string{"mar: ola"}, f.send(t, private("/seeswords mar")))
	assert.Equal(t, []string{config.DefaultLocales()[config.ErrMalformedArguments]}, f.send(t, private("/addswords solo")))
}

func TestAyyLmao(t *testing.T) {
	cases := map[string][]string{
		"ayyyy":          {"lmaooo"},
		"LMAOO":          {"ayyy"},
		"ayy lmao":       {"ayy lmao"},
		"rip":            {"in pieces"},
		"alien":          {"ayy lmao"},
		"nothing to see": nil,
		"rip, ayy":       {"in pieces", "lmao"},
	}
	for text, want := range cases {
		assert.Equal(t, want, ayyLmao(text), text)
	}

	f := newFixture(t, Config{ListenToAyyLmao: true})
	assert.Equal(t, []string{"lmao"}, f.send(t, private("ayy")))

	quiet := newFixture(t, Config{ListenToAyyLmao: false})
	assert.Empty(t, quiet.send(t, private("ayy")))
}

func TestUsersAreRemembered(t *testing.T) {
	f := newFixture(t, Config{})
	f.send(t, group("hola"))
	users, err := f.roster.Users(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "@beto", users[0].DisplayName())
}

func TestSetLocales(t *testing.T) {
	f := newFixture(t, Config{})
	l := config.DefaultLocales()
	l[config.WelcomeMessage] = "¡Hola!"
	f.bot.SetLocales(l)
	assert.Equal(t, []string{"¡Hola!"}, f.send(t, private("/start")))
}

type failingPhraser struct{ Phraser }

func (failingPhraser) StorePhrase(context.Context, int64, string) error {
	return errors.New("disk on fire")
}

func TestHandleReturnsStorageErrors(t *testing.T) {
	b := New(Config{}, &fakeMessenger{}, failingPhraser{}, nil, nil)
	err := b.Handle(context.Background(), private("hola"))
	assert.ErrorContains(t, err, "disk on fire")
}

func TestConsoleMessenger(t *testing.T) {
	in := strings.NewReader("hola mundo\n\n/message\nquit\n/start\n")
	var out bytes.Buffer
	m := NewConsoleMessenger(in, &out, 1, ChatPrivate)

	p := phraser.New(markov.NewMemoryStore(), nil)
	b := New(Config{}, m, p, nil, nil)
	require.NoError(t, b.RegisterDefaults())
	require.NoError(t, b.Run(context.Background()))

	assert.Equal(t, ">>> hola mundo\n", out.String(), "input after quit is not read")
}
