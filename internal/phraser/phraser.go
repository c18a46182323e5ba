package phraser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"

	"github.com/marcosbot/marcos/internal/haiku"
	"github.com/marcosbot/marcos/internal/markov"
	"github.com/marcosbot/marcos/internal/metrics"
	"github.com/marcosbot/marcos/internal/words"
)

// ErrImpossibleHaiku is returned when every haiku attempt failed.
var ErrImpossibleHaiku = errors.New("unable to build a haiku for this chain")

// DefaultHaikuAttempts is how many fresh walks GenerateHaiku tries.
const DefaultHaikuAttempts = 20

// #region types

// Transition is a neighbouring word as shown to users: sentinels print as
// <start> and <end>.
type Transition struct {
	Word        string  `json:"word"`
	Probability float64 `json:"probability"`
}

// HaikuResult is a generated poem and the number of attempts it took.
type HaikuResult struct {
	Lines    []string
	Attempts int
}

// Phraser generates phrases and haikus from word chains kept in a store.
// It holds no chain data, so one Phraser can serve many chains.
type Phraser struct {
	store    markov.TransitionStore
	analyzer metrics.Analyzer
	props    markov.Properties
	attempts int
	rng      *rand.Rand
}

// Option configures a Phraser.
type Option func(*Phraser)

// WithProperties sets the chain properties used for every walk.
func WithProperties(props markov.Properties) Option {
	return func(p *Phraser) { p.props = props }
}

// WithHaikuAttempts bounds GenerateHaiku. Non-positive values keep the default.
func WithHaikuAttempts(n int) Option {
	return func(p *Phraser) {
		if n > 0 {
			p.attempts = n
		}
	}
}

// WithRand draws every sample from r. A *rand.Rand is not safe for
// concurrent use; leave it unset when the Phraser is shared.
func WithRand(r *rand.Rand) Option {
	return func(p *Phraser) { p.rng = r }
}

// New returns a Phraser over store. A nil analyzer means metrics.Spanish.
func New(store markov.TransitionStore, analyzer metrics.Analyzer, opts ...Option) *Phraser {
	if analyzer == nil {
		analyzer = metrics.Spanish{}
	}
	p := &Phraser{
		store:    store,
		analyzer: analyzer,
		attempts: DefaultHaikuAttempts,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Phraser) chain(chainID int64) *markov.Chain[words.Word] {
	return markov.New(chainID, p.store, words.Parse, p.props, markov.WithRand[words.Word](p.rng))
}

// #endregion types

// #region phrases

// StorePhrase feeds text into the chain, bracketed by the sentinels.
func (p *Phraser) StorePhrase(ctx context.Context, chainID int64, text string) error {
	return p.chain(chainID).AddTransitions(ctx, words.Tokenize(text))
}

// GeneratePhrase walks forward from the start of a phrase until its end.
// An empty chain yields "".
func (p *Phraser) GeneratePhrase(ctx context.Context, chainID int64) (string, error) {
	walk, err := p.chain(chainID).RandomWalk(ctx, words.Initial(), markov.WalkOptions[words.Word]{
		Stop: func(w words.Word, _ int) bool { return w.IsTerminal() },
	})
	if err != nil {
		return "", fmt.Errorf("generate phrase: %w", err)
	}
	return words.Render(walk.States), nil
}

// ExtendPhrase grows phrase with words walked backward from its first word
// and forward from its last one. Each side is only extended when that word
// has transitions in the needed direction.
func (p *Phraser) ExtendPhrase(ctx context.Context, chainID int64, phrase string, before, after bool) (string, error) {
	fields := strings.Fields(phrase)
	if len(fields) == 0 {
		return phrase, nil
	}
	c := p.chain(chainID)
	parts := []string{strings.Join(fields, " ")}

	if before {
		first := words.New(fields[0])
		prefix, err := p.extendSide(ctx, c, first, markov.Backward)
		if err != nil {
			return "", err
		}
		if prefix != "" {
			parts = append([]string{prefix}, parts...)
		}
	}
	if after {
		last := words.New(fields[len(fields)-1])
		suffix, err := p.extendSide(ctx, c, last, markov.Forward)
		if err != nil {
			return "", err
		}
		if suffix != "" {
			parts = append(parts, suffix)
		}
	}
	return strings.Join(parts, " "), nil
}

func (p *Phraser) extendSide(ctx context.Context, c *markov.Chain[words.Word], from words.Word, dir markov.Direction) (string, error) {
	stop := func(w words.Word, _ int) bool { return w.IsTerminal() }
	if dir == markov.Backward {
		stop = func(w words.Word, _ int) bool { return w.IsInitial() }
	}
	walk, err := c.RandomWalk(ctx, from, markov.WalkOptions[words.Word]{Direction: dir, Stop: stop})
	if err != nil {
		return "", fmt.Errorf("extend phrase %s: %w", dir, err)
	}
	added := walk.States[1:]
	if dir == markov.Backward {
		rev := make([]words.Word, len(added))
		for i, w := range added {
			rev[len(added)-1-i] = w
		}
		added = rev
	}
	return words.Render(added), nil
}

// #endregion phrases

// #region transitions

// TransitionsFrom lists the words that have followed word in the chain.
func (p *Phraser) TransitionsFrom(ctx context.Context, chainID int64, word string) ([]Transition, error) {
	return p.transitions(ctx, chainID, word, markov.Forward)
}

// TransitionsTo lists the words that have preceded word in the chain.
func (p *Phraser) TransitionsTo(ctx context.Context, chainID int64, word string) ([]Transition, error) {
	return p.transitions(ctx, chainID, word, markov.Backward)
}

func (p *Phraser) transitions(ctx context.Context, chainID int64, word string, dir markov.Direction) ([]Transition, error) {
	probs, err := p.chain(chainID).Probabilities(ctx, words.New(word), dir)
	if err != nil {
		return nil, err
	}
	out := make([]Transition, len(probs))
	for i, t := range probs {
		out[i] = Transition{Word: t.State.String(), Probability: t.Probability}
	}
	return out, nil
}

// #endregion transitions

// #region haiku

// GenerateHaiku builds a 5-7-5 poem by walking the chain. seed, when not
// blank, opens the poem and the walk continues from its last word.
func (p *Phraser) GenerateHaiku(ctx context.Context, chainID int64, seed string) ([]string, error) {
	res, err := p.ComposeHaiku(ctx, chainID, seed)
	if err != nil {
		return nil, err
	}
	return res.Lines, nil
}

// ComposeHaiku is GenerateHaiku reporting how many attempts were used.
func (p *Phraser) ComposeHaiku(ctx context.Context, chainID int64, seed string) (HaikuResult, error) {
	c := p.chain(chainID)
	seedWords := words.Texts(words.Tokenize(seed))

	for attempt := 1; attempt <= p.attempts; attempt++ {
		lines, ok, err := p.haikuAttempt(ctx, c, seedWords)
		if err != nil {
			return HaikuResult{Attempts: attempt}, fmt.Errorf("haiku attempt %d: %w", attempt, err)
		}
		if ok {
			return HaikuResult{Lines: lines, Attempts: attempt}, nil
		}
	}
	log.Printf("[HAIKU] chain=%d gave up after %d attempts", chainID, p.attempts)
	return HaikuResult{Attempts: p.attempts}, ErrImpossibleHaiku
}

// haikuAttempt runs one constrained walk. It reports ok=false when the walk
// ends without a valid poem; err is reserved for storage failures.
func (p *Phraser) haikuAttempt(ctx context.Context, c *markov.Chain[words.Word], seed []string) ([]string, bool, error) {
	h := haiku.New(p.analyzer)
	start := words.Initial()
	for _, w := range seed {
		if err := h.ExtendWith(w); err != nil {
			return nil, false, nil
		}
		start = words.New(w)
	}

	var extendErr error
	stop := func(w words.Word, index int) bool {
		if index == 0 || w.IsSentinel() {
			return h.Valid()
		}
		if err := h.ExtendWith(w.Text()); err != nil {
			extendErr = err
			return true
		}
		return h.Valid()
	}

	canAdvance := func(ctx context.Context, w words.Word) (bool, error) {
		if w.IsTerminal() {
			return h.Valid(), nil
		}
		if w.IsInitial() {
			return false, nil
		}
		switch h.Fit(w.Text()) {
		case haiku.FitPoem, haiku.FitPartial:
			return true, nil
		case haiku.FitVerse:
			next, err := c.TransitionsFrom(ctx, w)
			if err != nil {
				return false, err
			}
			return next.Filter(func(n words.Word) bool { return !n.IsTerminal() }).Len() > 0, nil
		default:
			return false, nil
		}
	}

	walk, err := c.RandomWalk(ctx, start, markov.WalkOptions[words.Word]{
		Stop:       stop,
		CanAdvance: canAdvance,
	})
	if err != nil {
		return nil, false, err
	}
	if walk.Outcome != markov.Stopped || extendErr != nil || !h.Valid() {
		return nil, false, nil
	}
	return h.Strings(), true, nil
}

// #endregion haiku
