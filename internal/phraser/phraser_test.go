package phraser

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcosbot/marcos/internal/markov"
	"github.com/marcosbot/marcos/internal/metrics"
)

const poem = "la casa blanca el gato come pan su luna roja"

func newTestPhraser(t *testing.T, opts ...Option) (*Phraser, *markov.MemoryStore) {
	t.Helper()
	store := markov.NewMemoryStore()
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(7, 11)))}, opts...)
	return New(store, metrics.Spanish{}, opts...), store
}

func feed(t *testing.T, p *Phraser, chainID int64, phrases ...string) {
	t.Helper()
	for _, ph := range phrases {
		require.NoError(t, p.StorePhrase(context.Background(), chainID, ph))
	}
}

type brokenStore struct{}

var errDisk = errors.New("disk on fire")

func (brokenStore) Increment(context.Context, int64, string, string) error { return errDisk }
func (brokenStore) From(context.Context, int64, string) ([]markov.Count, error) {
	return nil, errDisk
}
func (brokenStore) To(context.Context, int64, string) ([]markov.Count, error) {
	return nil, errDisk
}

func TestStorePhraseAndTransitions(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPhraser(t)
	feed(t, p, 1, "a b a")

	from, err := p.TransitionsFrom(ctx, 1, "a")
	require.NoError(t, err)
	assert.Equal(t, []Transition{{"b", 0.5}, {"<end>", 0.5}}, from)

	to, err := p.TransitionsTo(ctx, 1, "A")
	require.NoError(t, err)
	assert.Equal(t, []Transition{{"<start>", 0.5}, {"b", 0.5}}, to)

	other, err := p.TransitionsFrom(ctx, 2, "a")
	require.NoError(t, err)
	assert.Empty(t, other, "chains are isolated")
}

func TestGeneratePhrase(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPhraser(t)

	empty, err := p.GeneratePhrase(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "", empty)

	feed(t, p, 1, "Hola Mundo")
	got, err := p.GeneratePhrase(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "hola mundo", got)
}

func TestExtendPhrase(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPhraser(t)
	feed(t, p, 1, "el gato come pan")

	both, err := p.ExtendPhrase(ctx, 1, "gato", true, true)
	require.NoError(t, err)
	assert.Equal(t, "el gato come pan", both)

	before, err := p.ExtendPhrase(ctx, 1, "gato come", true, false)
	require.NoError(t, err)
	assert.Equal(t, "el gato come", before)

	after, err := p.ExtendPhrase(ctx, 1, "come", false, true)
	require.NoError(t, err)
	assert.Equal(t, "come pan", after)

	unknown, err := p.ExtendPhrase(ctx, 1, "perro", true, true)
	require.NoError(t, err)
	assert.Equal(t, "perro", unknown)

	blank, err := p.ExtendPhrase(ctx, 1, "  ", true, true)
	require.NoError(t, err)
	assert.Equal(t, "  ", blank)
}

func TestGenerateHaiku(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPhraser(t)
	feed(t, p, 1, poem)

	lines, err := p.GenerateHaiku(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"la casa blanca", "el gato come pan", "su luna roja"}, lines)
}

func TestGenerateHaikuFromSeed(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPhraser(t)
	feed(t, p, 1, poem)

	res, err := p.ComposeHaiku(ctx, 1, "La casa")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, []string{"la casa blanca", "el gato come pan", "su luna roja"}, res.Lines)
}

func TestGenerateHaikuImpossible(t *testing.T) {
	ctx := context.Background()

	t.Run("empty chain", func(t *testing.T) {
		p, _ := newTestPhraser(t)
		_, err := p.GenerateHaiku(ctx, 1, "")
		assert.ErrorIs(t, err, ErrImpossibleHaiku)
	})

	t.Run("phrase too short", func(t *testing.T) {
		p, _ := newTestPhraser(t, WithHaikuAttempts(3))
		feed(t, p, 1, "hola")
		res, err := p.ComposeHaiku(ctx, 1, "")
		assert.ErrorIs(t, err, ErrImpossibleHaiku)
		assert.Equal(t, 3, res.Attempts)
	})

	t.Run("verse with only an ending after it", func(t *testing.T) {
		p, _ := newTestPhraser(t)
		feed(t, p, 1, "la casa blanca")
		_, err := p.GenerateHaiku(ctx, 1, "")
		assert.ErrorIs(t, err, ErrImpossibleHaiku)
	})

	t.Run("unanalyzable seed", func(t *testing.T) {
		p, _ := newTestPhraser(t)
		feed(t, p, 1, poem)
		_, err := p.GenerateHaiku(ctx, 1, "brrr")
		assert.ErrorIs(t, err, ErrImpossibleHaiku)
	})
}

func TestHaikuVerseNeedsContinuation(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPhraser(t)
	// blanca can end the phrase or continue into the second verse; only the
	// continuation can complete a poem.
	feed(t, p, 1, "la casa blanca", poem)

	lines, err := p.GenerateHaiku(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"la casa blanca", "el gato come pan", "su luna roja"}, lines)
}

func TestStorageErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	p := New(brokenStore{}, nil)

	err := p.StorePhrase(ctx, 1, "hola")
	assert.ErrorIs(t, err, errDisk)

	_, err = p.GeneratePhrase(ctx, 1)
	assert.ErrorIs(t, err, errDisk)

	_, err = p.GenerateHaiku(ctx, 1, "")
	assert.ErrorIs(t, err, errDisk)
	assert.NotErrorIs(t, err, ErrImpossibleHaiku)

	_, err = p.TransitionsFrom(ctx, 1, "hola")
	assert.ErrorIs(t, err, errDisk)
}
