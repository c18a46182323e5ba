package markov

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/marcosbot/marcos/internal/freqset"
)

// #region types

// State is a value the chain can move between. Key must round-trip through
// the chain's decode function.
type State interface {
	comparable
	Key() string
}

// Properties tune a chain.
type Properties struct {
	// MutationProbability is carried through configuration for future
	// perturbation of walks; sampling does not read it.
	MutationProbability float64
	// MaxSteps bounds every walk that does not set its own limit.
	// Zero means DefaultMaxSteps.
	MaxSteps int
}

// DefaultMaxSteps bounds walks over data containing a cycle that never
// reaches a stopping state.
const DefaultMaxSteps = 500

// Transition is a neighbouring state and the probability of moving to it.
type Transition[T State] struct {
	State       T
	Probability float64
}

// Chain is a view over the transitions stored for one chain id. It holds no
// transition data of its own; every query goes to the store.
type Chain[T State] struct {
	id     int64
	store  TransitionStore
	decode func(string) (T, error)
	props  Properties
	rng    *rand.Rand
}

// Option configures a Chain.
type Option[T State] func(*Chain[T])

// WithRand makes sampling draw from r instead of the global source.
func WithRand[T State](r *rand.Rand) Option[T] {
	return func(c *Chain[T]) { c.rng = r }
}

// #endregion types

// #region constructor

// New returns a chain view for id. decode turns a stored key back into a state.
func New[T State](id int64, store TransitionStore, decode func(string) (T, error), props Properties, opts ...Option[T]) *Chain[T] {
	c := &Chain[T]{id: id, store: store, decode: decode, props: props}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the chain identifier.
func (c *Chain[T]) ID() int64 { return c.id }

// Properties returns the chain's tuning.
func (c *Chain[T]) Properties() Properties { return c.props }

// #endregion constructor

// #region mutation

// AddTransition records one observation of from -> to.
func (c *Chain[T]) AddTransition(ctx context.Context, from, to T) error {
	if err := c.store.Increment(ctx, c.id, from.Key(), to.Key()); err != nil {
		return fmt.Errorf("add transition %q -> %q: %w", from.Key(), to.Key(), err)
	}
	return nil
}

// AddTransitions records every consecutive pair of states.
func (c *Chain[T]) AddTransitions(ctx context.Context, states []T) error {
	for i := 1; i < len(states); i++ {
		if err := c.AddTransition(ctx, states[i-1], states[i]); err != nil {
			return err
		}
	}
	return nil
}

// #endregion mutation

// #region queries

// TransitionsFrom returns the states that have followed s, weighted by
// how often they did.
func (c *Chain[T]) TransitionsFrom(ctx context.Context, s T) (*freqset.Set[T], error) {
	rows, err := c.store.From(ctx, c.id, s.Key())
	if err != nil {
		return nil, fmt.Errorf("transitions from %q: %w", s.Key(), err)
	}
	return c.build(rows)
}

// TransitionsTo returns the states that have preceded s, weighted by how
// often they did.
func (c *Chain[T]) TransitionsTo(ctx context.Context, s T) (*freqset.Set[T], error) {
	rows, err := c.store.To(ctx, c.id, s.Key())
	if err != nil {
		return nil, fmt.Errorf("transitions to %q: %w", s.Key(), err)
	}
	return c.build(rows)
}

// Probabilities lists the neighbours of s in the given direction with the
// probability of each.
func (c *Chain[T]) Probabilities(ctx context.Context, s T, dir Direction) ([]Transition[T], error) {
	set, err := c.transitions(ctx, s, dir)
	if err != nil {
		return nil, err
	}
	elems := set.Elements()
	out := make([]Transition[T], len(elems))
	for i, e := range elems {
		out[i] = Transition[T]{State: e, Probability: set.Probability(e)}
	}
	return out, nil
}

func (c *Chain[T]) transitions(ctx context.Context, s T, dir Direction) (*freqset.Set[T], error) {
	if dir == Backward {
		return c.TransitionsTo(ctx, s)
	}
	return c.TransitionsFrom(ctx, s)
}

func (c *Chain[T]) build(rows []Count) (*freqset.Set[T], error) {
	set := freqset.New[T]()
	for _, row := range rows {
		st, err := c.decode(row.Key)
		if err != nil {
			return nil, fmt.Errorf("decode state %q: %w", row.Key, err)
		}
		set.Add(st, row.Frequency)
	}
	return set, nil
}

// #endregion queries
