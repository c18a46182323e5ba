package markov

import (
	"context"
	"errors"
	"fmt"

	"github.com/marcosbot/marcos/internal/freqset"
)

// ErrNoTransition means the current state has no recorded neighbour in the
// walking direction. It matches freqset.ErrEmptySet under errors.Is.
var ErrNoTransition = fmt.Errorf("no transition available: %w", freqset.ErrEmptySet)

// errAllRejected means every candidate of a step was refused by CanAdvance.
var errAllRejected = errors.New("all candidates rejected")

// #region options

// Direction selects which neighbours a walk moves to.
type Direction int

const (
	Forward  Direction = iota // follow transitions out of the current state
	Backward                  // follow transitions into the current state
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Outcome records why a walk ended.
type Outcome int

const (
	Stopped   Outcome = iota // Stop returned true
	DeadEnd                  // no neighbour to move to
	Rejected                 // CanAdvance refused every neighbour
	StepLimit                // MaxSteps reached
)

func (o Outcome) String() string {
	switch o {
	case Stopped:
		return "stopped"
	case DeadEnd:
		return "dead_end"
	case Rejected:
		return "rejected"
	case StepLimit:
		return "step_limit"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// WalkOptions drive RandomWalk.
type WalkOptions[T State] struct {
	Direction Direction
	// Stop is consulted with each state as it joins the walk, starting with
	// the start state at index 0. A nil Stop never stops.
	Stop func(state T, index int) bool
	// CanAdvance vets a sampled candidate before it joins the walk.
	// A nil CanAdvance accepts everything.
	CanAdvance func(ctx context.Context, candidate T) (bool, error)
	// MaxSteps overrides the chain's step bound when positive.
	MaxSteps int
}

// Walk is the result of RandomWalk: the visited states, start included.
type Walk[T State] struct {
	States  []T
	Outcome Outcome
}

// #endregion options

// #region random-walk

// RandomWalk samples a path starting at start until Stop fires, the path
// runs out of neighbours, every neighbour is rejected, or the step bound is
// reached. Only storage and CanAdvance errors are returned as errors.
func (c *Chain[T]) RandomWalk(ctx context.Context, start T, opts WalkOptions[T]) (Walk[T], error) {
	limit := opts.MaxSteps
	if limit <= 0 {
		limit = c.props.MaxSteps
	}
	if limit <= 0 {
		limit = DefaultMaxSteps
	}

	walk := Walk[T]{States: []T{start}}
	current := start
	for index := 0; ; index++ {
		if opts.Stop != nil && opts.Stop(current, index) {
			walk.Outcome = Stopped
			return walk, nil
		}
		if index >= limit {
			walk.Outcome = StepLimit
			return walk, nil
		}

		next, err := c.step(ctx, current, opts)
		switch {
		case errors.Is(err, ErrNoTransition):
			walk.Outcome = DeadEnd
			return walk, nil
		case errors.Is(err, errAllRejected):
			walk.Outcome = Rejected
			return walk, nil
		case err != nil:
			return walk, err
		}

		walk.States = append(walk.States, next)
		current = next
	}
}

// step samples the next state, discarding rejected candidates one by one.
// The candidate set is fetched once per step, so the number of retries is
// bounded by the number of distinct neighbours.
func (c *Chain[T]) step(ctx context.Context, current T, opts WalkOptions[T]) (T, error) {
	var zero T
	candidates, err := c.transitions(ctx, current, opts.Direction)
	if err != nil {
		return zero, err
	}
	if candidates.IsEmpty() {
		return zero, ErrNoTransition
	}

	for !candidates.IsEmpty() {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		candidate, err := candidates.Random(c.rng)
		if err != nil {
			return zero, err
		}
		if opts.CanAdvance == nil {
			return candidate, nil
		}
		ok, err := opts.CanAdvance(ctx, candidate)
		if err != nil {
			return zero, fmt.Errorf("vet candidate %q: %w", candidate.Key(), err)
		}
		if ok {
			return candidate, nil
		}
		candidates = candidates.Without(candidate)
	}
	return zero, errAllRejected
}

// #endregion random-walk
