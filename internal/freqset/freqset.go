package freqset

import (
	"errors"
	"math/rand/v2"
)

// ErrEmptySet is returned when sampling from a set with no weight.
var ErrEmptySet = errors.New("frequency set is empty")

// #region types

// Keyed is anything with a canonical string identity.
type Keyed interface {
	Key() string
}

type entry[T Keyed] struct {
	elem      T
	frequency uint64
}

// Set is a multiset: each element carries a count, and Random draws an
// element with probability proportional to that count.
//
// Entries are kept in insertion order so that enumeration and sampling are
// deterministic for a given instance and random source.
type Set[T Keyed] struct {
	index   map[string]int
	entries []entry[T]
	total   uint64
}

// #endregion types

// #region constructor

// New returns an empty set.
func New[T Keyed]() *Set[T] {
	return &Set[T]{index: make(map[string]int)}
}

// #endregion constructor

// #region mutation

// Add increments the count of elem by count, creating the entry if needed.
func (s *Set[T]) Add(elem T, count uint64) {
	key := elem.Key()
	i, ok := s.index[key]
	if !ok {
		i = len(s.entries)
		s.index[key] = i
		s.entries = append(s.entries, entry[T]{elem: elem})
	}
	s.entries[i].frequency += count
	s.total += count
}

// Remove decrements the count of elem by at most its current count.
// Removing an unknown element is a no-op.
func (s *Set[T]) Remove(elem T, count uint64) {
	i, ok := s.index[elem.Key()]
	if !ok {
		return
	}
	effective := min(count, s.entries[i].frequency)
	s.entries[i].frequency -= effective
	s.total -= effective
}

// #endregion mutation

// #region queries

// Frequency returns how many times elem appears in the set.
func (s *Set[T]) Frequency(elem T) uint64 {
	if i, ok := s.index[elem.Key()]; ok {
		return s.entries[i].frequency
	}
	return 0
}

// Probability returns the relative frequency of elem, or 0 for an empty set.
func (s *Set[T]) Probability(elem T) float64 {
	if s.total == 0 {
		return 0
	}
	return float64(s.Frequency(elem)) / float64(s.total)
}

// Total returns the sum of all counts.
func (s *Set[T]) Total() uint64 { return s.total }

// IsEmpty reports whether the set has no weight.
func (s *Set[T]) IsEmpty() bool { return s.total == 0 }

// Len returns the number of distinct elements with a nonzero count.
func (s *Set[T]) Len() int {
	n := 0
	for _, e := range s.entries {
		if e.frequency > 0 {
			n++
		}
	}
	return n
}

// Elements returns the distinct elements with a nonzero count, in insertion order.
func (s *Set[T]) Elements() []T {
	out := make([]T, 0, len(s.entries))
	for _, e := range s.entries {
		if e.frequency > 0 {
			out = append(out, e.elem)
		}
	}
	return out
}

// #endregion queries

// #region sampling

// Random draws an element with probability proportional to its count.
// A nil r uses the package-level source.
func (s *Set[T]) Random(r *rand.Rand) (T, error) {
	var zero T
	if s.total == 0 {
		return zero, ErrEmptySet
	}

	var dice uint64
	if r != nil {
		dice = r.Uint64N(s.total)
	} else {
		dice = rand.Uint64N(s.total)
	}

	// First entry whose running sum strictly exceeds the dice wins, so
	// zero-count entries can never be selected.
	var running uint64
	for _, e := range s.entries {
		running += e.frequency
		if running > dice {
			return e.elem, nil
		}
	}
	// Unreachable while total == sum(frequencies).
	return zero, ErrEmptySet
}

// #endregion sampling

// #region derived-sets

// Filter returns a new set holding only the entries for which keep is true.
func (s *Set[T]) Filter(keep func(T) bool) *Set[T] {
	out := New[T]()
	for _, e := range s.entries {
		if e.frequency > 0 && keep(e.elem) {
			out.Add(e.elem, e.frequency)
		}
	}
	return out
}

// Without returns a copy of the set with elem dropped entirely.
func (s *Set[T]) Without(elem T) *Set[T] {
	key := elem.Key()
	return s.Filter(func(other T) bool { return other.Key() != key })
}

// #endregion derived-sets
