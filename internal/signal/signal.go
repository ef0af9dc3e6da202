// Package signal models a discrete binary signal as the ordered list of
// timestamps at which its level flips. The level before the first
// transition is always true.
package signal

import (
	"errors"
	"fmt"
	"sort"
)

// Time is a point on a signal's timeline in TDS units.
type Time uint64

// ErrNotIncreasing is returned by Validate for duplicate or decreasing
// transition timestamps.
var ErrNotIncreasing = errors.New("signal: transitions not strictly increasing")

// Signal is an immutable sequence of transition timestamps.
//
// Transitions must be strictly increasing. The rendering core assumes this
// and does not check it; producers call Validate.
type Signal struct {
	tds []Time
}

// New returns a signal with a private copy of the given transitions.
func New(transitions ...Time) *Signal {
	tds := make([]Time, len(transitions))
	copy(tds, transitions)
	return &Signal{tds: tds}
}

// Validate reports ErrNotIncreasing if any transition is not strictly
// greater than its predecessor.
func (s *Signal) Validate() error {
	for i := 1; i < len(s.tds); i++ {
		if s.tds[i] <= s.tds[i-1] {
			return fmt.Errorf("%w: index %d (%d after %d)", ErrNotIncreasing, i, s.tds[i], s.tds[i-1])
		}
	}
	return nil
}

// Len returns the number of transitions.
func (s *Signal) Len() int {
	return len(s.tds)
}

// At returns the i-th transition timestamp.
func (s *Signal) At(i int) Time {
	return s.tds[i]
}

// Transitions returns the transition timestamps. The slice must not be
// modified.
func (s *Signal) Transitions() []Time {
	return s.tds
}

// Last returns the final transition timestamp, or false for an empty signal.
func (s *Signal) Last() (Time, bool) {
	if len(s.tds) == 0 {
		return 0, false
	}
	return s.tds[len(s.tds)-1], true
}

// Find returns the index of the greatest transition <= t.
// Returns false if t precedes every transition.
func (s *Signal) Find(t Time) (int, bool) {
	// first index with tds[i] > t
	i := sort.Search(len(s.tds), func(i int) bool { return s.tds[i] > t })
	if i == 0 {
		return 0, false
	}
	return i - 1, true
}

// LevelAt returns the level held at t: true when an even number of
// transitions are <= t.
func (s *Signal) LevelAt(t Time) bool {
	i, ok := s.Find(t)
	if !ok {
		return true
	}
	return (i+1)%2 == 0
}
