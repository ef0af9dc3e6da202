// Package condition contains the pattern detectors used to annotate
// signal timelines. This package has NO external dependencies.
//
// A Spec is an immutable description of one pattern. Each render pass of a
// signal starts a fresh Session per Spec and feeds it every transition in
// order; the session reports whether the pattern matched at that
// transition.
package condition

import (
	"errors"
	"fmt"

	"github.com/sweeney/plotview/internal/signal"
)

// Kind identifies a pattern variant.
type Kind string

const (
	// KindStateLength matches a run of one level whose length falls inside
	// an inclusive range.
	KindStateLength Kind = "state_length"
	// KindEdgeCount matches when enough transitions fall inside a trailing
	// time window.
	KindEdgeCount Kind = "edge_count"
)

var (
	ErrUnknownKind  = errors.New("condition: unknown kind")
	ErrInvalidRange = errors.New("condition: min greater than max")
	ErrInvalidEdges = errors.New("condition: edge count must be at least 1")
)

// Spec describes a pattern. Only the fields of its Kind are meaningful.
type Spec struct {
	Kind Kind

	// state_length
	Level bool
	Min   signal.Time
	Max   signal.Time

	// edge_count
	Edges  int
	Window signal.Time
}

// StateLength returns a spec matching when the signal enters level after a
// run lasting between min and max time units inclusive. The run that matches
// is the one that just ended, which holds the opposite level.
func StateLength(level bool, min, max signal.Time) Spec {
	return Spec{Kind: KindStateLength, Level: level, Min: min, Max: max}
}

// EdgeCount returns a spec matching when at least edges transitions fall
// inside the window ending at the current transition.
func EdgeCount(edges int, window signal.Time) Spec {
	return Spec{Kind: KindEdgeCount, Edges: edges, Window: window}
}

// Validate checks the fields of the spec's kind.
func (s Spec) Validate() error {
	switch s.Kind {
	case KindStateLength:
		if s.Min > s.Max {
			return fmt.Errorf("%w: %d > %d", ErrInvalidRange, s.Min, s.Max)
		}
	case KindEdgeCount:
		if s.Edges < 1 {
			return fmt.Errorf("%w: got %d", ErrInvalidEdges, s.Edges)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
	return nil
}

func (s Spec) String() string {
	switch s.Kind {
	case KindStateLength:
		return fmt.Sprintf("%s(%s, %d..%d)", s.Kind, levelString(s.Level), s.Min, s.Max)
	case KindEdgeCount:
		return fmt.Sprintf("%s(%d in %d)", s.Kind, s.Edges, s.Window)
	}
	return string(s.Kind)
}

// Start returns a new session with fresh state. Sessions started from the
// same spec share nothing.
func (s Spec) Start() *Session {
	return &Session{spec: s}
}

// Session is the running state of one spec over one signal.
// Not safe for concurrent use.
type Session struct {
	spec Spec

	// time of the previous transition, 0 before the first
	prev signal.Time

	// transitions inside the current edge_count window, oldest first
	recent []signal.Time
}

// Observe consumes one transition. t must be greater than every earlier
// call's t; level is the level holding after the transition.
// Returns true if the pattern matched at t.
func (s *Session) Observe(t signal.Time, level bool) bool {
	switch s.spec.Kind {
	case KindStateLength:
		return s.observeStateLength(t, level)
	case KindEdgeCount:
		return s.observeEdgeCount(t)
	}
	return false
}

func (s *Session) observeStateLength(t signal.Time, level bool) bool {
	d := t - s.prev
	s.prev = t
	if level != s.spec.Level {
		return false
	}
	return d >= s.spec.Min && d <= s.spec.Max
}

func (s *Session) observeEdgeCount(t signal.Time) bool {
	s.recent = append(s.recent, t)
	drop := 0
	for drop < len(s.recent) && t-s.recent[drop] >= s.spec.Window && s.recent[drop] != t {
		drop++
	}
	s.recent = s.recent[drop:]
	return len(s.recent) >= s.spec.Edges
}

func levelString(b bool) string {
	if b {
		return "high"
	}
	return "low"
}
