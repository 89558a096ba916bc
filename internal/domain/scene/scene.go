// Package scene owns the active-segment state machine.
//
// A Synchronizer consumes scroll samples, resolves the active segment and
// emits the enter/exit transitions that changed since the previous sample.
// It never performs side effects itself; callers hand each Cycle to an
// effect dispatcher.
package scene

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/isles/internal/domain/model"
	"github.com/okian/isles/internal/domain/segment"
)

// State is the synchronizer's coarse state.
type State int

const (
	// Idle means no segment is active.
	Idle State = iota
	// SegmentActive means exactly one segment is active.
	SegmentActive
)

func (s State) String() string {
	if s == SegmentActive {
		return "segment_active"
	}
	return "idle"
}

// SkipPolicy controls what happens when one sample jumps over segments.
type SkipPolicy int

const (
	// SkipPair exits the old segment and enters the new one; segments in
	// between receive nothing.
	SkipPair SkipPolicy = iota
	// SkipTraverse gives every segment in between a transient enter and
	// exit, in travel order.
	SkipTraverse
)

func (p SkipPolicy) String() string {
	if p == SkipTraverse {
		return "traverse"
	}
	return "pair"
}

// ParseSkipPolicy accepts "pair" or "traverse" (case-insensitive, empty means pair).
func ParseSkipPolicy(s string) (SkipPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pair":
		return SkipPair, nil
	case "traverse":
		return SkipTraverse, nil
	default:
		return SkipPair, fmt.Errorf("unknown skip policy: %s", s)
	}
}

// Kind tags a transition.
type Kind int

const (
	// Enter means the segment became active.
	Enter Kind = iota
	// Exit means the segment stopped being active.
	Exit
)

func (k Kind) String() string {
	if k == Exit {
		return "exit"
	}
	return "enter"
}

// Transition is one enter or exit of one segment.
type Transition struct {
	Kind    Kind
	Segment model.Segment
}

// Cycle is the outcome of one synchronization step.
type Cycle struct {
	ID          uuid.UUID // zero when nothing changed
	Sample      model.ScrollState
	Transitions []Transition // ordered: exits precede the enter that replaces them
	Previous    *model.Segment
	Current     *model.Segment
	Skipped     int // segments jumped over in one sample
}

// Changed reports whether the cycle carries any transition.
func (c Cycle) Changed() bool { return len(c.Transitions) > 0 }

// Entered lists segments entered during the cycle, in order.
func (c Cycle) Entered() []model.Segment { return c.filter(Enter) }

// Exited lists segments exited during the cycle, in order.
func (c Cycle) Exited() []model.Segment { return c.filter(Exit) }

func (c Cycle) filter(k Kind) []model.Segment {
	var out []model.Segment
	for _, t := range c.Transitions {
		if t.Kind == k {
			out = append(out, t.Segment)
		}
	}
	return out
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithSkipPolicy selects how segment skips are reported.
func WithSkipPolicy(p SkipPolicy) Option {
	return func(s *Synchronizer) { s.policy = p }
}

// WithIDGenerator replaces uuid.New for cycle IDs.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(s *Synchronizer) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Synchronizer is the single owner of the active segment. It is not safe
// for concurrent use: exactly one goroutine (the session loop) calls Step.
type Synchronizer struct {
	resolver *segment.Resolver
	policy   SkipPolicy
	newID    func() uuid.UUID

	current  *model.Segment
	previous *model.Segment
}

// New creates an Idle synchronizer over the resolver's timeline.
func New(r *segment.Resolver, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		resolver: r,
		policy:   SkipPair,
		newID:    uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports Idle or SegmentActive.
func (s *Synchronizer) State() State {
	if s.current == nil {
		return Idle
	}
	return SegmentActive
}

// Current returns the active segment, if any.
func (s *Synchronizer) Current() (model.Segment, bool) {
	if s.current == nil {
		return model.Segment{}, false
	}
	return *s.current, true
}

// Previous returns the segment that was active before the last step.
func (s *Synchronizer) Previous() (model.Segment, bool) {
	if s.previous == nil {
		return model.Segment{}, false
	}
	return *s.previous, true
}

// Policy returns the configured skip policy.
func (s *Synchronizer) Policy() SkipPolicy { return s.policy }

// Step resolves st and returns the transitions it caused.
func (s *Synchronizer) Step(st model.ScrollState) Cycle {
	next, ok := s.resolver.Resolve(st.Progress, st.Direction)
	c := Cycle{Sample: st, Previous: s.current}

	switch {
	case s.current == nil && !ok:
		// still idle
	case s.current == nil:
		c.Transitions = append(c.Transitions, Transition{Kind: Enter, Segment: next})
	case !ok:
		c.Transitions = append(c.Transitions, Transition{Kind: Exit, Segment: *s.current})
	case s.current.Index == next.Index:
		// still on the same segment
	default:
		c.Transitions = append(c.Transitions, Transition{Kind: Exit, Segment: *s.current})
		c.Skipped = abs(next.Index-s.current.Index) - 1
		if s.policy == SkipTraverse {
			c.Transitions = append(c.Transitions, s.between(s.current.Index, next.Index)...)
		}
		c.Transitions = append(c.Transitions, Transition{Kind: Enter, Segment: next})
	}

	s.previous = s.current
	if ok {
		seg := next
		s.current = &seg
	} else {
		s.current = nil
	}
	c.Current = s.current
	if c.Changed() {
		c.ID = s.newID()
	}
	return c
}

// Reset returns the synchronizer to Idle, exiting the active segment.
func (s *Synchronizer) Reset() Cycle {
	c := Cycle{Previous: s.current}
	if s.current != nil {
		c.Transitions = []Transition{{Kind: Exit, Segment: *s.current}}
		c.ID = s.newID()
	}
	s.previous = s.current
	s.current = nil
	return c
}

// between yields enter/exit pairs for the segments strictly between from
// and to, in travel order.
func (s *Synchronizer) between(from, to int) []Transition {
	tl := s.resolver.Timeline()
	step := 1
	if to < from {
		step = -1
	}
	var out []Transition
	for i := from + step; i != to; i += step {
		seg := tl.At(i)
		out = append(out,
			Transition{Kind: Enter, Segment: seg},
			Transition{Kind: Exit, Segment: seg},
		)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
