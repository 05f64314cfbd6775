package domain

import (
	"fmt"
	"time"
)

// Sequence is an immutable, non-empty, ordered list of steps. It carries
// the prefix-sum boundaries of its steps so that resolving a position is
// a lookup rather than a walk.
//
// The zero value is an empty sequence and is rejected by the resolver.
type Sequence struct {
	steps []Step
	ends  []time.Duration // ends[i] = sum of durations of steps 0..i
}

// NewSequence copies steps into a new Sequence. It fails with
// ErrInvalidSequence when steps is empty or any duration is negative.
func NewSequence(steps []Step) (*Sequence, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidSequence)
	}

	s := &Sequence{
		steps: make([]Step, len(steps)),
		ends:  make([]time.Duration, len(steps)),
	}
	copy(s.steps, steps)

	var cum time.Duration
	for i, st := range s.steps {
		if st.Duration < 0 {
			return nil, fmt.Errorf("%w: step %d has negative duration %s", ErrInvalidSequence, i+1, st.Duration)
		}
		cum += st.Duration
		s.ends[i] = cum
	}
	return s, nil
}

// Len returns the number of steps.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.steps)
}

// Step returns the i-th step (0-based). Panics when i is out of range.
func (s *Sequence) Step(i int) Step {
	return s.steps[i]
}

// Steps returns a copy of the step list.
func (s *Sequence) Steps() []Step {
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Total is the sum of all step durations.
func (s *Sequence) Total() time.Duration {
	if s.Len() == 0 {
		return 0
	}
	return s.ends[len(s.ends)-1]
}

// Start returns the timeline offset at which step i begins.
func (s *Sequence) Start(i int) time.Duration {
	if i == 0 {
		return 0
	}
	return s.ends[i-1]
}

// End returns the timeline offset at which step i ends.
func (s *Sequence) End(i int) time.Duration {
	return s.ends[i]
}

// Boundaries returns a copy of the cumulative end offsets.
func (s *Sequence) Boundaries() []time.Duration {
	out := make([]time.Duration, len(s.ends))
	copy(out, s.ends)
	return out
}
