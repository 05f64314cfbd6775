// Package timeline maps a brew clock onto the steps of a sequence.
//
// Resolution is a pure function of the elapsed time: there is no cursor
// and nothing is remembered between calls, so pausing, seeking or
// rewinding the clock needs no special handling.
package timeline

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/hammamikhairi/brewguide/internal/domain"
)

// Position is the resolved state of a sequence at one instant.
type Position struct {
	Index         int // active step, always in [0, len-1]
	StepElapsed   time.Duration
	StepRemaining time.Duration
	Complete      bool

	Elapsed time.Duration // the clock value that was resolved
	Total   time.Duration // sum of step durations
}

// Remaining is the time left on the whole sequence.
func (p Position) Remaining() time.Duration {
	if p.Elapsed >= p.Total {
		return 0
	}
	return p.Total - p.Elapsed
}

// StepFraction is the share of the active step already elapsed, in [0, 1].
// Instantaneous steps report 1.
func (p Position) StepFraction() float64 {
	d := p.StepElapsed + p.StepRemaining
	if d <= 0 {
		return 1
	}
	return float64(p.StepElapsed) / float64(d)
}

// TotalFraction is the share of the whole sequence already elapsed, in [0, 1].
func (p Position) TotalFraction() float64 {
	if p.Total <= 0 || p.Elapsed >= p.Total {
		return 1
	}
	return float64(p.Elapsed) / float64(p.Total)
}

// Resolve returns the position of seq at elapsed.
//
// For elapsed < Total the active step is the unique i with
// Start(i) <= elapsed < End(i); zero-duration steps can never satisfy
// that and are skipped. Once elapsed >= Total the last step is reported
// as active with nothing remaining.
func Resolve(seq *domain.Sequence, elapsed time.Duration) (Position, error) {
	n := seq.Len()
	if n == 0 {
		return Position{}, fmt.Errorf("%w: no steps", domain.ErrInvalidSequence)
	}
	if elapsed < 0 {
		return Position{}, fmt.Errorf("%w: %s", domain.ErrInvalidElapsed, elapsed)
	}

	total := seq.Total()
	if elapsed >= total {
		last := n - 1
		return Position{
			Index:       last,
			StepElapsed: seq.Step(last).Duration,
			Complete:    true,
			Elapsed:     elapsed,
			Total:       total,
		}, nil
	}

	// First boundary strictly past elapsed.
	i := sort.Search(n, func(k int) bool { return seq.End(k) > elapsed })

	stepElapsed := elapsed - seq.Start(i)
	return Position{
		Index:         i,
		StepElapsed:   stepElapsed,
		StepRemaining: seq.Step(i).Duration - stepElapsed,
		Elapsed:       elapsed,
		Total:         total,
	}, nil
}

// ResolveSeconds is Resolve for a clock expressed in seconds.
func ResolveSeconds(seq *domain.Sequence, seconds float64) (Position, error) {
	if math.IsNaN(seconds) || seconds < 0 {
		return Position{}, fmt.Errorf("%w: %v seconds", domain.ErrInvalidElapsed, seconds)
	}
	return Resolve(seq, Seconds(seconds))
}

// Seconds converts a seconds value to a Duration, saturating at the
// largest representable Duration.
func Seconds(s float64) time.Duration {
	if s >= float64(math.MaxInt64)/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(s * float64(time.Second))
}
