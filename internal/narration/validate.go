// Package narration checks that a step's spoken guidance fits the time
// the step allots to it.
//
// The check is a pure classifier. It estimates speaking time from the
// word count and reports how full the step would be; it never edits the
// text. Fixing a script is left to the author, guided by the verdict.
package narration

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hammamikhairi/brewguide/internal/domain"
)

// DefaultWordsPerSecond is a conservative speaking rate for synthesized
// narration.
const DefaultWordsPerSecond = 2.5

// Thresholds partition the fill-ratio axis. They must be ascending.
type Thresholds struct {
	Min        float64 // below: error-short
	OptimalMin float64 // below: warn-short
	OptimalMax float64 // up to: ok
	TightMax   float64 // up to: warn-tight, "getting tight"
	Max        float64 // up to: warn-tight, "almost no room"; above: error-long
}

// DefaultThresholds returns the UX-calibrated bands.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Min:        0.30,
		OptimalMin: 0.50,
		OptimalMax: 0.85,
		TightMax:   0.95,
		Max:        1.0,
	}
}

func (t Thresholds) validate() error {
	vals := []float64{t.Min, t.OptimalMin, t.OptimalMax, t.TightMax, t.Max}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: threshold %v out of range", domain.ErrInvalidInput, v)
		}
	}
	for i := 1; i < len(vals); i++ {
		if vals[i] < vals[i-1] {
			return fmt.Errorf("%w: thresholds not ascending (%v)", domain.ErrInvalidInput, vals)
		}
	}
	if t.Max <= 0 {
		return fmt.Errorf("%w: max threshold must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// Verdict is the outcome of checking one narration against its step.
type Verdict struct {
	Words     int
	Estimated time.Duration // speaking time at the configured rate
	Allotted  time.Duration
	FillRatio float64 // Estimated / Allotted
	Severity  Severity
	Message   string

	// Word range that would land in the ok band for this step.
	TargetMinWords int
	TargetMaxWords int
}

// Option configures the validator.
type Option func(*Validator)

// WithWordsPerSecond sets the assumed speaking rate.
func WithWordsPerSecond(wps float64) Option {
	return func(v *Validator) {
		v.wordsPerSecond = wps
	}
}

// WithThresholds replaces the classification bands.
func WithThresholds(t Thresholds) Option {
	return func(v *Validator) {
		v.thresholds = t
	}
}

// Validator classifies narration fit. It holds no mutable state and is
// safe for concurrent use.
type Validator struct {
	wordsPerSecond float64
	thresholds     Thresholds
}

// New creates a validator. It fails with ErrInvalidInput when the
// speaking rate is not positive or the thresholds are not ascending.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		wordsPerSecond: DefaultWordsPerSecond,
		thresholds:     DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(v)
	}

	if math.IsNaN(v.wordsPerSecond) || math.IsInf(v.wordsPerSecond, 0) || v.wordsPerSecond <= 0 {
		return nil, fmt.Errorf("%w: words per second must be positive, got %v", domain.ErrInvalidInput, v.wordsPerSecond)
	}
	if err := v.thresholds.validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate classifies text against allotted. Empty text is valid input
// and classifies as error-short. Fails with ErrInvalidInput when
// allotted is not positive.
func (v *Validator) Validate(text string, allotted time.Duration) (Verdict, error) {
	if allotted <= 0 {
		return Verdict{}, fmt.Errorf("%w: allotted duration must be positive, got %s", domain.ErrInvalidInput, allotted)
	}

	words := WordCount(text)
	estSec := float64(words) / v.wordsPerSecond
	allotSec := allotted.Seconds()
	ratio := float64(words) / (v.wordsPerSecond * allotSec)

	verdict := Verdict{
		Words:          words,
		Estimated:      time.Duration(estSec * float64(time.Second)),
		Allotted:       allotted,
		FillRatio:      ratio,
		Severity:       v.classify(ratio),
		TargetMinWords: int(math.Ceil(allotSec*v.thresholds.OptimalMin*v.wordsPerSecond - ratioEpsilon)),
		TargetMaxWords: int(math.Floor(allotSec*v.thresholds.OptimalMax*v.wordsPerSecond + ratioEpsilon)),
	}
	verdict.Message = v.message(verdict)
	return verdict, nil
}

// ValidateStep checks a step's narration against its duration.
func (v *Validator) ValidateStep(step domain.Step) (Verdict, error) {
	return v.Validate(step.Narration, step.Duration)
}

// ratioEpsilon absorbs float rounding so a ratio that is exactly on a
// band edge lands in the band the edge belongs to.
const ratioEpsilon = 1e-9

func (v *Validator) classify(ratio float64) Severity {
	t := v.thresholds
	switch {
	case ratio > t.Max+ratioEpsilon:
		return SeverityErrorLong
	case ratio > t.OptimalMax+ratioEpsilon:
		return SeverityWarnTight
	case ratio >= t.OptimalMin-ratioEpsilon:
		return SeverityOK
	case ratio >= t.Min-ratioEpsilon:
		return SeverityWarnShort
	default:
		return SeverityErrorShort
	}
}

func (v *Validator) message(vd Verdict) string {
	fit := fmt.Sprintf("%d words ≈ %.1fs (%.0f%% of %s)",
		vd.Words, vd.Estimated.Seconds(), vd.FillRatio*100, formatSeconds(vd.Allotted))
	target := fmt.Sprintf("%d-%d words", vd.TargetMinWords, vd.TargetMaxWords)

	switch vd.Severity {
	case SeverityErrorLong:
		return fmt.Sprintf("too long: %s, will be cut off; target %s", fit, target)
	case SeverityWarnTight:
		if vd.FillRatio > v.thresholds.TightMax {
			return fmt.Sprintf("almost no room: %s, risk of feeling rushed; target %s", fit, target)
		}
		return fmt.Sprintf("getting tight: %s, consider trimming slightly; target %s", fit, target)
	case SeverityOK:
		return fmt.Sprintf("good fit: %s", fit)
	case SeverityWarnShort:
		return fmt.Sprintf("could be longer: %s, feels sparse; target %s", fit, target)
	default:
		if vd.Words == 0 {
			return fmt.Sprintf("no narration for a %s step; target %s", formatSeconds(vd.Allotted), target)
		}
		return fmt.Sprintf("too short: %s, insufficient guidance; target %s", fit, target)
	}
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%gs", d.Seconds())
}
