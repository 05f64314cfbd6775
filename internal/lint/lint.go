// Package lint checks recipe collections at authoring time: narration
// fit, phrasing and declared totals.
package lint

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hammamikhairi/brewguide/internal/domain"
	"github.com/hammamikhairi/brewguide/internal/logger"
	"github.com/hammamikhairi/brewguide/internal/narration"
)

// Level grades an issue.
type Level int

const (
	LevelOK Level = iota
	LevelWarning
	LevelError
)

// String returns the report label for a level.
func (l Level) String() string {
	switch l {
	case LevelOK:
		return "ok"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Rule names the check that produced an issue.
type Rule string

const (
	RuleSequence  Rule = "sequence"
	RuleNarration Rule = "narration"
	RuleInstant   Rule = "instant-step"
	RulePhrase    Rule = "phrase"
	RuleTotal     Rule = "total"
)

// Issue is one finding. Step is the 1-based step order, 0 for findings
// about the whole recipe.
type Issue struct {
	Source     string
	RecipeID   string
	RecipeName string
	Step       int
	Level      Level
	Rule       Rule
	Message    string

	// Verdict is set for narration findings.
	Verdict *narration.Verdict
}

// Location renders where the issue was found.
func (i Issue) Location() string {
	loc := i.RecipeID
	if i.Source != "" && i.Source != "builtin" {
		loc = i.Source + " :: " + loc
	}
	if i.Step > 0 {
		return fmt.Sprintf("%s step %d", loc, i.Step)
	}
	return loc
}

// Option configures the linter.
type Option func(*Linter)

// WithPhraseRules toggles the phrasing checks.
func WithPhraseRules(on bool) Option {
	return func(l *Linter) {
		l.phraseRules = on
	}
}

// WithTotalTolerance sets how far a declared total may drift from the sum
// of step durations before it is reported.
func WithTotalTolerance(d time.Duration) Option {
	return func(l *Linter) {
		l.totalTolerance = d
	}
}

// WithWorkers bounds how many recipes are linted at once.
func WithWorkers(n int) Option {
	return func(l *Linter) {
		l.workers = n
	}
}

// Linter runs every check over recipes.
type Linter struct {
	validator      *narration.Validator
	log            *logger.Logger
	phraseRules    bool
	totalTolerance time.Duration
	workers        int
}

// New creates a linter around a narration validator.
func New(v *narration.Validator, log *logger.Logger, opts ...Option) *Linter {
	l := &Linter{
		validator:      v,
		log:            log,
		phraseRules:    true,
		totalTolerance: 2 * time.Second,
		workers:        4,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.workers < 1 {
		l.workers = 1
	}
	return l
}

// Lint checks one recipe and returns its findings in step order,
// including ok verdicts.
func (l *Linter) Lint(r *domain.Recipe) []Issue {
	var out []Issue
	add := func(step int, level Level, rule Rule, msg string, vd *narration.Verdict) {
		out = append(out, Issue{
			Source:     r.Source,
			RecipeID:   r.ID,
			RecipeName: r.Name,
			Step:       step,
			Level:      level,
			Rule:       rule,
			Message:    msg,
			Verdict:    vd,
		})
	}

	if _, err := domain.NewSequence(r.Steps); err != nil {
		add(0, LevelError, RuleSequence, err.Error(), nil)
		return out
	}

	if l.phraseRules && r.Intro != "" {
		for _, msg := range bannedPhrases(r.Intro) {
			add(0, LevelWarning, RulePhrase, "intro: "+msg, nil)
		}
	}

	for _, step := range r.Steps {
		if step.Duration == 0 {
			if step.Narration != "" {
				add(step.Order, LevelError, RuleInstant,
					fmt.Sprintf("narration on a zero-duration step (%d words) can never be spoken", narration.WordCount(step.Narration)), nil)
			}
			continue
		}

		vd, err := l.validator.ValidateStep(step)
		if err != nil {
			add(step.Order, LevelError, RuleNarration, err.Error(), nil)
			continue
		}
		add(step.Order, levelFor(vd.Severity), RuleNarration, vd.Message, &vd)

		if l.phraseRules && step.Narration != "" {
			for _, msg := range phraseIssues(step.Narration) {
				add(step.Order, LevelWarning, RulePhrase, msg, nil)
			}
		}
	}

	if r.DeclaredTotal > 0 {
		computed := r.ComputedTotal()
		diff := r.DeclaredTotal - computed
		if diff < 0 {
			diff = -diff
		}
		if diff > l.totalTolerance {
			add(0, LevelWarning, RuleTotal,
				fmt.Sprintf("declared total %s differs from sum of steps %s", r.DeclaredTotal, computed), nil)
		}
	}

	return out
}

// LintAll checks recipes concurrently and collects a sorted report. It
// stops early only when ctx is cancelled.
func (l *Linter) LintAll(ctx context.Context, recipes []*domain.Recipe) (*Report, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	var mu sync.Mutex
	report := &Report{}

	for _, r := range recipes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			issues := l.Lint(r)

			mu.Lock()
			defer mu.Unlock()
			report.Recipes++
			report.Steps += len(r.Steps)
			report.Issues = append(report.Issues, issues...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("lint: %w", err)
	}

	report.sort()
	errs, warns, ok := report.Counts()
	l.log.Info("linted %d recipes (%d steps): %d errors, %d warnings, %d ok",
		report.Recipes, report.Steps, errs, warns, ok)
	return report, nil
}

func levelFor(s narration.Severity) Level {
	switch {
	case s.IsError():
		return LevelError
	case s.IsWarning():
		return LevelWarning
	default:
		return LevelOK
	}
}

// Phrase rules.

var (
	startTimerRE  = regexp.MustCompile(`(?i)\bstart (your )?timer\b`)
	atTimestampRE = regexp.MustCompile(`(?i)\bat\s+\d(?::\d{2})?`)
)

var timingStarters = []string{"In ", "You have ", "Now wait ", "Take ", "Finally, "}

// bannedPhrases reports phrases that tie narration to a wall-clock the
// listener does not see.
func bannedPhrases(text string) []string {
	var out []string
	if startTimerRE.MatchString(text) {
		out = append(out, `contains "Start your timer"; the guide runs the clock`)
	}
	if atTimestampRE.MatchString(text) {
		out = append(out, `contains "At <timestamp>"; say how long the step lasts instead`)
	}
	return out
}

// phraseIssues runs every phrasing check on a step narration.
func phraseIssues(text string) []string {
	out := bannedPhrases(text)
	if !hasTimingStarter(text) && !strings.Contains(text, " seconds") && !strings.Contains(text, " second") {
		out = append(out, `does not open with a timing phrase ("You have 15 seconds to ...", "In 15 seconds ...")`)
	}
	return out
}

func hasTimingStarter(text string) bool {
	for _, s := range timingStarters {
		if strings.HasPrefix(text, s) {
			return true
		}
	}
	return false
}

// Report is the outcome of linting a collection.
type Report struct {
	Recipes int
	Steps   int
	Issues  []Issue
}

// HasErrors reports whether any issue is an error.
func (r *Report) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Level == LevelError {
			return true
		}
	}
	return false
}

// Counts returns the number of errors, warnings and ok verdicts.
func (r *Report) Counts() (errs, warnings, ok int) {
	for _, i := range r.Issues {
		switch i.Level {
		case LevelError:
			errs++
		case LevelWarning:
			warnings++
		default:
			ok++
		}
	}
	return errs, warnings, ok
}

func (r *Report) sort() {
	sort.SliceStable(r.Issues, func(a, b int) bool {
		x, y := r.Issues[a], r.Issues[b]
		if x.Source != y.Source {
			return x.Source < y.Source
		}
		if x.RecipeID != y.RecipeID {
			return x.RecipeID < y.RecipeID
		}
		return x.Step < y.Step
	})
}
