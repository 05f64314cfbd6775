// Package notify formats and delivers guide announcements.
//
// lines.go centralises every string the guide says. Keep lines short and
// direct; they are read at a glance while pouring.
package notify

import (
	"fmt"
	"strings"
	"time"
)

// ── Session ──────────────────────────────────────────────────────

func LineStart(recipeName string, total time.Duration) string {
	return fmt.Sprintf("Brewing %s. Total time %s.", recipeName, FormatDuration(total))
}

func LinePaused() string {
	return "Paused. The clock is on hold."
}

func LineResumed() string {
	return "Resumed."
}

func LineRestarted() string {
	return "Back to the start."
}

func LineAbandoned() string {
	return "Brew abandoned."
}

// LinePausedReminder nudges the user after the clock has been on hold for
// a while.
func LinePausedReminder(paused time.Duration) string {
	return fmt.Sprintf("Still paused (%s). Press space to resume.", FormatDuration(paused))
}

// ── Steps ────────────────────────────────────────────────────────

// LineStep announces a step. The narration, when present, is what the
// user hears; the short instruction is the fallback.
func LineStep(order, total int, short, narration string, d time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Step %d of %d", order, total)
	if short != "" {
		fmt.Fprintf(&b, ": %s", short)
	}
	if d > 0 {
		fmt.Fprintf(&b, " (%s)", FormatDuration(d))
	}
	b.WriteString(".")
	if narration != "" {
		fmt.Fprintf(&b, " %s", narration)
	}
	return b.String()
}

// LineAlmostDone warns that the current step is about to end.
func LineAlmostDone(short string, remaining time.Duration) string {
	if short == "" {
		return fmt.Sprintf("%s left on this step.", FormatDuration(remaining))
	}
	return fmt.Sprintf("%s left: %s.", FormatDuration(remaining), short)
}

// LineNextPreview previews the upcoming step.
func LineNextPreview(order int, short string) string {
	if len(short) > 60 {
		short = short[:57] + "..."
	}
	return fmt.Sprintf("Coming up, step %d: %s", order, short)
}

// LineStatus reports where the brew is.
func LineStatus(order, total int, short string, stepRemaining, remaining time.Duration) string {
	label := fmt.Sprintf("Step %d of %d", order, total)
	if short != "" {
		label += ": " + short
	}
	return fmt.Sprintf("%s. %s left on this step, %s in total.", label, FormatClock(stepRemaining), FormatClock(remaining))
}

// LineComplete is the final announcement of a brew.
func LineComplete(recipeName string) string {
	return fmt.Sprintf("%s is done. Enjoy your coffee.", recipeName)
}

// ── Helpers ──────────────────────────────────────────────────────

// FormatDuration returns a human-friendly duration such as "45 seconds"
// or "2 minutes 30 seconds".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	switch {
	case m == 0:
		return plural(s, "second")
	case s == 0:
		return plural(m, "minute")
	default:
		return plural(m, "minute") + " " + plural(s, "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatClock renders a duration as m:ss.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
