package lint

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

func (l Level) badge() string {
	switch l {
	case LevelError:
		return errorStyle.Render("ERROR")
	case LevelWarning:
		return warnStyle.Render("WARN ")
	default:
		return okStyle.Render("OK   ")
	}
}

// Write prints one line per finding followed by a summary. Ok verdicts
// are printed only when showOK is set.
func (r *Report) Write(w io.Writer, showOK bool) error {
	for _, i := range r.Issues {
		if i.Level == LevelOK && !showOK {
			continue
		}
		label := string(i.Rule)
		if i.Verdict != nil {
			label = i.Verdict.Severity.String()
		}
		if _, err := fmt.Fprintf(w, "%s %s %s %s\n",
			i.Level.badge(), i.Location(), dimStyle.Render("["+label+"]"), i.Message); err != nil {
			return err
		}
	}

	errs, warns, ok := r.Counts()
	if errs == 0 && warns == 0 {
		_, err := fmt.Fprintf(w, "No narration issues found in %d recipes (%d steps).\n", r.Recipes, r.Steps)
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d recipes, %d steps: %d errors, %d warnings, %d ok\n",
		r.Recipes, r.Steps, errs, warns, ok)
	return err
}
