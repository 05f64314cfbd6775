package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/brewguide/internal/domain"
	"github.com/hammamikhairi/brewguide/internal/timeline"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <recipe-id> <elapsed>",
	Short: "Show which step is active at a point on the brew clock",
	Long: "Resolve the active step of a recipe at an elapsed time. Elapsed is either a\n" +
		"number of seconds (\"50\", \"12.5\") or a duration (\"1m30s\").",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := recipeSource()
		if err != nil {
			return err
		}
		r, err := src.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("recipe %q: %w", args[0], err)
		}
		seq, err := domain.NewSequence(r.Steps)
		if err != nil {
			return fmt.Errorf("recipe %q: %w", r.ID, err)
		}

		pos, err := resolveArg(seq, args[1])
		if err != nil {
			return err
		}

		step := seq.Step(pos.Index)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "recipe:\t%s (%s total)\n", r.Name, pos.Total)
		fmt.Fprintf(w, "elapsed:\t%s\n", pos.Elapsed)
		fmt.Fprintf(w, "step:\t%d/%d %s\n", pos.Index+1, seq.Len(), stepLabel(step))
		fmt.Fprintf(w, "step elapsed:\t%s\n", pos.StepElapsed)
		fmt.Fprintf(w, "step remaining:\t%s\n", pos.StepRemaining)
		fmt.Fprintf(w, "complete:\t%t\n", pos.Complete)
		return w.Flush()
	},
}

// resolveArg parses elapsed as seconds or as a Go duration.
func resolveArg(seq *domain.Sequence, arg string) (timeline.Position, error) {
	arg = strings.TrimSpace(arg)
	if secs, err := strconv.ParseFloat(arg, 64); err == nil {
		return timeline.ResolveSeconds(seq, secs)
	}
	d, err := time.ParseDuration(arg)
	if err != nil {
		return timeline.Position{}, fmt.Errorf("%w: %q is neither seconds nor a duration", domain.ErrInvalidElapsed, arg)
	}
	return timeline.Resolve(seq, d)
}

func stepLabel(s domain.Step) string {
	if s.ShortInstruction != "" {
		return s.ShortInstruction
	}
	return s.Instruction
}
