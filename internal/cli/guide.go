package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hammamikhairi/brewguide/internal/command"
	"github.com/hammamikhairi/brewguide/internal/display"
	"github.com/hammamikhairi/brewguide/internal/domain"
	"github.com/hammamikhairi/brewguide/internal/guide"
	"github.com/hammamikhairi/brewguide/internal/notify"
	"github.com/hammamikhairi/brewguide/internal/storage"
)

var guidePlain bool

func init() {
	rootCmd.AddCommand(guideCmd)
	guideCmd.Flags().BoolVar(&guidePlain, "plain", false, "print announcements as plain lines instead of the interactive view")
}

var guideCmd = &cobra.Command{
	Use:   "guide <recipe-id>",
	Short: "Guide a brew step by step",
	Long: "Start the brew clock for a recipe and follow it step by step. In a terminal\n" +
		"the interactive view is used: space pauses, arrows move the clock, r restarts\n" +
		"and q quits. Without a terminal (or with --plain) announcements are printed\n" +
		"as lines and commands (pause, resume, back 10, seek 1:30, status, quit) are\n" +
		"read from standard input.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := recipeSource()
		if err != nil {
			return err
		}
		eng := guide.New(src, storage.NewMemoryStore(log), log)

		r, err := eng.GetRecipe(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("recipe %q: %w", args[0], err)
		}

		if guidePlain || !hasTTY() {
			return runPlain(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), eng, r)
		}
		return runInteractive(cmd.Context(), eng, r)
	},
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func supervisorOptions() []guide.SupervisorOption {
	return []guide.SupervisorOption{
		guide.WithTickInterval(cfg.Guide.TickInterval),
		guide.WithAlmostDoneThreshold(cfg.Guide.AlmostDone),
		guide.WithPauseReminder(cfg.Guide.PauseReminder),
	}
}

func runInteractive(ctx context.Context, eng *guide.Engine, r *domain.Recipe) error {
	fmt.Print(display.RenderBanner(r.Name))
	if r.Intro != "" {
		fmt.Println("  " + r.Intro)
		fmt.Println()
	}

	session, err := eng.Start(ctx, r.ID)
	if err != nil {
		return err
	}

	ui := display.NewUI(eng, session.ID,
		display.WithSeekStep(cfg.Guide.SeekStep),
		display.WithRefreshInterval(cfg.Guide.TickInterval),
	)
	sup := guide.NewSupervisor(eng, ui, log, supervisorOptions()...)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-ui.Ready():
			sup.Start(runCtx)
		case <-ui.QuitChan():
		}
	}()

	runErr := ui.Run(runCtx)
	sup.Stop()

	if sess, err := eng.Status(ctx, session.ID); err == nil &&
		(sess.Status == domain.SessionActive || sess.Status == domain.SessionPaused) {
		_ = eng.Abandon(context.Background(), session.ID)
	}
	return runErr
}

// runPlain drives a session without the interactive view. Typed
// commands are read from in, one per line. It returns once the brew is
// complete, the user quits or ctx is cancelled.
func runPlain(ctx context.Context, in io.Reader, out io.Writer, eng *guide.Engine, r *domain.Recipe) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	printFn := func(format string, a ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, format+"\n", a...)
	}
	notifier := notify.NewCLINotifier(log, printFn)

	_ = notifier.Notify(ctx, notify.LineStart(r.Name, r.ComputedTotal()))
	if r.Intro != "" {
		_ = notifier.Notify(ctx, r.Intro)
	}

	session, err := eng.Start(ctx, r.ID)
	if err != nil {
		return err
	}

	sup := guide.NewSupervisor(eng, notifier, log, supervisorOptions()...)
	sup.Start(ctx)
	defer sup.Stop()

	lines := readLines(ctx, in)

	parser := command.NewParser(log, cfg.Guide.SeekStep)
	ticker := time.NewTicker(cfg.Guide.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = eng.Abandon(context.Background(), session.ID)
			_ = notifier.Notify(context.Background(), notify.LineAbandoned())
			return nil

		case line, ok := <-lines:
			if !ok {
				// Input ended; keep guiding until the brew is done.
				lines = nil
				continue
			}
			cmd, err := parser.Parse(line)
			if err != nil {
				printFn("%v", err)
				continue
			}
			if cmd.Kind == command.Quit {
				_ = eng.Abandon(ctx, session.ID)
				_ = notifier.Notify(ctx, notify.LineAbandoned())
				return nil
			}
			if err := applyCommand(ctx, eng, notifier, printFn, session.ID, cmd); err != nil {
				printFn("%v", err)
			}

		case <-ticker.C:
			sess, err := eng.Status(ctx, session.ID)
			if err != nil {
				return err
			}
			if sess.Status == domain.SessionCompleted {
				return nil
			}
		}
	}
}

// readLines delivers lines from in until it is exhausted or ctx is
// done, then closes the channel.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// applyCommand carries out one typed command against the session.
func applyCommand(ctx context.Context, eng *guide.Engine, n domain.Notifier, printFn notify.PrintFunc, sessionID string, cmd command.Command) error {
	switch cmd.Kind {
	case command.Pause:
		if err := eng.Pause(ctx, sessionID); err != nil {
			return err
		}
		return n.Notify(ctx, notify.LinePaused())

	case command.Resume:
		if err := eng.Resume(ctx, sessionID); err != nil {
			return err
		}
		return n.Notify(ctx, notify.LineResumed())

	case command.Toggle:
		status, err := eng.Toggle(ctx, sessionID)
		if err != nil {
			return err
		}
		if status == domain.SessionPaused {
			return n.Notify(ctx, notify.LinePaused())
		}
		return n.Notify(ctx, notify.LineResumed())

	case command.Restart:
		if err := eng.Restart(ctx, sessionID); err != nil {
			return err
		}
		return n.Notify(ctx, notify.LineRestarted())

	case command.Nudge:
		return eng.Nudge(ctx, sessionID, cmd.Delta)

	case command.Seek:
		return eng.Seek(ctx, sessionID, cmd.At)

	case command.Status:
		snap, err := eng.Snapshot(ctx, sessionID)
		if err != nil {
			return err
		}
		p := snap.Position
		if p.Complete {
			return n.Notify(ctx, notify.LineComplete(snap.Recipe.Name))
		}
		return n.Notify(ctx, notify.LineStatus(p.Index+1, snap.StepCount(),
			snap.Step.ShortInstruction, p.StepRemaining, p.Remaining()))

	case command.Help:
		printFn("%s", command.HelpText())
		return nil
	}

	printFn("Unknown command %q. Type help for the list.", cmd.Input)
	return nil
}
