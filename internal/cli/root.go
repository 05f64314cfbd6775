// Package cli provides the brewguide command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hammamikhairi/brewguide/internal/config"
	"github.com/hammamikhairi/brewguide/internal/domain"
	"github.com/hammamikhairi/brewguide/internal/logger"
	"github.com/hammamikhairi/brewguide/internal/narration"
	"github.com/hammamikhairi/brewguide/internal/recipe"
)

var (
	cfgFile     string
	verbose     bool
	quiet       bool
	logFile     string
	recipesPath string

	// Populated by setup before any subcommand runs.
	cfg       *config.Config
	log       *logger.Logger
	logCloser io.Closer
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose/debug logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "disable all logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", `file to write logs to (use "stderr" to log to console)`)
	rootCmd.PersistentFlags().StringVar(&recipesPath, "recipes", "", "recipe file or directory (default: built-in recipes)")
}

var rootCmd = &cobra.Command{
	Use:   "brewguide",
	Short: "Timed coffee brewing guide",
	Long: "brewguide walks you through a brew recipe step by step, driven by a single clock,\n" +
		"and checks that every step's narration fits the time the step allows.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup(cmd.Root())
	},
}

// ExitError carries a process exit code out of a command. Message, when
// set, is printed to stderr.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Execute runs the command tree against os.Args and returns the process
// exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	setContext(ctx, rootCmd)

	err := rootCmd.ExecuteContext(ctx)
	teardown()
	if err == nil {
		return 0
	}

	var exit *ExitError
	if errors.As(err, &exit) {
		if exit.Message != "" {
			fmt.Fprintln(stderr, exit.Message)
		}
		return exit.Code
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 2
}

// setContext gives every command in the tree ctx. cobra only fills in a
// subcommand's context when it has none, so a context from an earlier
// run would otherwise stick.
func setContext(ctx context.Context, cmd *cobra.Command) {
	cmd.SetContext(ctx)
	for _, c := range cmd.Commands() {
		setContext(ctx, c)
	}
}

// setup loads the configuration and opens the log output.
func setup(root *cobra.Command) error {
	v := viper.New()
	if err := v.BindPFlag("recipes.path", root.PersistentFlags().Lookup("recipes")); err != nil {
		return err
	}
	if err := v.BindPFlag("log.file", root.PersistentFlags().Lookup("log-file")); err != nil {
		return err
	}

	c, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	level := logger.ParseLevel(cfg.Log.Level)
	if verbose {
		level = logger.LevelVerbose
	}
	if quiet {
		level = logger.LevelOff
	}

	// Logs go to a file by default so the guide view stays clean.
	var logOut io.Writer = os.Stderr
	if cfg.Log.File != "" && cfg.Log.File != "stderr" && level != logger.LevelOff {
		if dir := filepath.Dir(cfg.Log.File); dir != "" && dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.Log.File, err)
		} else {
			logOut = f
			logCloser = f
		}
	}

	// Third-party packages that use the standard logger share the output.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log = logger.New(level, logOut)
	log.Debug("config loaded (file=%q, recipes=%q)", cfgFile, cfg.Recipes.Path)
	return nil
}

func teardown() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

// collection is a recipe source that can also hand out every recipe.
type collection interface {
	domain.RecipeSource
	All() []*domain.Recipe
}

// recipeSource returns the configured recipe collection, or the built-in
// recipes when no path is set.
func recipeSource() (collection, error) {
	if cfg.Recipes.Path == "" {
		return recipe.NewMemorySource(log), nil
	}
	src, err := recipe.NewFileSource(cfg.Recipes.Path, log)
	if err != nil {
		return nil, err
	}
	return src, nil
}

func newValidator() (*narration.Validator, error) {
	return narration.New(cfg.NarrationOptions()...)
}
