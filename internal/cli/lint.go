package cli

import (
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/brewguide/internal/domain"
	"github.com/hammamikhairi/brewguide/internal/lint"
	"github.com/hammamikhairi/brewguide/internal/recipe"
)

var lintShowOK bool

func init() {
	rootCmd.AddCommand(lintCmd)
	lintCmd.Flags().BoolVar(&lintShowOK, "show-ok", false, "also print steps whose narration fits")
}

var lintCmd = &cobra.Command{
	Use:   "lint [path...]",
	Short: "Check recipe narration against step durations",
	Long: "Check every step's narration against the time the step allows, flag phrasing\n" +
		"that refers to a wall clock, and compare declared totals with the step sum.\n" +
		"Paths may be recipe files or directories; without paths the configured\n" +
		"collection (or the built-in recipes) is checked. Exits 1 when any error is found.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var recipes []*domain.Recipe
		if len(args) > 0 {
			for _, p := range args {
				rs, err := recipe.LoadCollection(p)
				if err != nil {
					return err
				}
				recipes = append(recipes, rs...)
			}
		} else {
			src, err := recipeSource()
			if err != nil {
				return err
			}
			recipes = src.All()
		}

		v, err := newValidator()
		if err != nil {
			return err
		}
		linter := lint.New(v, log,
			lint.WithPhraseRules(cfg.Lint.PhraseRules),
			lint.WithTotalTolerance(cfg.Lint.TotalTolerance),
			lint.WithWorkers(cfg.Lint.Workers),
		)

		report, err := linter.LintAll(cmd.Context(), recipes)
		if err != nil {
			return err
		}
		if err := report.Write(cmd.OutOrStdout(), lintShowOK); err != nil {
			return err
		}
		if report.HasErrors() {
			return &ExitError{Code: 1}
		}
		return nil
	},
}
