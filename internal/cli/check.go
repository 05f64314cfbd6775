package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/brewguide/internal/timeline"
)

var checkSeconds float64

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Float64Var(&checkSeconds, "seconds", 0, "time allotted to the narration (required)")
	_ = checkCmd.MarkFlagRequired("seconds")
}

var checkCmd = &cobra.Command{
	Use:   "check --seconds N <text...>",
	Short: "Check whether a narration fits a step duration",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newValidator()
		if err != nil {
			return err
		}

		text := strings.Join(args, " ")
		vd, err := v.Validate(text, timeline.Seconds(checkSeconds))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", vd.Severity, vd.Message)
		if vd.Severity.IsError() {
			return &ExitError{Code: 1}
		}
		return nil
	},
}
