package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/brewguide/internal/domain"
	"github.com/hammamikhairi/brewguide/internal/notify"
)

var listSearch string

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "only list recipes matching a name, method or tag")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available recipes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := recipeSource()
		if err != nil {
			return err
		}

		var summaries []domain.RecipeSummary
		if listSearch != "" {
			summaries, err = src.Search(cmd.Context(), listSearch)
		} else {
			summaries, err = src.List(cmd.Context())
		}
		if err != nil {
			return err
		}

		if len(summaries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recipes found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tMETHOD\tTOTAL")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Method, notify.FormatClock(s.Total))
		}
		return w.Flush()
	},
}
