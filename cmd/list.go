package main

import (
	"github.com/spf13/cobra"

	"github.com/glefebvre/moviedesk/internal/filter"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List movies",
	Long: `Fetch every movie from the backend and print them as a table.

The list can be narrowed with --search, which matches titles case-insensitively,
and ordered with --sort (id, year or rating). Year and rating sort newest and
highest first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		sortName, _ := cmd.Flags().GetString("sort")

		a, err := newApp()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("sort") {
			key, err := filter.ParseSortKey(sortName)
			if err != nil {
				return err
			}
			a.manager.SetSort(key)
		}
		a.manager.SetSearch(search)

		if err := report(cmd, a.manager.Start(cmd.Context())); err != nil {
			return err
		}

		renderTable(cmd.OutOrStdout(), a.manager.FilteredSorted(), len(a.manager.Snapshot().Movies))
		return nil
	},
}

func init() {
	listCmd.Flags().String("search", "", "only show movies whose title contains this text")
	listCmd.Flags().String("sort", "id", "sort order: id, year or rating")
	rootCmd.AddCommand(listCmd)
}
