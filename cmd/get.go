package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a single movie",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		if err := report(cmd, a.manager.FetchByID(cmd.Context(), id)); err != nil {
			return err
		}
		if movie := a.manager.Lookup(); movie != nil {
			renderCard(cmd.OutOrStdout(), *movie)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie id '%s': must be a positive number", s)
	}
	return id, nil
}
