package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glefebvre/moviedesk/internal/models"
	"github.com/glefebvre/moviedesk/internal/viewmodel"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a movie",
	Long: `Add a movie. Every field is required:

  moviedesk add --id 7 --title Heat --director "Michael Mann" \
    --year 1995 --genre Drama --rating 8.3 --duration 170`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		applyFieldFlags(cmd, a.manager)
		return report(cmd, a.manager.SubmitDraft(cmd.Context()))
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update a movie",
	Long: `Update the movie identified by --id. Fields that are not given keep their
current value:

  moviedesk update --id 7 --rating 8.5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed(models.FieldID.Key()) {
			return fmt.Errorf("--%s is required", models.FieldID.Key())
		}
		raw, _ := cmd.Flags().GetString(models.FieldID.Key())
		id, err := parseID(raw)
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
		a.manager.BeginEdit(*a.manager.Lookup())

		applyFieldFlags(cmd, a.manager)
		return report(cmd, a.manager.SubmitDraft(cmd.Context()))
	},
}

func init() {
	for _, c := range []*cobra.Command{addCmd, updateCmd} {
		for _, f := range models.Fields {
			c.Flags().String(f.Key(), "", f.Label())
		}
		rootCmd.AddCommand(c)
	}
}

// applyFieldFlags copies every field flag given on the command line into the draft
func applyFieldFlags(cmd *cobra.Command, manager *viewmodel.Manager) {
	for _, f := range models.Fields {
		if cmd.Flags().Changed(f.Key()) {
			value, _ := cmd.Flags().GetString(f.Key())
			manager.SetField(f, value)
		}
	}
}
