package main

import (
	"github.com/spf13/cobra"

	"github.com/meigma/overlay/internal/commands"
	"github.com/meigma/overlay/internal/config"
)

// NewListCommand creates the 'list' command.
func NewListCommand(a *app) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "list <target>",
		Short: "List the resources attached to the target.",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.List(a.editor, cmd.OutOrStdout(), commands.ListParams{
				Target: args[0],
				ID:     id,
				HasID:  cmd.Flags().Changed("id"),
				Format: a.cfg.OutputFormat,
			})
		},
	}

	cmd.Flags().StringVarP(&id, "id", "i", "", "only show the resource with this ID")
	cmd.Flags().StringP("output", "o", config.FormatTable, "output format (table, json)")
	bindFlag(a.v, config.KeyOutputFormat, cmd.Flags().Lookup("output"))

	return cmd
}
