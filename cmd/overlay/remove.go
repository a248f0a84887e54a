package main

import (
	"github.com/spf13/cobra"

	"github.com/meigma/overlay/internal/commands"
)

// NewRemoveCommand creates the 'remove' command.
func NewRemoveCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <target> <id> [new-file]",
		Short: "Remove a resource and compact the remaining ones.",
		Long: `Removes resource <id> from <target>. Remaining resources are moved down
so no space is left behind. If [new-file] is given the result is written
there and <target> is left untouched.`,
		Args: args(cobra.RangeArgs(2, 3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var newFile string
			if len(args) == 3 {
				newFile = args[2]
			}
			return commands.Remove(a.editor, cmd.OutOrStdout(), args[0], args[1], newFile)
		},
	}
	return cmd
}
