package main

import (
	"github.com/spf13/cobra"

	"github.com/meigma/overlay/internal/commands"
)

// NewExportCommand creates the 'export' command.
func NewExportCommand(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "export <target> <id> <output> | export --all <target> <dir>",
		Short: "Extract a resource from the target after verifying it.",
		Long: `Extracts resource <id> from <target> into <output>. If <output> is an
existing directory the file is named after <id>. With --all every resource
is written into <dir>. Relative paths are resolved against the directory
containing <target>.`,
		Args: args(func(cmd *cobra.Command, a []string) error {
			if all {
				return cobra.ExactArgs(2)(cmd, a)
			}
			return cobra.ExactArgs(3)(cmd, a)
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				return commands.ExportAll(a.editor, cmd.OutOrStdout(), args[0], args[1])
			}
			return commands.Export(a.editor, cmd.OutOrStdout(), args[0], args[1], args[2])
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "export every resource into a directory")

	return cmd
}
