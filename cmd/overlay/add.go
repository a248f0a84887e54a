package main

import (
	"github.com/spf13/cobra"

	"github.com/meigma/overlay/internal/commands"
	"github.com/meigma/overlay/internal/config"
)

// NewAddCommand creates the 'add' command.
func NewAddCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <target> <resource> <id> [new-file]",
		Short: "Append a resource file to the target.",
		Long: `Appends the contents of <resource> to <target> under <id>. The host bytes
are never changed. If [new-file] is given the result is written there and
<target> is left untouched. Relative paths are resolved against the
directory containing <target>.`,
		Args: args(cobra.RangeArgs(3, 4)),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := commands.AddParams{
				Target:   args[0],
				Resource: args[1],
				ID:       args[2],
				Level:    a.v.GetInt(config.KeyCompressionLevel),
			}
			if len(args) == 4 {
				p.NewFile = args[3]
			}
			return commands.Add(a.editor, cmd.OutOrStdout(), p)
		},
	}

	cmd.Flags().IntP("compression", "c", 1, "compression level (0 stores verbatim, 1-9 zstd)")
	bindFlag(a.v, config.KeyCompressionLevel, cmd.Flags().Lookup("compression"))

	return cmd
}
