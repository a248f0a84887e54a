package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meigma/overlay"
	"github.com/meigma/overlay/internal/commands"
	"github.com/meigma/overlay/internal/config"
	"github.com/meigma/overlay/internal/logging"
)

// app carries state shared by all subcommands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	editor  *overlay.Editor
	closeFn func() error
}

// NewRootCommand builds the overlay command tree. Log output goes to errOut.
func NewRootCommand(errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), closeFn: func() error { return nil }}
	config.SetDefaults(a.v)

	rootCmd := &cobra.Command{
		Use:           "overlay",
		Short:         "Attach, list, export and remove resources appended to a file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(errOut)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.closeFn()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "path to config file")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-output-dir", "", "directory to write JSON log files to, in addition to stderr")
	flags.Uint64("max-resource-size", 1<<40, "largest resource accepted by add, in bytes")
	flags.Uint64("max-decoder-memory", 256<<20, "memory limit for decompressing one resource, in bytes")

	bindFlag(a.v, config.KeyLogLevel, flags.Lookup("log-level"))
	bindFlag(a.v, config.KeyLogOutputDir, flags.Lookup("log-output-dir"))
	bindFlag(a.v, config.KeyMaxResourceSize, flags.Lookup("max-resource-size"))
	bindFlag(a.v, config.KeyMaxDecoderMemory, flags.Lookup("max-decoder-memory"))

	rootCmd.AddCommand(NewAddCommand(a))
	rootCmd.AddCommand(NewListCommand(a))
	rootCmd.AddCommand(NewExportCommand(a))
	rootCmd.AddCommand(NewRemoveCommand(a))

	return rootCmd
}

// setup reads configuration and builds the logger and editor.
func (a *app) setup(errOut io.Writer) error {
	if err := config.ReadConfig(a.v, a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	logger, closeFn, err := logging.Setup(errOut, cfg.LogLevel, cfg.LogOutputDir)
	if err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", slog.String("path", used))
	}

	a.cfg = cfg
	a.closeFn = closeFn
	a.editor = overlay.New(
		overlay.WithLogger(logger),
		overlay.WithMaxResourceSize(cfg.MaxResourceSize),
		overlay.WithMaxDecoderMemory(cfg.MaxDecoderMemory),
		overlay.WithExportWorkers(cfg.ExportWorkers),
	)
	return nil
}

func main() {
	rootCmd := NewRootCommand(os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		code := commands.ExitCode(err)
		var usage usageError
		if errors.As(err, &usage) {
			code = commands.ExitUsage
		}
		os.Exit(code)
	}
}
