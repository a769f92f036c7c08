package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/czha8903/fnplayer/pkg/audit"
	"github.com/czha8903/fnplayer/pkg/config"
	"github.com/czha8903/fnplayer/pkg/logging"
)

// options holds the runtime flags shared by every command.
type options struct {
	configPath    string
	auditPath     string
	logFile       string
	debug         bool
	probeInterval string

	fs       afero.Fs
	logger   *slog.Logger
	closeLog func() error
}

func (o *options) closeLogger() {
	if o.closeLog != nil {
		o.closeLog()
		o.closeLog = nil
	}
}

// newRootCommand builds the fnplayer command tree. Running it without a
// subcommand serves.
func newRootCommand(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:          "fnplayer",
		Short:        "Play NAS videos from the browser in a local desktop player",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath, "path of the JSON configuration file")
	flags.StringVar(&opts.auditPath, "audit-log", audit.DefaultPath, "path of the JSON lines audit log")
	flags.StringVar(&opts.logFile, "log-file", "", "also write diagnostics to this rotating JSON log file")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.StringVar(&opts.probeInterval, "probe-interval", "1m", "how often to check the player executable (0 disables)")

	root.AddCommand(
		newServeCommand(opts),
		newMapCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(),
	)
	return root
}

// setup validates shared flags and builds the logger.
func (o *options) setup(cmd *cobra.Command) error {
	if filepath.Ext(o.configPath) != ".json" {
		return fmt.Errorf("config file %q must have a .json extension", o.configPath)
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
	if o.logger != nil {
		return nil
	}

	logger, closeFn, err := logging.New(logging.Options{
		Debug:   o.debug,
		File:    o.logFile,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	o.logger = logger
	o.closeLog = closeFn
	return nil
}
