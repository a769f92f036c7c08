package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/czha8903/fnplayer/pkg/config"
)

func newConfigCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change the persisted configuration",
	}
	cmd.AddCommand(
		newConfigShowCommand(opts),
		newConfigSetCommand(opts),
		newConfigValidateCommand(opts),
	)
	return cmd
}

func newConfigShowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load(opts.fs, opts.configPath)
			out, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newConfigSetCommand(opts *options) *cobra.Command {
	var next config.Config

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change configuration fields and save the whole configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := config.Open(opts.fs, opts.configPath, opts.logger)
			cfg := store.Snapshot()

			flags := cmd.Flags()
			if flags.Changed("player-exe") {
				cfg.PlayerExecutable = next.PlayerExecutable
			}
			if flags.Changed("web-prefix") {
				cfg.WebPrefix = next.WebPrefix
			}
			if flags.Changed("unc-root") {
				cfg.LocalRoot = next.LocalRoot
			}
			if flags.Changed("host") {
				cfg.Host = next.Host
			}
			if flags.Changed("port") {
				cfg.Port = next.Port
			}

			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := store.Replace(cfg); err != nil {
				return err
			}
			opts.logger.Info("configuration saved", "path", store.Path())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&next.PlayerExecutable, "player-exe", "", "path of the player executable")
	flags.StringVar(&next.WebPrefix, "web-prefix", "", "web path prefix to strip")
	flags.StringVar(&next.LocalRoot, "unc-root", "", `local or UNC root, e.g. \\SERVER\share`)
	flags.StringVar(&next.Host, "host", "", "address to listen on (applies after restart)")
	flags.IntVar(&next.Port, "port", 0, "port to listen on (applies after restart)")
	return cmd
}

func newConfigValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the configuration file loads and is usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadStrict(opts.fs, opts.configPath)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", opts.configPath)
			return nil
		},
	}
}
