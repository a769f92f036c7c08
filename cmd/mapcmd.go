package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/czha8903/fnplayer/pkg/config"
	"github.com/czha8903/fnplayer/pkg/pathmap"
)

func newMapCommand(opts *options) *cobra.Command {
	var prefix, root string

	cmd := &cobra.Command{
		Use:   "map <web-path>",
		Short: "Show the local path a web path maps to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(opts.fs, opts.configPath)
			if cmd.Flags().Changed("prefix") {
				cfg.WebPrefix = prefix
			}
			if cmd.Flags().Changed("root") {
				cfg.LocalRoot = root
			}

			res := pathmap.Map(args[0], cfg.WebPrefix, cfg.LocalRoot)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mapped: %s\n", res.Path)
			fmt.Fprintf(out, "rule:   %s\n", res.Rule)
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "web prefix to use instead of the configured one")
	cmd.Flags().StringVar(&root, "root", "", "local root to use instead of the configured one")
	return cmd
}
