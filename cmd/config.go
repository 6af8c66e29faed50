package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/colfit/internal/config"
	"github.com/oakwood-commons/colfit/internal/formatter"
	"github.com/oakwood-commons/colfit/pkg/settings"
)

// newConfigCmd groups the configuration subcommands.
func newConfigCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect colfit configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var output string
	get := &cobra.Command{
		Use:   "get",
		Short: "Show the merged configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(g.configFile)
			if err != nil {
				return err
			}
			if output == settings.OutputTable {
				output = settings.OutputYAML
			}
			text, err := formatter.Encode(cfg, output)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
	get.Flags().StringVarP(&output, "output", "o", settings.OutputYAML, "output format: yaml|json|toml")

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := settings.FromContextOrDefault(cmd.Context()).ConfigPath
			if p == "" {
				p = "(built-in defaults)"
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), p)
			return err
		},
	}

	defaults := &cobra.Command{
		Use:   "defaults",
		Short: "Print the built-in default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(config.DefaultYAML())
			return err
		},
	}

	cmd.AddCommand(get, path, defaults)
	return cmd
}
