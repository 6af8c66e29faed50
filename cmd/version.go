package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/colfit/internal/formatter"
	"github.com/oakwood-commons/colfit/pkg/settings"
)

// versionData is what `colfit version -o json|yaml|toml` prints.
type versionData struct {
	Name                 string `json:"name" yaml:"name" toml:"name"`
	settings.VersionInfo `yaml:",inline"`
	GoVersion            string `json:"goVersion" yaml:"go_version" toml:"go_version"`
}

func versionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)",
		settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

func newVersionCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print colfit version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if output == "" || output == settings.OutputTable {
				_, err := fmt.Fprintln(out, versionString())
				return err
			}
			text, err := formatter.Encode(versionData{
				Name:        settings.CliBinaryName,
				VersionInfo: settings.VersionInformation,
				GoVersion:   runtime.Version(),
			}, output)
			if err != nil {
				return err
			}
			_, err = io.WriteString(out, text)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: json|yaml|toml (default: one line)")
	return cmd
}
