package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/colfit/internal/config"
	"github.com/oakwood-commons/colfit/internal/measure"
	"github.com/oakwood-commons/colfit/internal/ui"
	"github.com/oakwood-commons/colfit/pkg/logger"
)

var runPreview = ui.RunPreview

func newPreviewCmd(g *globalFlags) *cobra.Command {
	var (
		flags  layoutFlags
		strict bool
		step   int
	)
	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Show the table in the terminal and re-lay it out on resize",
		Long: `preview renders the document's sample rows with the computed widths and
recomputes the layout whenever the terminal width settles. Resize the
selected column with +/-, toggle fit with f and filters with t, and reset
overrides with r.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lgr := *logger.FromContext(cmd.Context())

			cfg, err := config.Load(g.configFile)
			if err != nil {
				return err
			}
			doc, err := readDocument(cmd, args)
			if err != nil {
				return err
			}
			overrides := flags.mergeOverrides(doc.Overrides)
			if err := checkDocument(doc, overrides, strict, lgr); err != nil {
				return err
			}
			rows, err := flags.sampleRows(doc.Rows)
			if err != nil {
				return err
			}
			if unknown := ui.BindKeys(cfg.Preview.Keys); len(unknown) > 0 {
				lgr.Info("ignoring unknown preview key bindings", "actions", unknown)
			}

			metrics := cfg.Metrics()
			scale := metrics.AvgCharWidth
			sess := newSession(cfg.Preview.SessionConfig, scale, metrics, flags.options(cmd, cfg), lgr)
			provider := measure.NewProvider(
				time.Duration(cfg.Preview.DebounceMs)*time.Millisecond,
				measure.WithLogger(lgr),
			)

			opts, surfaceFile, cleanup := programIO()
			defer cleanup()

			previewCfg := ui.PreviewConfig{
				Columns:   doc.Columns,
				Overrides: overrides,
				Rows:      rows,
				Session:   sess,
				Provider:  provider,
				Scale:     scale,
				Step:      step * int(scale),
				NoColor:   g.noColor,
				Theme:     ui.ThemeFromConfig(cfg.Preview.Theme),
				Log:       lgr,
			}
			interval := time.Duration(cfg.Preview.PollMs) * time.Millisecond
			return runPreview(cmd.Context(), previewCfg, measure.NewTerminalSurface(surfaceFile), interval, opts...)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&strict, "strict", false, "reject documents with duplicate fields or unknown overrides")
	cmd.Flags().IntVar(&step, "step", 1, "cells added or removed by one resize key")
	return cmd
}
