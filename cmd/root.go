// Package cmd implements the colfit command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/colfit/internal/config"
	"github.com/oakwood-commons/colfit/internal/formatter"
	"github.com/oakwood-commons/colfit/internal/session"
	"github.com/oakwood-commons/colfit/pkg/layout"
	"github.com/oakwood-commons/colfit/pkg/loader"
	"github.com/oakwood-commons/colfit/pkg/logger"
	"github.com/oakwood-commons/colfit/pkg/settings"
)

// errNoInput is returned when there is neither a file argument nor piped
// input.
var errNoInput = errors.New("no input: pass a column document file or pipe one on stdin")

var (
	stdinIsPiped = func() bool { stat, _ := os.Stdin.Stat(); return (stat.Mode() & os.ModeCharDevice) == 0 }
	termGetSize  = term.GetSize
)

// globalFlags are the persistent flags every command shares.
type globalFlags struct {
	configFile string
	debug      bool
	noColor    bool
}

// layoutOpts holds the flags of the root layout command.
type layoutOpts struct {
	layoutFlags
	width       int
	scrollWidth int
	output      string
	ruler       bool
	strict      bool
}

// Execute runs the colfit CLI.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	opts := layoutOpts{output: settings.OutputTable}

	root := &cobra.Command{
		Use:   settings.CliBinaryName + " [file]",
		Short: "Compute column widths for a tabular view",
		Long: `colfit assigns every column of a table an integer width for a container:
fixed columns keep their size, flex columns share the remaining space by
weight and auto columns are sized from their headers. User overrides are
kept across re-layouts.`,
		Example: "\n  colfit columns.yaml --width 1200\n  colfit columns.json --width 900 --fit -o json\n  cat columns.yaml | colfit --override name=240 --ruler\n",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// --debug maps to zap's debug level (-1), which also enables V(1).
			var level int8
			if g.debug {
				level = -1
			}
			lgr := logger.Get(level)
			lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

			run := settings.NewCliParams()
			run.MinLogLevel = level
			run.NoColor = g.noColor
			run.ConfigPath = config.ResolvePath(g.configFile)

			ctx := logger.WithLogger(cmd.Context(), lgr)
			ctx = settings.IntoContext(ctx, run)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !settings.ValidOutput(opts.output) {
				return fmt.Errorf("invalid --output %q (expected table, json, yaml or toml)", opts.output)
			}
			run := settings.FromContextOrDefault(cmd.Context())
			run.Output = opts.output
			run.Width = opts.width
			return runLayout(cmd, args, g, &opts)
		},
	}

	root.PersistentFlags().StringVar(&g.configFile, "config-file", "", "path to a YAML config file (default: $XDG_CONFIG_HOME/colfit/config.yaml)")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable debug logging on stderr")
	root.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "disable color output")

	opts.register(root.Flags())
	root.Flags().IntVar(&opts.width, "width", 0, "outer container width in layout units (default: terminal width)")
	root.Flags().IntVar(&opts.scrollWidth, "scroll-width", 0, "width of the scroll region, which already excludes the scrollbar")
	root.Flags().StringVarP(&opts.output, "output", "o", settings.OutputTable, "output format: table|json|yaml|toml")
	root.Flags().BoolVar(&opts.ruler, "ruler", false, "draw the headers and sample rows at their widths after the report")
	root.Flags().BoolVar(&opts.strict, "strict", false, "reject documents with duplicate fields or unknown overrides")

	root.Version = versionString()
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddCommand(newPreviewCmd(&g))
	root.AddCommand(newVersionCmd())
	root.AddCommand(newConfigCmd(&g))
	return root
}

func runLayout(cmd *cobra.Command, args []string, g globalFlags, opts *layoutOpts) error {
	lgr := *logger.FromContext(cmd.Context())

	cfg, err := config.Load(g.configFile)
	if err != nil {
		return err
	}
	doc, err := readDocument(cmd, args)
	if err != nil {
		return err
	}
	overrides := opts.mergeOverrides(doc.Overrides)
	if err := checkDocument(doc, overrides, opts.strict, lgr); err != nil {
		return err
	}
	rows, err := opts.sampleRows(doc.Rows)
	if err != nil {
		return err
	}

	metrics := cfg.Metrics()
	scale := metrics.AvgCharWidth
	m := session.Measurement{Width: opts.width, ScrollWidth: opts.scrollWidth, Attached: true}
	if opts.width <= 0 && opts.scrollWidth <= 0 {
		m.Width = int(float64(terminalWidth()) * scale)
	}

	sess := newSession(cfg.Session, 1, metrics, opts.options(cmd, cfg), lgr)
	res := sess.Layout(m, doc.Columns, overrides)
	lgr.V(1).Info("layout computed",
		logger.SessionKey, sess.ID(),
		logger.ContainerWidthKey, sess.AvailableWidth(m),
		"total", res.TotalWidth,
		"overflow", res.Overflow)

	out := cmd.OutOrStdout()
	if opts.output != settings.OutputTable {
		text, err := formatter.Encode(res, opts.output)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, text)
		return err
	}

	noColor := g.noColor || !isTerminal(out)
	units := "px"
	if cfg.Layout.Units == config.UnitsCell {
		units = "cells"
	}
	report := formatter.RenderLayout(res, formatter.ReportOptions{
		NoColor:        noColor,
		ContainerWidth: sess.AvailableWidth(m),
		Units:          units,
	})
	if _, err := io.WriteString(out, report); err != nil {
		return err
	}
	if opts.ruler {
		_, err = io.WriteString(out, "\n"+formatter.RenderRuler(doc.Columns, res, formatter.RulerOptions{
			NoColor: noColor,
			Scale:   scale,
			Rows:    rows,
		}))
	}
	return err
}

// readDocument loads the document named by args, or from the command's
// input when it is not an interactive terminal.
func readDocument(cmd *cobra.Command, args []string) (*loader.Document, error) {
	if len(args) == 1 {
		return loader.LoadFile(args[0])
	}
	in := cmd.InOrStdin()
	if in == os.Stdin && !stdinIsPiped() {
		return nil, errNoInput
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	doc, err := loader.LoadDocumentBytes(data)
	if err != nil {
		return nil, fmt.Errorf("stdin: %w", err)
	}
	return doc, nil
}

// checkDocument validates doc with overrides in place of its own, so
// --override values are checked too. Problems are errors in strict mode
// and are logged otherwise.
func checkDocument(doc *loader.Document, overrides layout.Overrides, strict bool, lgr logr.Logger) error {
	merged := *doc
	merged.Overrides = overrides
	err := merged.Validate()
	if err == nil {
		return nil
	}
	if strict {
		return fmt.Errorf("invalid document: %w", err)
	}
	lgr.Info("document has problems; the allocator ignores them", "problems", err.Error())
	return nil
}

// newSession builds a session from a config section whose widths are
// multiplied by scale to get layout units.
func newSession(sc config.SessionConfig, scale float64, metrics layout.Metrics, opts layout.Options, lgr logr.Logger) *session.Session {
	units := func(v int) int { return int(float64(v) * scale) }
	scrollbar := units(sc.ScrollbarWidth)
	return session.New("",
		session.WithLogger(lgr),
		session.WithMetrics(metrics),
		session.WithOptions(opts),
		session.WithFallbackWidth(units(sc.FallbackWidth)),
		session.WithScrollbar(func() int { return scrollbar }, units(sc.ScrollbarBuffer)),
		session.WithSelectionColumn(units(sc.SelectionWidth)),
		session.WithCacheSize(sc.CacheSize),
	)
}

// terminalWidth probes stdout, stderr and stdin, then $COLUMNS. Zero
// means unknown, which lets the session fall back to its default width.
func terminalWidth() int {
	for _, f := range []*os.File{os.Stdout, os.Stderr, os.Stdin} {
		if w, _, err := termGetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w
		}
	}
	return 0
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
