package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/colfit/internal/config"
	"github.com/oakwood-commons/colfit/internal/limiter"
	"github.com/oakwood-commons/colfit/pkg/layout"
)

// overrideFlag collects repeatable --override field=width values.
type overrideFlag struct {
	values layout.Overrides
}

var _ pflag.Value = (*overrideFlag)(nil)

func (o *overrideFlag) String() string {
	if o == nil || len(o.values) == 0 {
		return ""
	}
	fields := make([]string, 0, len(o.values))
	for f := range o.values {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + "=" + strconv.FormatFloat(o.values[f], 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Set accepts field=width where width is a plain number or "120px".
// A later value for the same field replaces the earlier one.
func (o *overrideFlag) Set(v string) error {
	field, raw, ok := strings.Cut(v, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return fmt.Errorf("override %q: expected field=width", v)
	}
	size, err := layout.ParseSize(raw)
	if err != nil {
		return fmt.Errorf("override %q: %w", v, err)
	}
	if size.Percent {
		return fmt.Errorf("override %q: width must be absolute", v)
	}
	if size.Value < 0 {
		return fmt.Errorf("override %q: width must not be negative", v)
	}
	if o.values == nil {
		o.values = layout.Overrides{}
	}
	o.values[field] = size.Value
	return nil
}

func (o *overrideFlag) Type() string {
	return "field=width"
}

// layoutFlags are the layout inputs shared by the layout and preview
// commands.
type layoutFlags struct {
	filters   bool
	fit       bool
	overrides overrideFlag
	rows      limiter.Config
}

func (l *layoutFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&l.filters, "filters", false, "reserve room for inline column filters (default from config)")
	fs.BoolVar(&l.fit, "fit", false, "fit the table to the container instead of scrolling (default from config)")
	fs.Var(&l.overrides, "override", "user width for a column, repeatable (e.g. --override name=240)")
	fs.IntVar(&l.rows.Limit, "limit", 0, "show at most N sample rows")
	fs.IntVar(&l.rows.Offset, "offset", 0, "skip the first N sample rows")
	fs.IntVar(&l.rows.Tail, "tail", 0, "show only the last N sample rows (excludes --limit)")
}

// sampleRows applies the row window to the document rows.
func (l *layoutFlags) sampleRows(rows []map[string]any) ([]map[string]any, error) {
	if err := l.rows.Validate(); err != nil {
		return nil, err
	}
	return limiter.Apply(l.rows, rows), nil
}

// options starts from the configured modes and applies the flags the
// user set explicitly.
func (l *layoutFlags) options(cmd *cobra.Command, cfg *config.Config) layout.Options {
	opts := cfg.Options()
	if cmd.Flags().Changed("filters") {
		opts.Filters = l.filters
	}
	if cmd.Flags().Changed("fit") {
		opts.FitToContainer = l.fit
	}
	return opts
}

// mergeOverrides layers the flag overrides over the document ones.
func (l *layoutFlags) mergeOverrides(doc layout.Overrides) layout.Overrides {
	out := doc.Clone()
	if out == nil {
		out = layout.Overrides{}
	}
	for f, w := range l.overrides.values {
		out[f] = w
	}
	return out
}
