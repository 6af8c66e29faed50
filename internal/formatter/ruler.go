package formatter

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/colfit/pkg/layout"
)

// RulerOptions configures RenderRuler.
type RulerOptions struct {
	NoColor bool
	// Scale is the number of layout units per terminal cell, e.g. 8 to
	// draw a pixel layout. Values <= 0 mean 1.
	Scale float64
	// Rows are optional sample rows keyed by field.
	Rows []map[string]any
}

// RenderRuler draws the columns at their allocated widths: a header line
// with each header cut to its cell width, a ruler marking the column
// boundaries and any sample rows.
func RenderRuler(columns []layout.Column, res *layout.Result, opts RulerOptions) string {
	if res == nil || len(res.Columns) == 0 {
		return ""
	}
	headers := make(map[string]string, len(columns))
	for _, c := range columns {
		if _, dup := headers[c.Field]; !dup {
			headers[c.Field] = c.Header()
		}
	}

	cells := CellWidths(res, opts.Scale)
	var head, rule strings.Builder
	for i, p := range res.Columns {
		w := cells[i]
		if i > 0 {
			head.WriteString(style(separatorStyle, "│", opts.NoColor))
			rule.WriteString("┼")
		}
		head.WriteString(style(headerStyle, padRight(headers[p.Field], w), opts.NoColor))
		rule.WriteString(strings.Repeat("─", w))
	}

	var b strings.Builder
	b.WriteString(head.String() + "\n")
	b.WriteString(style(separatorStyle, rule.String(), opts.NoColor) + "\n")
	for _, row := range opts.Rows {
		for i, p := range res.Columns {
			if i > 0 {
				b.WriteString(style(separatorStyle, "│", opts.NoColor))
			}
			b.WriteString(style(valueStyle, padRight(Stringify(row[p.Field]), cells[i]), opts.NoColor))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// CellWidths converts allocated widths to terminal cells at scale.
// Every column keeps at least one cell.
func CellWidths(res *layout.Result, scale float64) []int {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	out := make([]int, len(res.Columns))
	for i, p := range res.Columns {
		out[i] = max(int(math.Floor(float64(p.Width)/scale)), 1)
	}
	return out
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}
