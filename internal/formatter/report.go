package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oakwood-commons/colfit/pkg/layout"
)

// ReportOptions configures RenderLayout.
type ReportOptions struct {
	NoColor bool
	// ContainerWidth is shown in the summary line.
	ContainerWidth int
	// Units labels widths in the summary, e.g. "px" or "cells".
	Units string
}

var reportHeaders = []string{"FIELD", "KIND", "WIDTH", "MIN", "MAX", "NOTE"}

// RenderLayout renders one row per column followed by a summary line.
func RenderLayout(res *layout.Result, opts ReportOptions) string {
	if res == nil || len(res.Columns) == 0 {
		return "no columns\n"
	}

	rows := make([][]string, len(res.Columns))
	for i, p := range res.Columns {
		maxText := "-"
		if p.Max > 0 {
			maxText = strconv.Itoa(p.Max)
		}
		rows[i] = []string{
			p.Field,
			p.Kind.String(),
			strconv.Itoa(p.Width),
			strconv.Itoa(p.Min),
			maxText,
			placementNote(p),
		}
	}

	widths := make([]int, len(reportHeaders))
	for i, h := range reportHeaders {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}

	const sep = "  "
	var b strings.Builder
	parts := make([]string, len(reportHeaders))
	for i, h := range reportHeaders {
		parts[i] = style(headerStyle, padRight(h, widths[i]), opts.NoColor)
	}
	b.WriteString(strings.TrimRight(strings.Join(parts, sep), " ") + "\n")

	total := sum(widths) + len(sep)*(len(widths)-1)
	b.WriteString(style(separatorStyle, strings.Repeat("─", total), opts.NoColor) + "\n")

	for _, row := range rows {
		for i, cell := range row {
			switch {
			case i == 0:
				parts[i] = style(keyStyle, padRight(cell, widths[i]), opts.NoColor)
			case i >= 2 && i <= 4:
				parts[i] = style(valueStyle, padLeft(cell, widths[i]), opts.NoColor)
			default:
				parts[i] = style(valueStyle, padRight(cell, widths[i]), opts.NoColor)
			}
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, sep), " ") + "\n")
	}

	b.WriteString(summaryLine(res, opts) + "\n")
	return b.String()
}

func placementNote(p layout.Placement) string {
	var notes []string
	if p.Overridden {
		notes = append(notes, "override")
	}
	if p.Width == p.Min {
		notes = append(notes, "at min")
	} else if p.Max > 0 && p.Width == p.Max {
		notes = append(notes, "at max")
	}
	return strings.Join(notes, ", ")
}

func summaryLine(res *layout.Result, opts ReportOptions) string {
	units := opts.Units
	if units == "" {
		units = "px"
	}
	line := fmt.Sprintf("total %d%s of %d%s", res.TotalWidth, units, opts.ContainerWidth, units)
	switch {
	case res.MinimumBound:
		return line + ", " + style(warningStyle, "overflow (minimum widths exceed container)", opts.NoColor)
	case res.Overflow:
		return line + ", " + style(warningStyle, "overflow", opts.NoColor)
	default:
		return line + ", fits"
	}
}

func sum(v []int) int {
	t := 0
	for _, n := range v {
		t += n
	}
	return t
}
