package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/colfit/internal/config"
)

// Theme defines the preview colors.
type Theme struct {
	HeaderFG   color.Color // table header text
	HeaderBG   color.Color // table header background
	SelectedFG color.Color // selected row text
	SelectedBG color.Color // selected row background
	Status     color.Color // status line
	Overflow   color.Color // total when the columns overflow
	Help       color.Color // key help line
}

// DefaultTheme returns the built-in palette.
func DefaultTheme() Theme {
	return Theme{
		HeaderFG:   lipgloss.Color("81"),  // cyan title
		HeaderBG:   lipgloss.Color("236"), // charcoal
		SelectedFG: lipgloss.Color("250"),
		SelectedBG: lipgloss.Color("24"), // deep teal
		Status:     lipgloss.Color("12"),
		Overflow:   lipgloss.Color("208"),
		Help:       lipgloss.Color("240"),
	}
}

// ThemeFromConfig overlays the configured colors on the default theme.
func ThemeFromConfig(c config.ThemeConfig) Theme {
	t := DefaultTheme()
	set := func(dst *color.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&t.HeaderFG, c.HeaderFG)
	set(&t.HeaderBG, c.HeaderBG)
	set(&t.SelectedFG, c.SelectedFG)
	set(&t.SelectedBG, c.SelectedBG)
	set(&t.Status, c.Status)
	set(&t.Overflow, c.Overflow)
	set(&t.Help, c.Help)
	return t
}

// withDefaults fills unset colors from the default theme.
func (t Theme) withDefaults() Theme {
	d := DefaultTheme()
	pick := func(c, fallback color.Color) color.Color {
		if c == nil {
			return fallback
		}
		return c
	}
	return Theme{
		HeaderFG:   pick(t.HeaderFG, d.HeaderFG),
		HeaderBG:   pick(t.HeaderBG, d.HeaderBG),
		SelectedFG: pick(t.SelectedFG, d.SelectedFG),
		SelectedBG: pick(t.SelectedBG, d.SelectedBG),
		Status:     pick(t.Status, d.Status),
		Overflow:   pick(t.Overflow, d.Overflow),
		Help:       pick(t.Help, d.Help),
	}
}

// previewStyles are the lipgloss styles of the preview chrome.
type previewStyles struct {
	status   lipgloss.Style
	overflow lipgloss.Style
	help     lipgloss.Style
}

func (t Theme) styles() previewStyles {
	return previewStyles{
		status:   lipgloss.NewStyle().Bold(true).Foreground(t.Status),
		overflow: lipgloss.NewStyle().Bold(true).Foreground(t.Overflow),
		help:     lipgloss.NewStyle().Foreground(t.Help),
	}
}
