// Package formatter renders allocation results for terminals and files.
package formatter

import (
	"encoding/json"
	"fmt"
	"image/color"
	"reflect"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

var (
	defaultHeaderFG   = lipgloss.Color("12")
	defaultHeaderBG   = lipgloss.Color("236")
	defaultKeyColor   = lipgloss.Color("14")
	defaultValueColor = lipgloss.Color("248")
	defaultSeparator  = lipgloss.Color("240")
	defaultWarning    = lipgloss.Color("208")

	headerStyle    lipgloss.Style
	keyStyle       lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
	warningStyle   lipgloss.Style
)

// Colors controls the rendered colors. Nil fields fall back to the
// defaults (ANSI 256 codes).
type Colors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	KeyColor       color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
	WarningColor   color.Color
}

func applyTheme(c Colors) {
	pick := func(c, def color.Color) color.Color {
		if c == nil {
			return def
		}
		return c
	}
	headerStyle = lipgloss.NewStyle().Bold(true).
		Foreground(pick(c.HeaderFG, defaultHeaderFG)).
		Background(pick(c.HeaderBG, defaultHeaderBG))
	keyStyle = lipgloss.NewStyle().Foreground(pick(c.KeyColor, defaultKeyColor))
	valueStyle = lipgloss.NewStyle().Foreground(pick(c.ValueColor, defaultValueColor))
	separatorStyle = lipgloss.NewStyle().Foreground(pick(c.SeparatorColor, defaultSeparator))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(pick(c.WarningColor, defaultWarning))
}

// SetTheme overrides the package styles.
func SetTheme(c Colors) {
	applyTheme(c)
}

//nolint:gochecknoinits // default theme for package consumers
func init() {
	applyTheme(Colors{})
}

func style(s lipgloss.Style, text string, noColor bool) string {
	if noColor {
		return text
	}
	return s.Render(text)
}

// Stringify returns a single-line representation of a cell value.
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.NewReplacer("\r\n", "\\n", "\n", "\\n", "\r", "\\n").Replace(t)
	case bool, int, int64, float64:
		return fmt.Sprint(t)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // only containers are encoded
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return fmt.Sprintf("%v", v)
}

// truncate shortens s to width display cells, marking the cut with an
// ellipsis when there is room for one.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width < 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

// padRight pads or truncates s to exactly width display cells.
func padRight(s string, width int) string {
	s = truncate(s, width)
	return s + strings.Repeat(" ", max(width-lipgloss.Width(s), 0))
}

// padLeft right-aligns s within width display cells.
func padLeft(s string, width int) string {
	s = truncate(s, width)
	return strings.Repeat(" ", max(width-lipgloss.Width(s), 0)) + s
}
