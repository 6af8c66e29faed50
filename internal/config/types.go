// Package config loads colfit settings from the embedded defaults, an
// optional user file and COLFIT_* environment variables.
package config

import (
	"github.com/oakwood-commons/colfit/pkg/layout"
)

const (
	UnitsPixel = "pixel"
	UnitsCell  = "cell"
)

// Config is the merged configuration.
type Config struct {
	Layout  LayoutConfig  `yaml:"layout" json:"layout"`
	Session SessionConfig `yaml:"session" json:"session"`
	Preview PreviewConfig `yaml:"preview" json:"preview"`
}

type LayoutConfig struct {
	Filters        bool   `yaml:"filters" json:"filters"`
	FitToContainer bool   `yaml:"fit_to_container" json:"fitToContainer"`
	Units          string `yaml:"units" json:"units"`
}

// SessionConfig holds the reservations a layout session subtracts from
// the measured width.
type SessionConfig struct {
	FallbackWidth   int `yaml:"fallback_width" json:"fallbackWidth"`
	ScrollbarWidth  int `yaml:"scrollbar_width" json:"scrollbarWidth"`
	ScrollbarBuffer int `yaml:"scrollbar_buffer" json:"scrollbarBuffer"`
	SelectionWidth  int `yaml:"selection_width" json:"selectionWidth"`
	CacheSize       int `yaml:"cache_size" json:"cacheSize"`
}

// PreviewConfig tunes the interactive preview. Its session knobs are in
// terminal cells. Keys rebinds preview actions by name.
type PreviewConfig struct {
	DebounceMs    int               `yaml:"debounce_ms" json:"debounceMs"`
	PollMs        int               `yaml:"poll_ms" json:"pollMs"`
	Keys          map[string]string `yaml:"keys,omitempty" json:"keys,omitempty"`
	Theme         ThemeConfig       `yaml:"theme" json:"theme"`
	SessionConfig `yaml:",inline" json:"session"`
}

// ThemeConfig holds the preview colors as ANSI numbers or hex values.
// An empty value keeps the built-in color.
type ThemeConfig struct {
	HeaderFG   string `yaml:"header_fg" json:"headerFg"`
	HeaderBG   string `yaml:"header_bg" json:"headerBg"`
	SelectedFG string `yaml:"selected_fg" json:"selectedFg"`
	SelectedBG string `yaml:"selected_bg" json:"selectedBg"`
	Status     string `yaml:"status" json:"status"`
	Overflow   string `yaml:"overflow" json:"overflow"`
	Help       string `yaml:"help" json:"help"`
}

// Options returns the layout modes.
func (c *Config) Options() layout.Options {
	return layout.Options{Filters: c.Layout.Filters, FitToContainer: c.Layout.FitToContainer}
}

// Metrics returns the resolver constants for the configured units.
func (c *Config) Metrics() layout.Metrics {
	if c.Layout.Units == UnitsCell {
		return layout.CellMetrics()
	}
	return layout.DefaultMetrics()
}
