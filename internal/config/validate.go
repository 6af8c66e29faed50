package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError collects every validation failure.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks cfg for out-of-range values.
func (c *Config) Validate() error {
	return validate(c, nil)
}

func validate(cfg *Config, problems []string) error {
	errs := append([]string(nil), problems...)

	switch cfg.Layout.Units {
	case UnitsPixel, UnitsCell:
	default:
		errs = append(errs, fmt.Sprintf("layout.units %q must be %q or %q", cfg.Layout.Units, UnitsPixel, UnitsCell))
	}

	errs = append(errs, validateSession("session", cfg.Session)...)
	errs = append(errs, validateSession("preview", cfg.Preview.SessionConfig)...)

	if cfg.Preview.DebounceMs < 0 {
		errs = append(errs, "preview.debounce_ms must not be negative")
	}
	if cfg.Preview.PollMs <= 0 {
		errs = append(errs, "preview.poll_ms must be positive")
	}

	errs = append(errs, validateTheme(cfg.Preview.Theme)...)

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func validateSession(section string, s SessionConfig) []string {
	var errs []string
	check := func(name string, v int) {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s.%s must not be negative", section, name))
		}
	}
	check("fallback_width", s.FallbackWidth)
	check("scrollbar_width", s.ScrollbarWidth)
	check("scrollbar_buffer", s.ScrollbarBuffer)
	check("selection_width", s.SelectionWidth)
	check("cache_size", s.CacheSize)
	return errs
}

// validateTheme accepts ANSI color numbers 0-255 and #rgb or #rrggbb.
func validateTheme(t ThemeConfig) []string {
	var errs []string
	check := func(name, v string) {
		if v == "" || validColor(v) {
			return
		}
		errs = append(errs, fmt.Sprintf("preview.theme.%s %q is not an ANSI color number or hex color", name, v))
	}
	check("header_fg", t.HeaderFG)
	check("header_bg", t.HeaderBG)
	check("selected_fg", t.SelectedFG)
	check("selected_bg", t.SelectedBG)
	check("status", t.Status)
	check("overflow", t.Overflow)
	check("help", t.Help)
	return errs
}

func validColor(v string) bool {
	if hex, ok := strings.CutPrefix(v, "#"); ok {
		if len(hex) != 3 && len(hex) != 6 {
			return false
		}
		_, err := strconv.ParseUint(hex, 16, 32)
		return err == nil
	}
	n, err := strconv.Atoi(v)
	return err == nil && n >= 0 && n <= 255
}
