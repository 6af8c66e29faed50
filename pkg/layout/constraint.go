package layout

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Metrics holds the constants the width resolver works with.
type Metrics struct {
	// MinWidth is the built-in minimum when filters are hidden.
	MinWidth float64 `json:"minWidth" yaml:"min_width"`
	// FilterMinWidth is the built-in minimum when an inline filter is shown.
	FilterMinWidth float64 `json:"filterMinWidth" yaml:"filter_min_width"`
	// AvgCharWidth is the estimated width of one header cell.
	AvgCharWidth float64 `json:"avgCharWidth" yaml:"avg_char_width"`
	// HeaderPadding is added around the header text.
	HeaderPadding float64 `json:"headerPadding" yaml:"header_padding"`
	// IconAllowance is reserved for header icons without filters.
	IconAllowance float64 `json:"iconAllowance" yaml:"icon_allowance"`
	// FilterIconAllowance replaces IconAllowance when filters are shown.
	FilterIconAllowance float64 `json:"filterIconAllowance" yaml:"filter_icon_allowance"`
	// ComboFilterAllowance is added for text, number and date filters,
	// which render an operator control next to the input.
	ComboFilterAllowance float64 `json:"comboFilterAllowance" yaml:"combo_filter_allowance"`
	// AutoGrowth caps auto columns at this multiple of their minimum.
	AutoGrowth float64 `json:"autoGrowth" yaml:"auto_growth"`
}

// DefaultMetrics returns the pixel metrics used by the package functions.
func DefaultMetrics() Metrics {
	return Metrics{
		MinWidth:             85,
		FilterMinWidth:       120,
		AvgCharWidth:         8,
		HeaderPadding:        32,
		IconAllowance:        24,
		FilterIconAllowance:  40,
		ComboFilterAllowance: 16,
		AutoGrowth:           2.5,
	}
}

// CellMetrics returns metrics for character-cell surfaces such as a terminal.
func CellMetrics() Metrics {
	return Metrics{
		MinWidth:             6,
		FilterMinWidth:       10,
		AvgCharWidth:         1,
		HeaderPadding:        2,
		IconAllowance:        0,
		FilterIconAllowance:  2,
		ComboFilterAllowance: 2,
		AutoGrowth:           2.5,
	}
}

// BuiltInMinWidth returns the default minimum width of a column.
func BuiltInMinWidth(col Column, filters bool) float64 {
	return DefaultMetrics().builtInMin(filters)
}

// EffectiveMinWidth returns col.MinWidth when set, else the built-in minimum.
func EffectiveMinWidth(col Column, filters bool) float64 {
	return DefaultMetrics().effectiveMin(col, filters)
}

// EstimateOption replaces one of the constants used by EstimateAutoWidth.
type EstimateOption func(*Metrics, bool)

// WithAvgCharWidth sets the per-cell width of header text.
func WithAvgCharWidth(w float64) EstimateOption {
	return func(m *Metrics, _ bool) { m.AvgCharWidth = w }
}

// WithHeaderPadding sets the padding added around header text.
func WithHeaderPadding(p float64) EstimateOption {
	return func(m *Metrics, _ bool) { m.HeaderPadding = p }
}

// WithIconAllowance sets the icon reservation for the active filters mode.
func WithIconAllowance(a float64) EstimateOption {
	return func(m *Metrics, filters bool) {
		if filters {
			m.FilterIconAllowance = a
			m.ComboFilterAllowance = 0
			return
		}
		m.IconAllowance = a
	}
}

// EstimateAutoWidth estimates the width of an unsized column from its
// header text. The estimate never falls below the effective minimum.
func EstimateAutoWidth(col Column, filters bool, opts ...EstimateOption) float64 {
	m := DefaultMetrics()
	for _, opt := range opts {
		opt(&m, filters)
	}
	return m.estimate(col, filters)
}

// AutoMaxWidth caps how far an auto column may grow from leftover space.
func AutoMaxWidth(minWidth float64) float64 {
	return DefaultMetrics().autoMax(minWidth)
}

func (m Metrics) builtInMin(filters bool) float64 {
	if filters {
		return m.FilterMinWidth
	}
	return m.MinWidth
}

func (m Metrics) effectiveMin(col Column, filters bool) float64 {
	if col.MinWidth != nil {
		return *col.MinWidth
	}
	return m.builtInMin(filters)
}

func (m Metrics) iconAllowance(col Column, filters bool) float64 {
	if !filters {
		return m.IconAllowance
	}
	if isComboFilter(col) {
		return m.FilterIconAllowance + m.ComboFilterAllowance
	}
	return m.FilterIconAllowance
}

func (m Metrics) estimate(col Column, filters bool) float64 {
	text := float64(runewidth.StringWidth(col.HeaderName))*m.AvgCharWidth +
		m.HeaderPadding + m.iconAllowance(col, filters)
	return math.Max(m.effectiveMin(col, filters), text)
}

func (m Metrics) autoMax(minWidth float64) float64 {
	return math.Max(minWidth*m.AutoGrowth, minWidth)
}

// filterKind names the filter affordance of a column; Type stands in
// when no explicit filter is configured.
func filterKind(col Column) string {
	if col.Filter != "" {
		return col.Filter
	}
	return col.Type
}

func isComboFilter(col Column) bool {
	switch strings.ToLower(filterKind(col)) {
	case "text", "string", "number", "date", "datetime":
		return true
	}
	return false
}
