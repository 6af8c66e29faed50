// Package layout computes column widths for tabular views.
//
// Columns are fixed (explicit width, default width or a user override),
// flexible (share the remaining space by weight) or auto (sized from
// their header text). Allocate resolves them against a container width
// and returns one integer width per column together with the total and
// an overflow flag. Everything in this package is pure; a Resolver
// memoizes per-column bounds when the caller wants to reuse them.
package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind classifies how a column takes part in allocation.
type Kind int

const (
	KindFixed Kind = iota
	KindFlex
	KindAuto
)

func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindFlex:
		return "flex"
	case KindAuto:
		return "auto"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "fixed":
		*k = KindFixed
	case "flex":
		*k = KindFlex
	case "auto":
		*k = KindAuto
	default:
		return fmt.Errorf("unknown column kind %q", text)
	}
	return nil
}

// Size is a requested column width: absolute pixels or a percentage of
// the container.
type Size struct {
	Value   float64
	Percent bool
}

// Pixels returns an absolute size.
func Pixels(v float64) *Size {
	return &Size{Value: v}
}

// Percent returns a size relative to the container width.
func Percent(v float64) *Size {
	return &Size{Value: v, Percent: true}
}

// ParseSize accepts "120", "120px" or "25%".
func ParseSize(s string) (Size, error) {
	raw := strings.TrimSpace(s)
	percent := false
	switch {
	case strings.HasSuffix(raw, "%"):
		percent = true
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	case strings.HasSuffix(strings.ToLower(raw), "px"):
		raw = strings.TrimSpace(raw[:len(raw)-2])
	}
	if raw == "" {
		return Size{}, fmt.Errorf("invalid size %q", s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Size{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return Size{Value: v, Percent: percent}, nil
}

// Resolve converts the size to pixels for the given container width.
// A percentage of a non-positive container resolves to 0.
func (s Size) Resolve(containerWidth int) float64 {
	if !s.Percent {
		return s.Value
	}
	if containerWidth <= 0 {
		return 0
	}
	return float64(containerWidth) * s.Value / 100
}

func (s Size) String() string {
	v := strconv.FormatFloat(s.Value, 'f', -1, 64)
	if s.Percent {
		return v + "%"
	}
	return v
}

// MarshalJSON writes pixel sizes as numbers and percentages as strings.
func (s Size) MarshalJSON() ([]byte, error) {
	if s.Percent {
		return json.Marshal(s.String())
	}
	if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
		return json.Marshal(s.String())
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON accepts a number or a string understood by ParseSize.
func (s *Size) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*s = Size{Value: n}
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("size must be a number or a string: %w", err)
	}
	parsed, err := ParseSize(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Column describes one displayed column. It is read-only input to the
// allocator; optional numeric fields are nil when unset.
type Column struct {
	// Field identifies the column and keys every output map.
	Field string `json:"field"`

	// HeaderName is only used to estimate the width of auto columns.
	HeaderName string `json:"headerName,omitempty"`

	// Width makes the column fixed.
	Width *Size `json:"width,omitempty"`

	// Flex makes the column flexible with this weight when Width is unset.
	Flex *float64 `json:"flex,omitempty"`

	// DefaultWidth makes the column fixed when neither Width nor Flex is set.
	DefaultWidth *float64 `json:"defaultWidth,omitempty"`

	// MinWidth replaces the built-in minimum, even when smaller.
	MinWidth *float64 `json:"minWidth,omitempty"`

	// MaxWidth caps growth. It is ignored when below the effective minimum.
	MaxWidth *float64 `json:"maxWidth,omitempty"`

	Filter string `json:"filter,omitempty"`
	Type   string `json:"type,omitempty"`
}

// Header returns the header text, falling back to the field name.
func (c Column) Header() string {
	if c.HeaderName != "" {
		return c.HeaderName
	}
	return c.Field
}

// Overrides maps a field to a width chosen interactively by a user.
type Overrides map[string]float64

// Clone returns a copy of the map.
func (o Overrides) Clone() Overrides {
	out := make(Overrides, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Options toggles the two layout modes.
type Options struct {
	// Filters selects the wider built-in minimum that leaves room for an
	// inline filter control.
	Filters bool `json:"filters" yaml:"filters"`

	// FitToContainer turns auto columns into flex columns of weight 1 and
	// scales the layout down when it would still overflow.
	FitToContainer bool `json:"fitToContainer" yaml:"fit_to_container"`
}

// Placement is the resolved layout of one column.
type Placement struct {
	Field      string `json:"field" yaml:"field" toml:"field"`
	Kind       Kind   `json:"kind" yaml:"kind" toml:"kind"`
	Width      int    `json:"width" yaml:"width" toml:"width"`
	Min        int    `json:"min" yaml:"min" toml:"min"`
	Max        int    `json:"max,omitempty" yaml:"max,omitempty" toml:"max,omitempty"` // 0 = unbounded
	Overridden bool   `json:"overridden,omitempty" yaml:"overridden,omitempty" toml:"overridden,omitempty"`
}

// Result is the output of an allocation.
type Result struct {
	Widths     map[string]int `json:"widths" yaml:"widths" toml:"widths"`
	Columns    []Placement    `json:"columns" yaml:"columns" toml:"columns"`
	TotalWidth int            `json:"totalWidth" yaml:"total_width" toml:"total_width"`
	Overflow   bool           `json:"overflow" yaml:"overflow" toml:"overflow"`

	// MinimumBound reports an overflow that remains even with every
	// non-overridden column at its minimum width.
	MinimumBound bool `json:"minimumBound" yaml:"minimum_bound" toml:"minimum_bound"`
}

// Width returns the allocated width of field and whether it exists.
func (r *Result) Width(field string) (int, bool) {
	if r == nil {
		return 0, false
	}
	w, ok := r.Widths[field]
	return w, ok
}
