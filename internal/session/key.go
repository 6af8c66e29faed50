package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/oakwood-commons/colfit/pkg/layout"
)

// keyColumn is the canonical form of a column. Numbers are formatted as
// strings so NaN and Inf survive encoding.
type keyColumn struct {
	Field        string `json:"f"`
	Header       string `json:"h,omitempty"`
	Width        string `json:"w,omitempty"`
	Flex         string `json:"x,omitempty"`
	DefaultWidth string `json:"d,omitempty"`
	MinWidth     string `json:"mn,omitempty"`
	MaxWidth     string `json:"mx,omitempty"`
	Filter       string `json:"fl,omitempty"`
	Type         string `json:"t,omitempty"`
}

type keyOverride struct {
	Field string `json:"f"`
	Width string `json:"w"`
}

// hashKey generates a cache key by hashing the components.
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// layoutKey identifies one allocation: available width, options, column
// structure in order and overrides sorted by field.
func layoutKey(width int, opts layout.Options, columns []layout.Column, overrides layout.Overrides) string {
	cols := make([]keyColumn, len(columns))
	for i, c := range columns {
		cols[i] = keyColumn{
			Field:        c.Field,
			Header:       c.HeaderName,
			DefaultWidth: formatOptional(c.DefaultWidth),
			Flex:         formatOptional(c.Flex),
			MinWidth:     formatOptional(c.MinWidth),
			MaxWidth:     formatOptional(c.MaxWidth),
			Filter:       c.Filter,
			Type:         c.Type,
		}
		if c.Width != nil {
			cols[i].Width = c.Width.String()
		}
	}

	fields := make([]string, 0, len(overrides))
	for f := range overrides {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	ovs := make([]keyOverride, len(fields))
	for i, f := range fields {
		ovs[i] = keyOverride{Field: f, Width: formatFloat(overrides[f])}
	}

	return hashKey("layout", width, opts.Filters, opts.FitToContainer, cols, ovs)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
