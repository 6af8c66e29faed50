package layout

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInMinWidth(t *testing.T) {
	assert.Equal(t, 85.0, BuiltInMinWidth(Column{}, false))
	assert.Equal(t, 120.0, BuiltInMinWidth(Column{}, true))
	// A column's own minimum does not change the built-in value.
	assert.Equal(t, 85.0, BuiltInMinWidth(Column{MinWidth: f(10)}, false))
}

func TestEffectiveMinWidth(t *testing.T) {
	tests := []struct {
		name    string
		col     Column
		filters bool
		want    float64
	}{
		{name: "built-in without filters", col: Column{}, want: 85},
		{name: "built-in with filters", col: Column{}, filters: true, want: 120},
		{name: "explicit below built-in", col: Column{MinWidth: f(30)}, filters: true, want: 30},
		{name: "explicit above built-in", col: Column{MinWidth: f(200)}, want: 200},
		{name: "negative honoured", col: Column{MinWidth: f(-5)}, want: -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveMinWidth(tt.col, tt.filters))
		})
	}
}

func TestEstimateAutoWidth(t *testing.T) {
	tests := []struct {
		name    string
		col     Column
		filters bool
		opts    []EstimateOption
		want    float64
	}{
		{name: "empty header falls back to minimum", col: Column{}, want: 85},
		{name: "short header", col: Column{HeaderName: "Name"}, want: 4*8 + 32 + 24},
		{name: "long header", col: Column{HeaderName: "Customer reference"}, want: 18*8 + 32 + 24},
		{name: "filters reserve the filter icon", col: Column{HeaderName: "Customer reference"}, filters: true, want: 18*8 + 32 + 40},
		{name: "combo filter adds operator room", col: Column{HeaderName: "Customer reference", Filter: "text"}, filters: true, want: 18*8 + 32 + 40 + 16},
		{name: "type stands in for filter", col: Column{HeaderName: "Customer reference", Type: "date"}, filters: true, want: 18*8 + 32 + 40 + 16},
		{name: "combo ignored without filters", col: Column{HeaderName: "Customer reference", Filter: "number"}, want: 18*8 + 32 + 24},
		{name: "select filter is not combo", col: Column{HeaderName: "Customer reference", Filter: "singleSelect"}, filters: true, want: 18*8 + 32 + 40},
		{name: "wide runes count double", col: Column{HeaderName: "名前名前名前"}, want: 12*8 + 32 + 24},
		{name: "explicit minimum wins over estimate", col: Column{HeaderName: "Id", MinWidth: f(300)}, want: 300},
		{
			name: "options replace constants",
			col:  Column{HeaderName: "Name"},
			opts: []EstimateOption{WithAvgCharWidth(10), WithHeaderPadding(0), WithIconAllowance(60)},
			want: 100,
		},
		{
			name:    "icon option applies to the filters mode",
			col:     Column{HeaderName: "Customer reference", Filter: "text"},
			filters: true,
			opts:    []EstimateOption{WithIconAllowance(0)},
			want:    18*8 + 32,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateAutoWidth(tt.col, tt.filters, tt.opts...))
		})
	}
}

func TestAutoMaxWidth(t *testing.T) {
	assert.Equal(t, 250.0, AutoMaxWidth(100))
	assert.Equal(t, 0.0, AutoMaxWidth(0))
	assert.Equal(t, -4.0, AutoMaxWidth(-4))
}

func TestCellMetrics(t *testing.T) {
	r := NewResolver(CellMetrics(), 0)
	col := Column{Field: "name", HeaderName: "Name"}
	assert.Equal(t, 6.0, r.BuiltInMinWidth(col, false))
	assert.Equal(t, 10.0, r.BuiltInMinWidth(col, true))
	assert.Equal(t, 6.0, r.EstimateAutoWidth(col, false))
	assert.Equal(t, 15.0, r.AutoMaxWidth(6))
}

func TestResolverCache(t *testing.T) {
	r := NewResolver(DefaultMetrics(), 8)
	col := Column{Field: "a", HeaderName: "Alpha"}

	first := r.Bounds(col, false)
	second := r.Bounds(col, false)
	assert.Equal(t, first, second)
	assert.Equal(t, ResolverStats{Hits: 1, Misses: 1, Entries: 1}, r.Stats())

	r.Bounds(col, true)
	assert.Equal(t, 2, r.Len(), "filters flag is part of the key")

	narrowed := col
	narrowed.MinWidth = f(10)
	assert.Equal(t, 10.0, r.EffectiveMinWidth(narrowed, false))
	assert.Equal(t, 3, r.Len(), "minWidth is part of the key")

	r.Reset()
	assert.Equal(t, ResolverStats{}, r.Stats())
}

func TestResolverCacheIsBounded(t *testing.T) {
	r := NewResolver(DefaultMetrics(), 4)
	for i := 0; i < 10; i++ {
		r.Bounds(Column{Field: fmt.Sprintf("c%d", i)}, false)
		require.LessOrEqual(t, r.Len(), 4)
	}
}

func TestResolverWithoutCache(t *testing.T) {
	r := NewResolver(DefaultMetrics(), 0)
	col := Column{Field: "a", HeaderName: "Alpha"}
	assert.Equal(t, EstimateAutoWidth(col, true), r.EstimateAutoWidth(col, true))
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, ResolverStats{}, r.Stats())
}

func TestResolverConcurrentUse(t *testing.T) {
	r := NewResolver(DefaultMetrics(), 16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				col := Column{Field: fmt.Sprintf("c%d", (g+i)%20), HeaderName: "Header"}
				assert.Equal(t, EstimateAutoWidth(col, false), r.EstimateAutoWidth(col, false))
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, r.Len(), 16)
}

func TestAllocatorWithResolverMatchesPackageFunction(t *testing.T) {
	cols := []Column{fixed("a", 120), flex("b", 2), {Field: "c", HeaderName: "Comment"}}
	r := NewResolver(DefaultMetrics(), 32)
	a := NewAllocator(r)
	for _, width := range []int{0, 300, 800, 1600} {
		assert.Equal(t, Allocate(cols, width, nil, Options{}), a.Allocate(cols, width, nil, Options{}))
	}
	assert.Positive(t, r.Stats().Hits)
}
