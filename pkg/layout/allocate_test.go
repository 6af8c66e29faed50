package layout

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func fixed(field string, w float64) Column {
	return Column{Field: field, Width: Pixels(w)}
}

func flex(field string, weight float64) Column {
	return Column{Field: field, Flex: f(weight)}
}

func TestAllocateScenarios(t *testing.T) {
	t.Run("two fixed columns fit", func(t *testing.T) {
		res := Allocate([]Column{fixed("a", 100), fixed("b", 200)}, 1000, nil, Options{})
		assert.Equal(t, map[string]int{"a": 100, "b": 200}, res.Widths)
		assert.Equal(t, 300, res.TotalWidth)
		assert.False(t, res.Overflow)
	})

	t.Run("fixed width below built-in minimum", func(t *testing.T) {
		res := Allocate([]Column{fixed("a", 50)}, 1000, nil, Options{})
		assert.Equal(t, 85, res.Widths["a"])
	})

	t.Run("flex column takes the rest", func(t *testing.T) {
		res := Allocate([]Column{fixed("a", 600), flex("b", 1)}, 1000, nil, Options{})
		assert.Equal(t, 600, res.Widths["a"])
		assert.Equal(t, 400, res.Widths["b"])
		assert.LessOrEqual(t, res.TotalWidth, 1000)
		assert.False(t, res.Overflow)
	})

	t.Run("fixed columns overflow", func(t *testing.T) {
		res := Allocate([]Column{fixed("a", 600), fixed("b", 600)}, 1000, nil, Options{})
		assert.Equal(t, map[string]int{"a": 600, "b": 600}, res.Widths)
		assert.Equal(t, 1200, res.TotalWidth)
		assert.True(t, res.Overflow)
		assert.False(t, res.MinimumBound)
	})

	t.Run("auto column grows to its ceiling", func(t *testing.T) {
		col := Column{Field: "name", HeaderName: "Name"}
		est := EstimateAutoWidth(col, false)
		require.Equal(t, 88.0, est) // 4*8 + 32 + 24
		res := Allocate([]Column{col}, 1000, nil, Options{})
		assert.Equal(t, int(math.Floor(AutoMaxWidth(est))), res.Widths["name"])
		assert.Equal(t, 220, res.Widths["name"])
		assert.False(t, res.Overflow)
	})

	t.Run("fit to container with equal flex columns", func(t *testing.T) {
		cols := []Column{flex("a", 1), flex("b", 1), flex("c", 1)}
		res := Allocate(cols, 500, nil, Options{FitToContainer: true})
		assert.Equal(t, 500, res.TotalWidth)
		assert.Equal(t, []int{167, 167, 166}, widthsOf(res))
		assert.False(t, res.Overflow)
	})

	t.Run("fit to container when minimums exceed the container", func(t *testing.T) {
		cols := []Column{flex("a", 1), flex("b", 1), flex("c", 1)}
		res := Allocate(cols, 200, nil, Options{FitToContainer: true})
		for _, w := range res.Widths {
			assert.Equal(t, 85, w)
		}
		assert.True(t, res.Overflow)
		assert.True(t, res.MinimumBound)
	})
}

func TestAllocateEdgeCases(t *testing.T) {
	t.Run("empty column list", func(t *testing.T) {
		for _, cw := range []int{-50, -10, -1, 0, 500} {
			res := Allocate(nil, cw, nil, Options{FitToContainer: cw%2 == 0})
			assert.Empty(t, res.Widths, "container=%d", cw)
			assert.Equal(t, 0, res.TotalWidth, "container=%d", cw)
			assert.False(t, res.Overflow, "container=%d", cw)
			assert.False(t, res.MinimumBound, "container=%d", cw)
		}
	})

	t.Run("zero container collapses to minimums", func(t *testing.T) {
		cols := []Column{flex("a", 1), flex("b", 3), {Field: "c", MinWidth: f(40)}}
		res := Allocate(cols, 0, nil, Options{})
		assert.Equal(t, 85, res.Widths["a"])
		assert.Equal(t, 85, res.Widths["b"])
		assert.Equal(t, 40, res.Widths["c"])
		assert.Equal(t, KindAuto, res.Columns[2].Kind)
		assert.True(t, res.Overflow)
	})

	t.Run("auto column collapses below its header estimate", func(t *testing.T) {
		col := Column{Field: "d", HeaderName: "Description of the order"}
		require.Greater(t, EstimateAutoWidth(col, false), 85.0)
		res := Allocate([]Column{col, fixed("a", 100)}, 0, nil, Options{})
		assert.Equal(t, 85, res.Widths["d"])
		assert.Equal(t, 100, res.Widths["a"])
		assert.True(t, res.Overflow)
	})

	t.Run("negative container", func(t *testing.T) {
		res := Allocate([]Column{fixed("a", 100)}, -5, nil, Options{})
		assert.Equal(t, 100, res.Widths["a"])
		assert.True(t, res.Overflow)
	})

	t.Run("explicit minimum below built-in wins", func(t *testing.T) {
		res := Allocate([]Column{{Field: "a", Width: Pixels(20), MinWidth: f(10)}}, 1000, nil, Options{})
		assert.Equal(t, 20, res.Widths["a"])
	})

	t.Run("inconsistent max is ignored", func(t *testing.T) {
		col := Column{Field: "a", Width: Pixels(300), MinWidth: f(100), MaxWidth: f(50)}
		res := Allocate([]Column{col}, 1000, nil, Options{})
		assert.Equal(t, 300, res.Widths["a"])
	})

	t.Run("consistent max caps fixed width", func(t *testing.T) {
		col := Column{Field: "a", Width: Pixels(300), MaxWidth: f(150)}
		res := Allocate([]Column{col}, 1000, nil, Options{})
		assert.Equal(t, 150, res.Widths["a"])
	})

	t.Run("flex max width hands the surplus to other flex columns", func(t *testing.T) {
		cols := []Column{
			{Field: "a", Flex: f(1), MaxWidth: f(100)},
			flex("b", 1),
		}
		res := Allocate(cols, 1000, nil, Options{})
		assert.Equal(t, 100, res.Widths["a"])
		assert.Equal(t, 900, res.Widths["b"])
	})

	t.Run("flex weights are proportional", func(t *testing.T) {
		cols := []Column{flex("a", 1), flex("b", 3)}
		res := Allocate(cols, 570, nil, Options{})
		// 400 extra after two 85px minimums: 100 and 300.
		assert.Equal(t, 185, res.Widths["a"])
		assert.Equal(t, 385, res.Widths["b"])
	})

	t.Run("percentage width", func(t *testing.T) {
		cols := []Column{{Field: "a", Width: Percent(25)}, flex("b", 1)}
		res := Allocate(cols, 800, nil, Options{})
		assert.Equal(t, 200, res.Widths["a"])
		assert.Equal(t, 600, res.Widths["b"])
	})

	t.Run("default width acts as fixed", func(t *testing.T) {
		res := Allocate([]Column{{Field: "a", DefaultWidth: f(140)}, flex("b", 1)}, 1000, nil, Options{})
		assert.Equal(t, 140, res.Widths["a"])
		assert.Equal(t, KindFixed, res.Columns[0].Kind)
	})

	t.Run("width wins over flex", func(t *testing.T) {
		res := Allocate([]Column{{Field: "a", Width: Pixels(120), Flex: f(2)}}, 1000, nil, Options{})
		assert.Equal(t, 120, res.Widths["a"])
		assert.Equal(t, KindFixed, res.Columns[0].Kind)
	})

	t.Run("non-positive flex falls back to auto", func(t *testing.T) {
		res := Allocate([]Column{{Field: "a", Flex: f(0)}}, 1000, nil, Options{})
		assert.Equal(t, KindAuto, res.Columns[0].Kind)
	})

	t.Run("filters raise the built-in minimum", func(t *testing.T) {
		res := Allocate([]Column{fixed("a", 100)}, 1000, nil, Options{Filters: true})
		assert.Equal(t, 120, res.Widths["a"])
	})

	t.Run("duplicate fields keep the first column", func(t *testing.T) {
		res := Allocate([]Column{fixed("a", 100), fixed("a", 300)}, 1000, nil, Options{})
		assert.Len(t, res.Columns, 1)
		assert.Equal(t, 100, res.Widths["a"])
		assert.Equal(t, 100, res.TotalWidth)
	})

	t.Run("NaN and infinite inputs", func(t *testing.T) {
		cols := []Column{
			{Field: "a", Width: Pixels(math.NaN())},
			{Field: "b", Flex: f(math.Inf(1)), MaxWidth: f(math.Inf(1))},
			{Field: "c", DefaultWidth: f(math.Inf(1)), MaxWidth: f(math.NaN())},
		}
		res := Allocate(cols, 1000, nil, Options{})
		assert.Equal(t, 85, res.Widths["a"])
		for _, w := range res.Widths {
			assert.GreaterOrEqual(t, w, 0)
		}
		assert.Equal(t, res.TotalWidth, sumMap(res.Widths))
	})
}

func TestAllocateOverrides(t *testing.T) {
	cols := []Column{flex("a", 1), flex("b", 1), {Field: "c", HeaderName: "Comment"}}

	t.Run("override fixes the column and is never grown", func(t *testing.T) {
		res := Allocate(cols, 1000, Overrides{"a": 150}, Options{})
		assert.Equal(t, 150, res.Widths["a"])
		assert.True(t, res.Columns[0].Overridden)
		assert.Equal(t, KindFixed, res.Columns[0].Kind)
	})

	t.Run("override is clamped to the minimum", func(t *testing.T) {
		res := Allocate(cols, 1000, Overrides{"a": 10}, Options{})
		assert.Equal(t, 85, res.Widths["a"])
	})

	t.Run("override survives fit to container", func(t *testing.T) {
		res := Allocate(cols, 400, Overrides{"a": 300}, Options{FitToContainer: true})
		assert.Equal(t, 300, res.Widths["a"])
		assert.True(t, res.Overflow)
		assert.True(t, res.MinimumBound)
	})

	t.Run("fit shrinks fixed columns but not overrides", func(t *testing.T) {
		cols := []Column{fixed("a", 600), fixed("b", 600), fixed("c", 200)}
		res := Allocate(cols, 1000, Overrides{"c": 200}, Options{FitToContainer: true})
		assert.Equal(t, 200, res.Widths["c"])
		assert.Equal(t, 400, res.Widths["a"])
		assert.Equal(t, 400, res.Widths["b"])
		assert.False(t, res.Overflow)
	})

	t.Run("unknown override fields are ignored", func(t *testing.T) {
		res := Allocate(cols, 1000, Overrides{"zzz": 300}, Options{})
		assert.Len(t, res.Widths, 3)
		assert.NotContains(t, res.Widths, "zzz")
	})
}

func TestLeftoverIsRoundingRemainderForFlexColumns(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 200; i++ {
		n := 1 + r.IntN(12)
		cols := make([]Column, n)
		for j := range cols {
			cols[j] = flex(fmt.Sprintf("c%d", j), 0.25+r.Float64()*4)
		}
		container := 85*n + r.IntN(5000)
		p := NewAllocator(nil).classify(cols, container, nil, Options{})
		provisional := floorWidths(distribute(p, resolveFixed(p)))
		surplus := container - sum(provisional)
		assert.GreaterOrEqual(t, surplus, 0)
		assert.Less(t, surplus, n, "surplus %d with %d flex columns", surplus, n)
	}
}

func TestDistributeLeftoverRoundRobin(t *testing.T) {
	p := plan{
		container: 20,
		slots: []slot{
			{kind: KindAuto, autoCeil: 4},
			{kind: KindFixed, hi: maxPixels},
			{kind: KindFlex, hi: maxPixels},
			{kind: KindAuto, autoCeil: 6},
		},
	}
	got := distributeLeftover(p, []int{0, 5, 0, 0})
	// 15 pixels: four full rounds fill a, then c and d alternate.
	assert.Equal(t, []int{4, 5, 6, 5}, got)
	assert.Equal(t, 20, sum(got))
}

func TestDistributeLeftoverMatchesPixelLoop(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 300; i++ {
		n := 1 + r.IntN(8)
		p := plan{slots: make([]slot, n)}
		widths := make([]int, n)
		for j := range p.slots {
			widths[j] = r.IntN(50)
			switch r.IntN(3) {
			case 0:
				p.slots[j] = slot{kind: KindFixed, hi: maxPixels}
			case 1:
				p.slots[j] = slot{kind: KindFlex, hi: widths[j] + r.IntN(40)}
			default:
				p.slots[j] = slot{kind: KindAuto, autoCeil: widths[j] + r.IntN(40), overridden: r.IntN(5) == 0}
			}
		}
		p.container = sum(widths) + r.IntN(200)
		assert.Equal(t, pixelLoop(p, widths), distributeLeftover(p, widths))
	}
}

// pixelLoop is the literal one-pixel round-robin.
func pixelLoop(p plan, widths []int) []int {
	out := append([]int(nil), widths...)
	surplus := p.container - sum(out)
	for surplus > 0 {
		progressed := false
		for i, s := range p.slots {
			if surplus == 0 {
				break
			}
			if s.growable() && out[i] < s.ceiling() {
				out[i]++
				surplus--
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	return out
}

func TestAllocateProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 1337))
	for i := 0; i < 2000; i++ {
		cols, overrides := randomColumns(r)
		opts := Options{Filters: r.IntN(2) == 0, FitToContainer: r.IntN(2) == 0}
		container := r.IntN(3000) - 50

		res := Allocate(cols, container, overrides, opts)
		name := fmt.Sprintf("case %d container=%d opts=%+v", i, container, opts)

		require.Len(t, res.Widths, len(cols), name)
		require.Equal(t, sumMap(res.Widths), res.TotalWidth, name)
		if len(cols) == 0 {
			// An empty table never overflows, even in a negative container.
			require.False(t, res.Overflow, name)
		} else {
			require.Equal(t, res.TotalWidth > container, res.Overflow, name)
		}

		for _, col := range cols {
			w := res.Widths[col.Field]
			lo := EffectiveMinWidth(col, opts.Filters)
			require.GreaterOrEqual(t, w, 0, name)
			require.GreaterOrEqual(t, float64(w), lo, "%s field=%s", name, col.Field)

			consistentMax := col.MaxWidth != nil && *col.MaxWidth >= lo
			if consistentMax {
				require.LessOrEqual(t, float64(w), *col.MaxWidth, "%s field=%s", name, col.Field)
			}
			if ov, ok := overrides[col.Field]; ok {
				want := math.Max(ov, lo)
				if consistentMax {
					want = math.Min(want, *col.MaxWidth)
				}
				require.Equal(t, int(want), w, "%s override field=%s", name, col.Field)
			}
		}

		again := Allocate(cloneColumns(cols), container, overrides.Clone(), opts)
		require.Equal(t, res.Widths, again.Widths, name)
	}
}

func randomColumns(r *rand.Rand) ([]Column, Overrides) {
	n := r.IntN(9)
	cols := make([]Column, n)
	overrides := Overrides{}
	headers := []string{"", "Id", "Name", "Description", "Created at", "名前", "Status"}
	for i := range cols {
		c := Column{Field: fmt.Sprintf("f%d", i), HeaderName: headers[r.IntN(len(headers))]}
		switch r.IntN(5) {
		case 0:
			c.Width = Pixels(float64(r.IntN(700)))
		case 1:
			c.Width = Percent(float64(r.IntN(60)))
		case 2:
			c.Flex = f(float64(1 + r.IntN(4)))
		case 3:
			c.DefaultWidth = f(float64(r.IntN(400)))
		}
		if r.IntN(3) == 0 {
			c.MinWidth = f(float64(r.IntN(200)))
		}
		if r.IntN(3) == 0 {
			c.MaxWidth = f(float64(r.IntN(500)))
		}
		if r.IntN(4) == 0 {
			c.Filter = []string{"text", "number", "singleSelect"}[r.IntN(3)]
		}
		if r.IntN(4) == 0 {
			overrides[c.Field] = float64(r.IntN(600))
		}
		cols[i] = c
	}
	return cols, overrides
}

func cloneColumns(cols []Column) []Column {
	out := make([]Column, len(cols))
	for i, c := range cols {
		cp := c
		if c.Width != nil {
			w := *c.Width
			cp.Width = &w
		}
		for _, p := range []**float64{&cp.Flex, &cp.DefaultWidth, &cp.MinWidth, &cp.MaxWidth} {
			if *p != nil {
				*p = f(**p)
			}
		}
		out[i] = cp
	}
	return out
}

func widthsOf(res Result) []int {
	out := make([]int, len(res.Columns))
	for i, c := range res.Columns {
		out[i] = c.Width
	}
	return out
}

func sumMap(m map[string]int) int {
	total := 0
	for _, w := range m {
		total += w
	}
	return total
}
