package layout

import (
	"math"
	"slices"
)

// maxPixels bounds every width the allocator produces. It also stands
// in for "no maximum".
const maxPixels = 1 << 30

// slot is the classification of one column. Widths are integers from
// here on; fractional inputs are rounded towards the constraint.
type slot struct {
	field      string
	kind       Kind
	overridden bool
	weight     float64
	resolved   int // fixed columns only
	lo, hi     int
	autoMin    int
	autoCeil   int
}

func (s slot) growable() bool {
	return !s.overridden && (s.kind == KindFlex || s.kind == KindAuto)
}

func (s slot) ceiling() int {
	if s.kind == KindAuto {
		return s.autoCeil
	}
	return s.hi
}

// plan is the immutable record every allocation stage reads.
type plan struct {
	slots        []slot
	container    int
	fixedTotal   int
	autoMinTotal int
	flexMinTotal int
	totalWeight  float64
	floorTotal   int // sum of lo
	hardTotal    int // overrides at their width, everything else at lo
}

func (p plan) minTotal() int {
	return p.fixedTotal + p.autoMinTotal + p.flexMinTotal
}

// Allocator runs allocations against a Resolver.
type Allocator struct {
	resolver *Resolver
}

// NewAllocator returns an allocator using r, or an uncached resolver with
// DefaultMetrics when r is nil.
func NewAllocator(r *Resolver) *Allocator {
	if r == nil {
		r = NewResolver(DefaultMetrics(), 0)
	}
	return &Allocator{resolver: r}
}

// Allocate lays columns out with DefaultMetrics.
func Allocate(columns []Column, containerWidth int, overrides Overrides, opts Options) Result {
	return NewAllocator(nil).Allocate(columns, containerWidth, overrides, opts)
}

// Allocate assigns a width to every column. It never fails: degenerate
// input produces a more constrained layout, not an error.
func (a *Allocator) Allocate(columns []Column, containerWidth int, overrides Overrides, opts Options) Result {
	p := a.classify(columns, containerWidth, overrides, opts)
	if len(p.slots) == 0 {
		return Result{Widths: map[string]int{}, Columns: []Placement{}}
	}

	var widths []int
	if p.minTotal() > containerWidth {
		widths = collapse(p)
		if !opts.FitToContainer {
			return p.result(widths)
		}
	} else {
		provisional := distribute(p, resolveFixed(p))
		widths = floorWidths(provisional)
		widths = clampWidths(p, widths)
		widths = distributeLeftover(p, widths)
	}
	if opts.FitToContainer {
		widths = fitToContainer(p, widths)
	}
	widths = guardMinimums(p, widths)
	return p.result(widths)
}

func (a *Allocator) classify(columns []Column, containerWidth int, overrides Overrides, opts Options) plan {
	p := plan{container: containerWidth, slots: make([]slot, 0, len(columns))}
	seen := make(map[string]struct{}, len(columns))

	for _, col := range columns {
		if _, dup := seen[col.Field]; dup {
			continue
		}
		seen[col.Field] = struct{}{}

		b := a.resolver.Bounds(col, opts.Filters)
		s := slot{field: col.Field, lo: ceilPixels(b.EffectiveMin), hi: maxPixels}
		// NaN fails the comparison, which leaves the column unbounded.
		if col.MaxWidth != nil && *col.MaxWidth >= b.EffectiveMin {
			s.hi = max(floorPixels(*col.MaxWidth), s.lo)
		}

		var requested float64
		override, hasOverride := overrides[col.Field]
		switch {
		case hasOverride:
			s.kind, s.overridden, requested = KindFixed, true, override
		case col.Width != nil:
			s.kind, requested = KindFixed, col.Width.Resolve(containerWidth)
		case validWeight(col.Flex):
			s.kind, s.weight = KindFlex, *col.Flex
		case col.DefaultWidth != nil:
			s.kind, requested = KindFixed, *col.DefaultWidth
		case opts.FitToContainer:
			s.kind, s.weight = KindFlex, 1
		default:
			s.kind = KindAuto
			s.autoMin = clampInt(ceilPixels(b.AutoEstimate), s.lo, s.hi)
			s.autoCeil = max(min(floorPixels(b.AutoMax), s.hi), s.autoMin)
		}

		switch s.kind {
		case KindFixed:
			s.resolved = clampInt(floorPixels(requested), s.lo, s.hi)
			p.fixedTotal += s.resolved
		case KindFlex:
			p.flexMinTotal += s.lo
			p.totalWeight += s.weight
		case KindAuto:
			p.autoMinTotal += s.autoMin
		}
		p.floorTotal += s.lo
		if s.overridden {
			p.hardTotal += s.resolved
		} else {
			p.hardTotal += s.lo
		}
		p.slots = append(p.slots, s)
	}
	return p
}

// resolveFixed places fixed columns at their clamped request.
func resolveFixed(p plan) []float64 {
	out := make([]float64, len(p.slots))
	for i, s := range p.slots {
		if s.kind == KindFixed {
			out[i] = float64(s.resolved)
		}
	}
	return out
}

// collapse is the layout used when the minimums alone do not fit: fixed
// columns keep their resolved width, every other column takes its
// effective minimum.
func collapse(p plan) []int {
	out := make([]int, len(p.slots))
	for i, s := range p.slots {
		switch s.kind {
		case KindFixed:
			out[i] = s.resolved
		case KindFlex, KindAuto:
			out[i] = s.lo
		}
	}
	return out
}

// distribute shares the space left by fixed and auto columns among flex
// columns by weight, after reserving each flex column's minimum.
func distribute(p plan, widths []float64) []float64 {
	out := slices.Clone(widths)
	remaining := p.container - p.fixedTotal - p.autoMinTotal
	extra := 0
	if remaining > 0 {
		extra = max(remaining-p.flexMinTotal, 0)
	}
	for i, s := range p.slots {
		switch s.kind {
		case KindFlex:
			out[i] = float64(s.lo)
			if extra > 0 && p.totalWeight > 0 {
				out[i] += math.Floor(float64(extra) * s.weight / p.totalWeight)
			}
		case KindAuto:
			out[i] = float64(s.autoMin)
		}
	}
	return out
}

func floorWidths(widths []float64) []int {
	out := make([]int, len(widths))
	for i, w := range widths {
		out[i] = floorPixels(w)
	}
	return out
}

func clampWidths(p plan, widths []int) []int {
	out := slices.Clone(widths)
	for i, s := range p.slots {
		out[i] = clampInt(out[i], s.lo, s.hi)
	}
	return out
}

// distributeLeftover hands the surplus out one pixel per column per
// round, in column order, to growable columns below their ceiling. Whole
// rounds are applied at once so the cost does not depend on the surplus.
func distributeLeftover(p plan, widths []int) []int {
	out := slices.Clone(widths)
	surplus := p.container - sum(out)
	if surplus <= 0 {
		return out
	}

	eligible := make([]int, 0, len(p.slots))
	for i, s := range p.slots {
		if s.growable() && out[i] < s.ceiling() {
			eligible = append(eligible, i)
		}
	}

	for surplus > 0 && len(eligible) > 0 {
		n := len(eligible)
		if surplus < n {
			for _, i := range eligible[:surplus] {
				out[i]++
			}
			break
		}
		rounds := surplus / n
		for _, i := range eligible {
			rounds = min(rounds, p.slots[i].ceiling()-out[i])
		}
		for _, i := range eligible {
			out[i] += rounds
		}
		surplus -= rounds * n
		eligible = slices.DeleteFunc(eligible, func(i int) bool {
			return out[i] >= p.slots[i].ceiling()
		})
	}
	return out
}

// fitToContainer scales non-overridden columns down so the total fits,
// without going below any column's minimum.
func fitToContainer(p plan, widths []int) []int {
	out := slices.Clone(widths)
	if sum(out) <= p.container {
		return out
	}
	overrideTotal, scalable := 0, 0
	for i, s := range p.slots {
		if s.overridden {
			overrideTotal += out[i]
		} else {
			scalable += out[i]
		}
	}
	if scalable == 0 {
		return out
	}
	target := max(p.container-overrideTotal, 0)
	for i, s := range p.slots {
		if s.overridden {
			continue
		}
		// Integer division floors the scaled width exactly.
		out[i] = max(out[i]*target/scalable, s.lo)
	}
	return out
}

// guardMinimums falls back to every column at its minimum if rounding
// ever left the total below the sum of minimums.
func guardMinimums(p plan, widths []int) []int {
	if sum(widths) >= p.floorTotal {
		return widths
	}
	out := make([]int, len(p.slots))
	for i, s := range p.slots {
		out[i] = s.lo
	}
	return out
}

func (p plan) result(widths []int) Result {
	r := Result{
		Widths:  make(map[string]int, len(widths)),
		Columns: make([]Placement, len(widths)),
	}
	for i, s := range p.slots {
		r.Widths[s.field] = widths[i]
		r.TotalWidth += widths[i]
		ceil := s.ceiling()
		if ceil >= maxPixels {
			ceil = 0
		}
		r.Columns[i] = Placement{
			Field:      s.field,
			Kind:       s.kind,
			Width:      widths[i],
			Min:        s.lo,
			Max:        ceil,
			Overridden: s.overridden,
		}
	}
	r.Overflow = r.TotalWidth > p.container
	r.MinimumBound = r.Overflow && p.hardTotal > p.container
	return r
}

func validWeight(flex *float64) bool {
	return flex != nil && *flex > 0 && !math.IsInf(*flex, 1)
}

func floorPixels(v float64) int {
	return toPixels(math.Floor(v))
}

func ceilPixels(v float64) int {
	return toPixels(math.Ceil(v))
}

func toPixels(v float64) int {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= maxPixels:
		return maxPixels
	}
	return int(v)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sum(widths []int) int {
	total := 0
	for _, w := range widths {
		total += w
	}
	return total
}
