package layout

import (
	"strconv"
	"strings"
	"sync"
)

// Bounds are the derived width constraints of one column.
type Bounds struct {
	BuiltInMin   float64
	EffectiveMin float64
	AutoEstimate float64
	AutoMax      float64
}

// ResolverStats counts cache lookups.
type ResolverStats struct {
	Hits    int
	Misses  int
	Entries int
}

// Resolver computes column bounds for one set of metrics and memoizes
// them. The cache belongs to the resolver: it holds at most capacity
// entries and is cleared when full. A capacity of zero or less disables
// caching. Resolver is safe for concurrent use.
type Resolver struct {
	metrics  Metrics
	capacity int

	mu     sync.Mutex
	cache  map[string]Bounds
	hits   int
	misses int
}

// NewResolver returns a resolver for the given metrics.
func NewResolver(m Metrics, capacity int) *Resolver {
	r := &Resolver{metrics: m, capacity: capacity}
	if capacity > 0 {
		r.cache = make(map[string]Bounds, capacity)
	}
	return r
}

// Metrics returns the metrics the resolver was built with.
func (r *Resolver) Metrics() Metrics {
	return r.metrics
}

// Bounds returns the constraints of col, from the cache when possible.
func (r *Resolver) Bounds(col Column, filters bool) Bounds {
	if r.capacity <= 0 {
		return r.compute(col, filters)
	}
	key := boundsKey(col, filters)

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.cache[key]; ok {
		r.hits++
		return b
	}
	r.misses++
	b := r.compute(col, filters)
	if len(r.cache) >= r.capacity {
		clear(r.cache)
	}
	r.cache[key] = b
	return b
}

func (r *Resolver) compute(col Column, filters bool) Bounds {
	est := r.metrics.estimate(col, filters)
	return Bounds{
		BuiltInMin:   r.metrics.builtInMin(filters),
		EffectiveMin: r.metrics.effectiveMin(col, filters),
		AutoEstimate: est,
		AutoMax:      r.metrics.autoMax(est),
	}
}

func (r *Resolver) BuiltInMinWidth(col Column, filters bool) float64 {
	return r.Bounds(col, filters).BuiltInMin
}

func (r *Resolver) EffectiveMinWidth(col Column, filters bool) float64 {
	return r.Bounds(col, filters).EffectiveMin
}

func (r *Resolver) EstimateAutoWidth(col Column, filters bool) float64 {
	return r.Bounds(col, filters).AutoEstimate
}

func (r *Resolver) AutoMaxWidth(minWidth float64) float64 {
	return r.metrics.autoMax(minWidth)
}

// Len returns the number of cached entries.
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

// Reset drops every cached entry and the counters.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.cache)
	r.hits, r.misses = 0, 0
}

// Stats returns the cache counters.
func (r *Resolver) Stats() ResolverStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ResolverStats{Hits: r.hits, Misses: r.misses, Entries: len(r.cache)}
}

// boundsKey covers every input that changes the bounds of a column:
// field, header, filter affordance, min, max and the filters flag.
func boundsKey(col Column, filters bool) string {
	var b strings.Builder
	b.WriteString(col.Field)
	b.WriteByte(0)
	b.WriteString(col.HeaderName)
	b.WriteByte(0)
	b.WriteString(filterKind(col))
	b.WriteByte(0)
	writeOptional(&b, col.MinWidth)
	b.WriteByte(0)
	writeOptional(&b, col.MaxWidth)
	b.WriteByte(0)
	b.WriteString(strconv.FormatBool(filters))
	return b.String()
}

func writeOptional(b *strings.Builder, v *float64) {
	if v == nil {
		b.WriteByte('-')
		return
	}
	b.WriteString(strconv.FormatFloat(*v, 'g', -1, 64))
}
