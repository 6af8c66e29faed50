// Package session turns surface measurements into column layouts and
// keeps the last result stable while its inputs do not change.
package session

import (
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/oakwood-commons/colfit/pkg/layout"
)

const (
	// DefaultFallbackWidth stands in for a container that exists but has
	// not been measured yet.
	DefaultFallbackWidth = 1000
	// DefaultScrollbarWidth is the vertical scrollbar reservation used when
	// no probe is configured.
	DefaultScrollbarWidth = 15
	// DefaultScrollbarBuffer is added to the scrollbar reservation.
	DefaultScrollbarBuffer = 2
	// DefaultCacheSize bounds the session's resolver cache.
	DefaultCacheSize = 256
)

// Measurement is one observation of the rendering surface.
type Measurement struct {
	// Width of the outer container. Zero means not measured yet.
	Width int
	// ScrollWidth of the scrollable region, which already excludes the
	// vertical scrollbar. Zero means not available.
	ScrollWidth int
	// Attached reports that the container exists.
	Attached bool
}

// Stats counts how layouts were produced.
type Stats struct {
	Hits       int
	Recomputes int
	Resolver   layout.ResolverStats
}

// Session owns the layout state of one table.
type Session struct {
	id  string
	log logr.Logger

	fallback  int
	probe     func() int
	buffer    int
	selection int
	metrics   layout.Metrics
	cacheSize int

	allocator *layout.Allocator
	resolver  *layout.Resolver

	mu         sync.Mutex
	opts       layout.Options
	lastKey    string
	last       *layout.Result
	hits       int
	recomputes int
}

// Option configures a Session.
type Option func(*Session)

func WithLogger(l logr.Logger) Option {
	return func(s *Session) { s.log = l }
}

func WithOptions(opts layout.Options) Option {
	return func(s *Session) { s.opts = opts }
}

// WithMetrics selects the resolver constants, e.g. layout.CellMetrics().
func WithMetrics(m layout.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithFallbackWidth sets the width assumed for an attached container
// that reports zero.
func WithFallbackWidth(w int) Option {
	return func(s *Session) { s.fallback = max(w, 0) }
}

// WithScrollbar sets how the vertical scrollbar reservation is measured.
// A nil probe keeps the current one.
func WithScrollbar(probe func() int, buffer int) Option {
	return func(s *Session) {
		if probe != nil {
			s.probe = probe
		}
		s.buffer = max(buffer, 0)
	}
}

// WithSelectionColumn reserves room for a checkbox column.
func WithSelectionColumn(width int) Option {
	return func(s *Session) { s.selection = max(width, 0) }
}

// WithCacheSize bounds the resolver cache; zero disables it.
func WithCacheSize(n int) Option {
	return func(s *Session) { s.cacheSize = n }
}

// New returns a session. An empty id is replaced with a random UUID.
func New(id string, opts ...Option) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	s := &Session{
		id:        id,
		log:       logr.Discard(),
		fallback:  DefaultFallbackWidth,
		probe:     func() int { return DefaultScrollbarWidth },
		buffer:    DefaultScrollbarBuffer,
		metrics:   layout.DefaultMetrics(),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithValues("session", s.id)
	s.resolver = layout.NewResolver(s.metrics, s.cacheSize)
	s.allocator = layout.NewAllocator(s.resolver)
	return s
}

func (s *Session) ID() string {
	return s.id
}

// AvailableWidth converts a measurement into the width handed to the
// allocator. The result is never negative.
func (s *Session) AvailableWidth(m Measurement) int {
	var w int
	if m.ScrollWidth > 0 {
		w = m.ScrollWidth
	} else {
		w = m.Width
		if w <= 0 && m.Attached {
			w = s.fallback
		}
		w -= max(s.probe(), 0) + s.buffer
	}
	return max(w-s.selection, 0)
}

// Layout returns the layout for the measurement. While width, columns,
// overrides and options are unchanged it returns the same pointer.
// Overrides for fields that are not among columns are ignored.
func (s *Session) Layout(m Measurement, columns []layout.Column, overrides layout.Overrides) *layout.Result {
	width := s.AvailableWidth(m)
	known := knownOverrides(columns, overrides)

	s.mu.Lock()
	defer s.mu.Unlock()

	key := layoutKey(width, s.opts, columns, known)
	if s.last != nil && key == s.lastKey {
		s.hits++
		s.log.V(1).Info("layout unchanged", "width", width)
		return s.last
	}

	res := s.allocator.Allocate(columns, width, known, s.opts)
	s.last, s.lastKey = &res, key
	s.recomputes++
	s.log.V(1).Info("layout computed",
		"width", width,
		"columns", len(res.Columns),
		"total", res.TotalWidth,
		"overflow", res.Overflow,
	)
	return s.last
}

func knownOverrides(columns []layout.Column, overrides layout.Overrides) layout.Overrides {
	if len(overrides) == 0 {
		return nil
	}
	fields := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		fields[c.Field] = struct{}{}
	}
	out := make(layout.Overrides, len(overrides))
	for f, w := range overrides {
		if _, ok := fields[f]; ok {
			out[f] = w
		}
	}
	return out
}

// SetOptions changes the layout modes; the next Layout recomputes.
func (s *Session) SetOptions(opts layout.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
}

func (s *Session) Options() layout.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// Last returns the most recent result, or nil.
func (s *Session) Last() *layout.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Invalidate forgets the last result and clears the resolver cache.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last, s.lastKey = nil, ""
	s.resolver.Reset()
}

func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Hits: s.hits, Recomputes: s.recomputes, Resolver: s.resolver.Stats()}
}
