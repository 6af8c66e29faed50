// Package measure reports the width of a rendering surface as a single
// debounced value.
package measure

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// Provider collapses bursts of size notifications into one width
// emission. A zero or negative delay emits synchronously.
type Provider struct {
	delay time.Duration
	log   logr.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending int
	current int
	emitted bool
	closed  bool
	out     chan int
	done    chan struct{}
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger used for emission traces.
func WithLogger(l logr.Logger) Option {
	return func(p *Provider) { p.log = l }
}

// WithInitialWidth seeds Current without emitting it. A later
// notification of the same width is then not re-emitted either.
func WithInitialWidth(w int) Option {
	return func(p *Provider) {
		p.current = max(w, 0)
		p.emitted = true
	}
}

// NewProvider returns a provider that waits delay after the last
// notification before emitting.
func NewProvider(delay time.Duration, opts ...Option) *Provider {
	p := &Provider{
		delay: delay,
		log:   logr.Discard(),
		out:   make(chan int, 1),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Notify records a raw width measurement. It is ignored after Close.
func (p *Provider) Notify(width int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.pending = max(width, 0)
	if p.delay <= 0 {
		p.emitLocked()
		return
	}
	if p.timer == nil {
		p.timer = time.AfterFunc(p.delay, p.fire)
		return
	}
	p.timer.Reset(p.delay)
}

func (p *Provider) fire() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.emitLocked()
}

// emitLocked publishes pending, replacing a value the consumer has not
// read yet. Callers hold p.mu, so the send after a drain cannot block.
func (p *Provider) emitLocked() {
	w := p.pending
	if p.emitted && w == p.current {
		return
	}
	p.current, p.emitted = w, true
	select {
	case p.out <- w:
	default:
		select {
		case stale := <-p.out:
			p.log.V(1).Info("replacing unread width", "stale", stale, "width", w)
		default:
		}
		p.out <- w
	}
	p.log.V(1).Info("width emitted", "width", w)
}

// Widths delivers debounced widths. It is closed by Close.
func (p *Provider) Widths() <-chan int {
	return p.out
}

// Current returns the last emitted width, or 0 before the first one.
func (p *Provider) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Close stops the pending timer and closes the Widths channel. It is
// safe to call more than once.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
	}
	close(p.out)
	close(p.done)
}

// Observe polls s every interval and feeds changed widths to Notify. It
// returns when ctx is done or the provider is closed. Measurement errors
// skip the tick.
func (p *Provider) Observe(ctx context.Context, s Surface, interval time.Duration) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	last := -1
	poll := func() {
		w, err := s.Width()
		if err != nil {
			p.log.V(1).Info("surface measurement failed", "error", err.Error())
			return
		}
		if w == last {
			return
		}
		last = w
		p.Notify(w)
	}

	poll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return nil
		case <-t.C:
			poll()
		}
	}
}
