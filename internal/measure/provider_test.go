package measure

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, p *Provider) int {
	t.Helper()
	select {
	case w, ok := <-p.Widths():
		require.True(t, ok, "widths channel closed")
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("no width emitted")
		return 0
	}
}

func assertQuiet(t *testing.T, p *Provider, d time.Duration) {
	t.Helper()
	select {
	case w := <-p.Widths():
		t.Fatalf("unexpected emission %d", w)
	case <-time.After(d):
	}
}

func TestProviderImmediateEmission(t *testing.T) {
	p := NewProvider(0)
	defer p.Close()

	assert.Equal(t, 0, p.Current())
	p.Notify(800)
	assert.Equal(t, 800, receive(t, p))
	assert.Equal(t, 800, p.Current())
}

func TestProviderReplacesUnreadWidth(t *testing.T) {
	p := NewProvider(0)
	defer p.Close()

	p.Notify(100)
	p.Notify(200)
	p.Notify(300)
	assert.Equal(t, 300, receive(t, p))
	assertQuiet(t, p, 20*time.Millisecond)
}

func TestProviderSkipsUnchangedWidth(t *testing.T) {
	p := NewProvider(0)
	defer p.Close()

	p.Notify(500)
	assert.Equal(t, 500, receive(t, p))
	p.Notify(500)
	assertQuiet(t, p, 20*time.Millisecond)
}

func TestProviderClampsNegativeWidth(t *testing.T) {
	p := NewProvider(0)
	defer p.Close()

	p.Notify(-40)
	assert.Equal(t, 0, receive(t, p))
}

func TestProviderInitialWidth(t *testing.T) {
	p := NewProvider(0, WithInitialWidth(640))
	defer p.Close()

	assert.Equal(t, 640, p.Current())
	p.Notify(640)
	assertQuiet(t, p, 20*time.Millisecond)
	p.Notify(700)
	assert.Equal(t, 700, receive(t, p))
}

func TestProviderDebounceCollapsesBurst(t *testing.T) {
	p := NewProvider(100 * time.Millisecond)
	defer p.Close()

	for _, w := range []int{900, 910, 920, 930, 940} {
		p.Notify(w)
	}
	assert.Equal(t, 940, receive(t, p))
	assertQuiet(t, p, 250*time.Millisecond)
}

func TestProviderDebounceWaitsForQuietPeriod(t *testing.T) {
	p := NewProvider(150 * time.Millisecond)
	defer p.Close()

	p.Notify(300)
	assertQuiet(t, p, 50*time.Millisecond)
	assert.Equal(t, 300, receive(t, p))
}

func TestProviderCloseStopsEmissions(t *testing.T) {
	p := NewProvider(50 * time.Millisecond)
	p.Notify(400)
	p.Close()
	p.Close()

	_, ok := <-p.Widths()
	assert.False(t, ok, "channel should be closed")

	assert.NotPanics(t, func() { p.Notify(500) })
	assert.Equal(t, 0, p.Current())
}

type fakeSurface struct {
	width atomic.Int64
	fail  atomic.Bool
}

func (s *fakeSurface) Width() (int, error) {
	if s.fail.Load() {
		return 0, errors.New("detached")
	}
	return int(s.width.Load()), nil
}

func TestObserveFeedsProvider(t *testing.T) {
	p := NewProvider(0)
	defer p.Close()

	s := &fakeSurface{}
	s.width.Store(120)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- p.Observe(ctx, s, 5*time.Millisecond) }()

	assert.Equal(t, 120, receive(t, p))

	s.fail.Store(true)
	assertQuiet(t, p, 30*time.Millisecond)

	s.width.Store(96)
	s.fail.Store(false)
	assert.Equal(t, 96, receive(t, p))

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Observe did not return after cancel")
	}
}

func TestObserveReturnsWhenProviderCloses(t *testing.T) {
	p := NewProvider(0)
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Observe(context.Background(), SurfaceFunc(func() (int, error) { return 80, nil }), time.Millisecond)
	}()

	assert.Equal(t, 80, receive(t, p))
	p.Close()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Observe did not return after Close")
	}
}

func TestTerminalSurface(t *testing.T) {
	orig := termGetSize
	defer func() { termGetSize = orig }()

	termGetSize = func(int) (int, int, error) { return 132, 40, nil }
	w, err := NewTerminalSurface(os.Stdout).Width()
	require.NoError(t, err)
	assert.Equal(t, 132, w)

	termGetSize = func(int) (int, int, error) { return 0, 0, errors.New("inappropriate ioctl") }
	_, err = NewTerminalSurface(os.Stdout).Width()
	assert.Error(t, err)
}
