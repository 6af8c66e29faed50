package measure

import (
	"os"

	"golang.org/x/term"
)

// Surface is anything with a measurable width.
type Surface interface {
	Width() (int, error)
}

// SurfaceFunc adapts a function to a Surface.
type SurfaceFunc func() (int, error)

func (f SurfaceFunc) Width() (int, error) { return f() }

var termGetSize = term.GetSize

// TerminalSurface measures the terminal behind a file descriptor in cells.
type TerminalSurface struct {
	fd int
}

// NewTerminalSurface measures f, typically os.Stdout.
func NewTerminalSurface(f *os.File) *TerminalSurface {
	return &TerminalSurface{fd: int(f.Fd())}
}

func (t *TerminalSurface) Width() (int, error) {
	w, _, err := termGetSize(t.fd)
	if err != nil {
		return 0, err
	}
	return w, nil
}
