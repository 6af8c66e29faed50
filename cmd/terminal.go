package cmd

import (
	"os"
	"runtime"

	tea "charm.land/bubbletea/v2"
)

var openTerminalIOFn = openTerminalIO

// programIO picks the terminal the preview talks to. With piped stdin the
// document came from the pipe, so keyboard input and size come from the
// real terminal device instead. The returned file is the one to measure;
// cleanup closes anything opened here.
func programIO() ([]tea.ProgramOption, *os.File, func()) {
	if !stdinIsPiped() {
		return nil, os.Stdout, func() {}
	}

	ttyIn, ttyOut, err := openTerminalIOFn()
	if err != nil {
		// No tty (e.g. CI): keys will not work but the view still renders.
		return nil, os.Stdout, func() {}
	}
	cleanup := func() {
		_ = ttyIn.Close()
		if ttyOut != nil && ttyOut != ttyIn {
			_ = ttyOut.Close()
		}
	}

	opts := []tea.ProgramOption{tea.WithInput(ttyIn)}
	measured := ttyIn
	if ttyOut != nil {
		opts = append(opts, tea.WithOutput(ttyOut))
		measured = ttyOut
	}
	return opts, measured, cleanup
}

func openTerminalIO() (*os.File, *os.File, error) {
	in, out := terminalDeviceNames(runtime.GOOS)

	input, err := os.OpenFile(in, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}

	if out == "" || out == in {
		return input, input, nil
	}

	output, err := os.OpenFile(out, os.O_RDWR, 0)
	if err != nil {
		return input, nil, err
	}

	return input, output, nil
}

func terminalDeviceNames(goos string) (input string, output string) {
	if goos == "windows" {
		return "CONIN$", "CONOUT$"
	}

	return "/dev/tty", "/dev/tty"
}
