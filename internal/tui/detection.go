package tui

import (
	"os"

	"golang.org/x/term"

	"github.com/relgate/relgate/internal/ci"
)

// IsTTY reports whether stdout is attached to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // G115: fd is a small value, no overflow risk
}

// IsInteractive reports whether interactive prompts are safe to show:
// stdout must be a terminal and the process must not be running under a
// CI runner (a release job must never block on a form). CI detection is
// shared with the gate's environment probe in internal/ci.
func IsInteractive() bool {
	if !IsTTY() {
		return false
	}
	return !ci.Detect().IsCI
}
