// Package term provides minimal ANSI color helpers for console output.
package term

import (
	"os"

	"github.com/mattn/go-isatty"
)

const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Red    = "\033[31m"
	Cyan   = "\033[36m"
)

var enabled = isatty.IsTerminal(os.Stdout.Fd())

// Color wraps text in an ANSI color when stdout is a terminal.
func Color(text, color string) string {
	if !enabled {
		return text
	}
	return color + text + Reset
}

// Enabled reports whether color output is active.
func Enabled() bool { return enabled }
