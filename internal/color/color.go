// Package color provides ANSI colour helpers for the playbook narration.
// All functions are no-ops when Enabled is false, so callers need not
// guard their output; just call Init once at program start.
package color

import (
	"os"

	"golang.org/x/term"
)

// Enabled is true when ANSI colour output is supported.
var Enabled bool

// Init sets Enabled from Supported(os.Stdout).
func Init() {
	Enabled = Supported(os.Stdout)
}

// Supported reports whether f is a colour-capable terminal. Colour is
// suppressed when:
//   - NO_COLOR env var is set (https://no-color.org)
//   - TERM=dumb
//   - f is not a terminal (piped, redirected, etc.)
func Supported(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func seq(code, s string) string {
	if !Enabled || s == "" {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func Bold(s string) string      { return seq("1", s) }
func Dim(s string) string       { return seq("2", s) }
func Red(s string) string       { return seq("31", s) }
func Green(s string) string     { return seq("32", s) }
func Yellow(s string) string    { return seq("33", s) }
func BoldRed(s string) string   { return seq("1;31", s) }
func BoldGreen(s string) string { return seq("1;32", s) }

// Status colours an ok/FAIL marker.
func Status(ok bool, s string) string {
	if ok {
		return Green(s)
	}
	return BoldRed(s)
}
