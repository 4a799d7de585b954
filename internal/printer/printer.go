// Package printer formats operator-facing CLI output.
package printer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// NoColor disables colors, e.g. for tests or when NO_COLOR is set.
func NoColor(v bool) {
	color.NoColor = v || os.Getenv("NO_COLOR") != ""
}

// Success prints a green line with a checkmark prefix.
func Success(w io.Writer, format string, a ...any) {
	green.Fprintf(w, "✓ %s\n", strings.TrimRight(fmt.Sprintf(format, a...), "\n"))
}

func Info(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, format+"\n", a...)
}

// Warning prints a yellow line.
func Warning(w io.Writer, format string, a ...any) {
	yellow.Fprintf(w, "! %s\n", strings.TrimRight(fmt.Sprintf(format, a...), "\n"))
}

// Header prints a cyan section title.
func Header(w io.Writer, format string, a ...any) {
	cyan.Fprintf(w, format+"\n", a...)
}

// Error prints title and explanation to w and returns an error carrying the
// title, for cobra to turn into a non-zero exit.
func Error(w io.Writer, title, explanation string) error {
	red.Fprintf(w, "%s\n", title)
	if explanation != "" {
		fmt.Fprintf(w, "%s\n", explanation)
	}
	return fmt.Errorf("%s", title)
}
