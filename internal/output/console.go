// Package output renders terminal output for idshift: classified status
// lines and a spinner for longer operations. Styling is disabled
// automatically when stdout is not a TTY.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleFail    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// writerIsTTY returns true if the given writer exposes an Fd() method
// (e.g. *os.File) and that fd is a terminal. Falls back to false for
// plain io.Writer values such as *bytes.Buffer.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// Console writes classified status lines to a single writer.
type Console struct {
	w      io.Writer
	styled bool
}

// NewConsole returns a console writing to w. Color is applied only when
// w is a terminal.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, styled: writerIsTTY(w)}
}

// Stdout returns a console bound to os.Stdout.
func Stdout() *Console {
	return NewConsole(os.Stdout)
}

func (c *Console) line(style lipgloss.Style, prefix, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if c.styled {
		fmt.Fprintln(c.w, style.Render(prefix+" "+msg))
		return
	}
	fmt.Fprintln(c.w, prefix+" "+msg)
}

// Info prints an informational line.
func (c *Console) Info(format string, args ...any) {
	c.line(styleInfo, "•", format, args...)
}

// Success prints a completed-step line.
func (c *Console) Success(format string, args ...any) {
	c.line(styleSuccess, "✓", format, args...)
}

// Warn prints a non-fatal problem line.
func (c *Console) Warn(format string, args ...any) {
	c.line(styleWarn, "!", format, args...)
}

// Fail prints a failure line.
func (c *Console) Fail(format string, args ...any) {
	c.line(styleFail, "✗", format, args...)
}

// Plain prints an unstyled line, for values the user may copy out.
func (c *Console) Plain(format string, args ...any) {
	fmt.Fprintf(c.w, format+"\n", args...)
}

// Header prints a section title with a rule under it.
func (c *Console) Header(title string) {
	if c.styled {
		fmt.Fprintln(c.w, styleInfo.Bold(true).Render(title))
	} else {
		fmt.Fprintln(c.w, title)
	}
	fmt.Fprintln(c.w, "--------------------------------------------------")
}
