// Package console renders the few messages the binary prints outside the
// structured log: usage text and startup failures.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// Option is one line of the options table.
type Option struct {
	Names       string // e.g. "-p, --port <PORT>"
	Description string
	Default     string
}

func Ok(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✔ "+msg))
}

func Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("✖ "+msg))
}

// Usage prints a titled usage block followed by an aligned options table.
func Usage(w io.Writer, title, usage string, options []Option) {
	width := 0
	for _, o := range options {
		if len(o.Names) > width {
			width = len(o.Names)
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n\n")
	b.WriteString(titleStyle.Render("Usage:") + "\n")
	b.WriteString("  " + usage + "\n\n")
	b.WriteString(titleStyle.Render("Options:") + "\n")
	for _, o := range options {
		pad := strings.Repeat(" ", width-len(o.Names))
		line := "  " + accentStyle.Render(o.Names) + pad + "  " + o.Description
		if o.Default != "" {
			line += " " + mutedStyle.Render("(default "+o.Default+")")
		}
		b.WriteString(line + "\n")
	}
	fmt.Fprint(w, b.String())
}
