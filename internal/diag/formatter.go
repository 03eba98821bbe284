package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Formatter renders diagnostics in a Rust-style terminal format with source
// snippets and a caret line under the offending span.
type Formatter struct {
	out   io.Writer
	color bool

	headerStyle lipgloss.Style
	gutterStyle lipgloss.Style
	caretStyle  lipgloss.Style
	helpStyle   lipgloss.Style
}

// NewFormatter creates a formatter writing to out. When color is false all
// styles degrade to plain text (NO_COLOR handling is the caller's job).
func NewFormatter(out io.Writer, color bool) *Formatter {
	f := &Formatter{out: out, color: color}
	if color {
		f.headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
		f.gutterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
		f.caretStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		f.helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	}
	return f
}

func (f *Formatter) styled(s lipgloss.Style, text string) string {
	if !f.color {
		return text
	}
	return s.Render(text)
}

// Format writes one diagnostic.
func (f *Formatter) Format(d Diagnostic) {
	sev := string(d.Severity)
	if sev == "" {
		sev = string(SeverityError)
	}
	header := fmt.Sprintf("%s[%s]: %s", sev, d.Code, d.Message)
	fmt.Fprintln(f.out, f.styled(f.headerStyle, header))

	if d.Span.IsValid() {
		fmt.Fprintf(f.out, "  %s %s\n", f.styled(f.gutterStyle, "-->"), d.Span)
		if d.SourceLine != "" {
			f.printSnippet(d)
		}
	}
	if d.Help != "" {
		fmt.Fprintf(f.out, "  %s %s\n", f.styled(f.helpStyle, "help:"), d.Help)
	}
}

func (f *Formatter) printSnippet(d Diagnostic) {
	lineNo := fmt.Sprintf("%d", d.Span.Line)
	pad := strings.Repeat(" ", len(lineNo))

	fmt.Fprintf(f.out, "   %s %s\n", pad, f.styled(f.gutterStyle, "|"))
	fmt.Fprintf(f.out, "   %s %s %s\n", f.styled(f.gutterStyle, lineNo), f.styled(f.gutterStyle, "|"), d.SourceLine)

	width := d.Span.End - d.Span.Start
	if width < 1 {
		width = 1
	}
	if width > len(d.SourceLine) {
		width = len(d.SourceLine)
		if width < 1 {
			width = 1
		}
	}
	caret := strings.Repeat(" ", d.Span.Column-1) + strings.Repeat("^", width)
	fmt.Fprintf(f.out, "   %s %s %s\n", pad, f.styled(f.gutterStyle, "|"), f.styled(f.caretStyle, caret))
}
