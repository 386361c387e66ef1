// Package ui renders named, timed, colorized status lines for hook runs.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	passMark = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("✔")
	failMark = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("✘")
	skipMark = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("–")

	nameStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Printer writes status lines to a single writer. It is used from the main
// flow of control only; concurrent tools buffer output and hand it over.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Running announces a streaming-mode tool before its live output.
func (p *Printer) Running(name, description string) {
	desc := ""
	if description != "" {
		desc = " " + dimStyle.Render(description)
	}
	fmt.Fprintf(p.w, "→ %s%s\n", nameStyle.Render(name), desc)
}

// Status prints the per-tool result line.
func (p *Printer) Status(name string, ok bool, d time.Duration) {
	mark := passMark
	if !ok {
		mark = failMark
	}
	fmt.Fprintf(p.w, "%s %s %s\n", mark, nameStyle.Render(name), dimStyle.Render(formatDuration(d)))
}

// Skip prints a skipped-tool line with the reason.
func (p *Printer) Skip(name, reason string) {
	fmt.Fprintf(p.w, "%s %s %s\n", skipMark, nameStyle.Render(name), dimStyle.Render("skipped: "+reason))
}

// Output relays a buffered tool's captured output.
func (p *Printer) Output(out string) {
	if strings.TrimSpace(out) == "" {
		return
	}
	fmt.Fprint(p.w, out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Fprintln(p.w)
	}
}

// Fragment prints the summarizer's extracted error fragment.
func (p *Printer) Fragment(s string) {
	if s == "" {
		return
	}
	fmt.Fprintf(p.w, "  %s\n", detailStyle.Render(s))
}

// Stopping reports that a stop-policy failure halts the remaining groups.
func (p *Printer) Stopping(name string) {
	fmt.Fprintf(p.w, "%s\n", failStyle.Render("stopping: "+name+" failed"))
}

// Summary prints the aggregate pass/fail line with the total duration.
func (p *Printer) Summary(ok bool, total time.Duration) {
	if ok {
		fmt.Fprintf(p.w, "%s %s\n", passStyle.Render("all checks passed"), dimStyle.Render(formatDuration(total)))
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", failStyle.Render("checks failed"), dimStyle.Render(formatDuration(total)))
}

// Skipped prints the whole-run skip line.
func (p *Printer) Skipped(phase, reason string) {
	fmt.Fprintf(p.w, "%s %s\n", skipMark, dimStyle.Render(phase+" skipped: "+reason))
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
