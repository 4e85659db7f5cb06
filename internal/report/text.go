package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/texbuddy/texbuddy/internal/problem"
)

// timingResolution is the rounding applied to displayed durations.
const timingResolution = time.Millisecond

// TextWriter outputs human-readable text reports for terminal display.
//
// Positions are rendered 1-based; the core tracks them 0-based.
type TextWriter struct {
	baseWriter

	// verbose adds per-module timing and suppression counts.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerboseText enables the per-module timing section.
func WithVerboseText(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the report as plain text.
func (w *TextWriter) Write(report *Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeProblems(&sb, report)
	w.writeFailures(&sb, report)
	if w.verbose {
		w.writeTimings(&sb, report)
	}

	return io.WriteString(w.output, sb.String())
}

func (w *TextWriter) writeHeader(sb *strings.Builder, report *Report) {
	fmt.Fprintf(sb, "%s (language %s)\n", report.File, report.Language)

	counts := report.CountBySeverity()
	fmt.Fprintf(sb, "%d problems: %d errors, %d warnings, %d info\n\n",
		report.Total(),
		counts[problem.SeverityError],
		counts[problem.SeverityWarning],
		counts[problem.SeverityInfo])
}

func (w *TextWriter) writeProblems(sb *strings.Builder, report *Report) {
	for _, p := range report.Positioned {
		fmt.Fprintf(sb, "%s:%d:%d [%s] %s: %s",
			report.File, p.Position.Line+1, p.Position.Col+1, p.Severity, p.Checker, p.Text)
		w.writeDetail(sb, p)
	}

	if len(report.General) > 0 {
		fmt.Fprintf(sb, "\nwhole document:\n")
		for _, p := range report.General {
			fmt.Fprintf(sb, "  [%s] %s: %s", p.Severity, p.Checker, p.Text)
			w.writeDetail(sb, p)
		}
	}
}

func (w *TextWriter) writeDetail(sb *strings.Builder, p problem.Problem) {
	if p.Description != "" {
		fmt.Fprintf(sb, " - %s", p.Description)
	}
	if len(p.Suggestions) > 0 {
		fmt.Fprintf(sb, " (suggest: %s)", strings.Join(p.Suggestions, ", "))
	}
	sb.WriteString("\n")
}

func (w *TextWriter) writeFailures(sb *strings.Builder, report *Report) {
	failed := report.Failed()
	if len(failed) == 0 {
		return
	}

	fmt.Fprintf(sb, "\n%d module(s) failed:\n", len(failed))
	for _, run := range failed {
		fmt.Fprintf(sb, "  %s: %s\n", run.Module, run.Error)
	}
}

func (w *TextWriter) writeTimings(sb *strings.Builder, report *Report) {
	if len(report.Runs) == 0 {
		return
	}

	sb.WriteString("\nmodule timings:\n")
	for _, run := range report.Runs {
		fmt.Fprintf(sb, "  %-24s %s\n", run.Module, run.Duration.Round(timingResolution))
	}

	if report.Whitelisted > 0 || report.Filtered > 0 {
		fmt.Fprintf(sb, "\nsuppressed: %d whitelisted, %d filtered by in-file commands\n",
			report.Whitelisted, report.Filtered)
	}
}
