package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/texbuddy/texbuddy/internal/problem"
)

// MarkdownWriter outputs reports as Markdown for documentation and
// sharing.
//
// Design decision: We use the nao1215/markdown library for fluent,
// type-safe markdown generation instead of string templates. Tables
// and sections stay declarative and escape-free at the call sites.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the report as Markdown.
func (w *MarkdownWriter) Write(report *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeFindings(md, report)
	w.writeModules(md, report)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *Report) {
	md.H1("TeXBuddy Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"File", "`" + report.File + "`"},
			{"Language", report.Language},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Problems", strconv.Itoa(report.Total())},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *Report) {
	counts := report.CountBySeverity()

	md.H2("Summary")
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"error", strconv.Itoa(counts[problem.SeverityError])},
			{"warning", strconv.Itoa(counts[problem.SeverityWarning])},
			{"info", strconv.Itoa(counts[problem.SeverityInfo])},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *Report) {
	if report.Total() == 0 {
		md.H2("Findings")
		md.PlainText("No problems found.")
		md.PlainText("")
		return
	}

	if len(report.Positioned) > 0 {
		md.H2("Findings")
		rows := make([][]string, 0, len(report.Positioned))
		for _, p := range report.Positioned {
			rows = append(rows, []string{
				fmt.Sprintf("%d:%d", p.Position.Line+1, p.Position.Col+1),
				p.Severity.String(),
				p.Checker,
				"`" + p.Text + "`",
				w.detail(p),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Position", "Severity", "Checker", "Text", "Detail"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(report.General) > 0 {
		md.H2("Whole document")
		rows := make([][]string, 0, len(report.General))
		for _, p := range report.General {
			rows = append(rows, []string{
				p.Severity.String(),
				p.Checker,
				"`" + p.Text + "`",
				w.detail(p),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Severity", "Checker", "Text", "Detail"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) detail(p problem.Problem) string {
	detail := p.Description
	if len(p.Suggestions) > 0 {
		if detail != "" {
			detail += " "
		}
		detail += "(suggest: " + strings.Join(p.Suggestions, ", ") + ")"
	}
	return detail
}

func (w *MarkdownWriter) writeModules(md *markdown.Markdown, report *Report) {
	if len(report.Runs) == 0 {
		return
	}

	md.H2("Modules")
	rows := make([][]string, 0, len(report.Runs))
	for _, run := range report.Runs {
		status := "ok"
		if run.Error != "" {
			status = "failed: " + run.Error
		}
		rows = append(rows, []string{
			run.Module,
			run.Duration.Round(timingResolution).String(),
			status,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Module", "Duration", "Status"},
		Rows:   rows,
	})
}
