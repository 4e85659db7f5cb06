package checker

import (
	"strings"
	"testing"

	"github.com/texbuddy/texbuddy/internal/problem"
)

// TestChktexParseOutput tests the delimiter-format record conversion.
func TestChktexParseOutput(t *testing.T) {
	t.Parallel()

	c := NewChktex()

	t.Run("converts records to positioned problems", func(t *testing.T) {
		t.Parallel()

		record := strings.Join([]string{
			"doc.tex", "3", "5", "1", "24", " ", "Delete this space to maintain correct pagereferences.", "Warning", "linking \\ref{fig}", " to",
		}, chktexDelimiter)

		problems, err := c.parseOutput(record + "\n")
		if err != nil {
			t.Fatalf("parseOutput: %v", err)
		}
		if len(problems) != 1 {
			t.Fatalf("got %d problems, want 1", len(problems))
		}

		p := problems[0]
		if p.Position == nil || p.Position.Line != 2 || p.Position.Col != 4 {
			t.Errorf("Position = %+v, want 0-based line 2, col 4", p.Position)
		}
		if p.Type != "24" {
			t.Errorf("Type = %q, want %q", p.Type, "24")
		}
		if p.Severity != problem.SeverityWarning {
			t.Errorf("Severity = %v, want warning", p.Severity)
		}
		if p.Key != "chktex_24" {
			t.Errorf("Key = %q, want %q", p.Key, "chktex_24")
		}
		if p.Context.Before != "linking \\ref{fig}" || p.Context.After != " to" {
			t.Errorf("Context = %+v", p.Context)
		}
	})

	t.Run("error kind maps to error severity", func(t *testing.T) {
		t.Parallel()

		record := strings.Join([]string{
			"doc.tex", "1", "1", "1", "7", "}", "Expected EOL.", "Error", "", "",
		}, chktexDelimiter)

		problems, err := c.parseOutput(record + "\n")
		if err != nil {
			t.Fatalf("parseOutput: %v", err)
		}
		if len(problems) != 1 {
			t.Fatalf("got %d problems, want 1", len(problems))
		}
		if problems[0].Severity != problem.SeverityError {
			t.Errorf("Severity = %v, want error", problems[0].Severity)
		}
	})

	t.Run("empty flagged text becomes a general problem", func(t *testing.T) {
		t.Parallel()

		record := strings.Join([]string{
			"doc.tex", "0", "0", "0", "44", "", "File has incorrect encoding.", "Warning", "", "",
		}, chktexDelimiter)

		problems, err := c.parseOutput(record + "\n")
		if err != nil {
			t.Fatalf("parseOutput: %v", err)
		}
		if len(problems) != 1 {
			t.Fatalf("got %d problems, want 1", len(problems))
		}
		if problems[0].Position != nil {
			t.Errorf("Position = %+v, want general problem", problems[0].Position)
		}
		if problems[0].Text != "File has incorrect encoding." {
			t.Errorf("Text = %q", problems[0].Text)
		}
	})

	t.Run("short records are skipped", func(t *testing.T) {
		t.Parallel()

		problems, err := c.parseOutput("not a record\n\n")
		if err != nil {
			t.Fatalf("parseOutput: %v", err)
		}
		if len(problems) != 0 {
			t.Errorf("got %d problems, want 0", len(problems))
		}
	})
}
