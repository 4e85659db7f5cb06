package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/texbuddy/texbuddy/internal/config"
	"github.com/texbuddy/texbuddy/internal/problem"
	"github.com/texbuddy/texbuddy/internal/texdoc"
)

// chktexDelimiter separates the fields of the custom chktex output
// format. It must never occur inside a field.
const chktexDelimiter = ":::"

// chktexFormat asks chktex for file, line, column, length, warning
// number, flagged text, message, kind, and the context before/after
// the flagged span.
var chktexFormat = strings.Join(
	[]string{"%f", "%l", "%c", "%d", "%n", "%s", "%m", "%k", "%r", "%t"},
	chktexDelimiter,
) + "\n"

// Chktex wraps the ChkTeX LaTeX semantics checker.
type Chktex struct{}

// NewChktex creates the chktex checker.
func NewChktex() *Chktex {
	return &Chktex{}
}

// Name returns "chktex".
func (c *Chktex) Name() string {
	return "chktex"
}

// Check writes the markup to a temporary file, runs chktex over it
// with a machine-readable format string, and parses the findings.
func (c *Chktex) Check(ctx context.Context, cfg *config.Resolver, doc *texdoc.Document) ([]problem.Problem, error) {
	path, err := exec.LookPath("chktex")
	if err != nil {
		return nil, &ExecutableNotFoundError{
			Name:     "chktex",
			Guidance: "chktex ships with most TeX distributions",
		}
	}

	tmp, err := os.CreateTemp("", "texbuddy-*.tex")
	if err != nil {
		return nil, fmt.Errorf("chktex: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(doc.Markup); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("chktex: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("chktex: close temp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, "-f", chktexFormat, "-q", tmp.Name())

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	// chktex exits non-zero when it finds problems, so the exit code
	// carries no signal beyond "command ran".
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("chktex failed: %w", err)
		}
	}

	return c.parseOutput(stdout.String())
}

// parseOutput converts delimiter-separated chktex records to problems.
func (c *Chktex) parseOutput(out string) ([]problem.Problem, error) {
	var problems []problem.Problem
	for _, record := range strings.Split(out, "\n") {
		fields := strings.Split(record, chktexDelimiter)
		if len(fields) < 10 {
			continue
		}

		line, errLine := strconv.Atoi(fields[1])
		col, errCol := strconv.Atoi(fields[2])
		if errLine != nil || errCol != nil {
			continue
		}

		id := fields[4]
		text := fields[5]
		description := fields[6]

		severity := problem.SeverityWarning
		if fields[7] == "Error" {
			severity = problem.SeverityError
		}

		opts := []problem.Option{
			problem.WithType(id),
			problem.WithSeverity(severity),
			problem.WithCategory(problem.CategoryLatex),
			problem.WithDescription(description),
			problem.WithContext(fields[8], fields[9]),
			problem.WithKey(c.Name() + "_" + id),
		}

		// chktex reports some file-scoped warnings without a flagged
		// span; those become general problems carrying the message.
		if text == "" {
			text = description
			if text == "" {
				continue
			}
		} else {
			// chktex positions are 1-based.
			opts = append(opts, problem.WithPosition(line-1, col-1))
		}

		p, err := problem.New(c.Name(), text, opts...)
		if err != nil {
			return nil, fmt.Errorf("chktex: %w", err)
		}
		problems = append(problems, p)
	}
	return problems, nil
}
