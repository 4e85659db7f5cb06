package checker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/texbuddy/texbuddy/internal/config"
	"github.com/texbuddy/texbuddy/internal/problem"
	"github.com/texbuddy/texbuddy/internal/texdoc"
)

// LanguageTool wraps the LanguageTool command-line checker for grammar
// and style findings over the plain-text projection.
type LanguageTool struct{}

// NewLanguageTool creates the languagetool checker.
func NewLanguageTool() *LanguageTool {
	return &LanguageTool{}
}

// Name returns "languagetool".
func (l *LanguageTool) Name() string {
	return "languagetool"
}

// ltResponse is the subset of LanguageTool's --json output we consume.
type ltResponse struct {
	Matches []ltMatch `json:"matches"`
}

type ltMatch struct {
	Offset  int `json:"offset"`
	Length  int `json:"length"`
	Context struct {
		Text   string `json:"text"`
		Offset int    `json:"offset"`
		Length int    `json:"length"`
	} `json:"context"`
	Rule struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Category    struct {
			ID string `json:"id"`
		} `json:"category"`
	} `json:"rule"`
	Replacements []struct {
		Value string `json:"value"`
	} `json:"replacements"`
}

// Check writes the plain text to a temporary file, runs the
// LanguageTool CLI with JSON output, and maps the matches back to
// markup positions.
func (l *LanguageTool) Check(ctx context.Context, cfg *config.Resolver, doc *texdoc.Document) ([]problem.Problem, error) {
	command := cfg.String(l.Name(), "command", "languagetool")
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, &ExecutableNotFoundError{
			Name:     command,
			Guidance: "install LanguageTool and make its CLI available, or set the languagetool `command` option",
		}
	}

	lang := cfg.Language()

	tmp, err := os.CreateTemp("", "texbuddy-*.txt")
	if err != nil {
		return nil, fmt.Errorf("languagetool: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(doc.Plain); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("languagetool: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("languagetool: close temp file: %w", err)
	}

	args := []string{"--json", "-l", lang}
	if rules := cfg.String(l.Name(), "disabled-rules", ""); rules != "" {
		args = append(args, "--disable", rules)
	}
	if cats := cfg.String(l.Name(), "disabled-categories", ""); cats != "" {
		args = append(args, "--disablecategories", cats)
	}
	args = append(args, tmp.Name())

	cmd := exec.CommandContext(ctx, path, args...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("languagetool failed: %w", err)
		}
	}

	return l.parseOutput(stdout.String(), doc, lang)
}

// parseOutput decodes the CLI's JSON response. The CLI prints progress
// noise before the JSON document, so decoding starts at the first "{".
func (l *LanguageTool) parseOutput(out string, doc *texdoc.Document, lang string) ([]problem.Problem, error) {
	start := strings.Index(out, "{")
	if start < 0 {
		return nil, nil
	}

	var resp ltResponse
	if err := json.Unmarshal([]byte(out[start:]), &resp); err != nil {
		return nil, fmt.Errorf("languagetool: decoding output: %w", err)
	}

	var problems []problem.Problem
	for _, match := range resp.Matches {
		ctxText := match.Context.Text
		ctxStart := match.Context.Offset
		ctxEnd := ctxStart + match.Context.Length
		if ctxStart < 0 || ctxEnd > len(ctxText) || ctxStart > ctxEnd {
			continue
		}
		text := ctxText[ctxStart:ctxEnd]
		if text == "" {
			continue
		}

		category := problem.CategoryGrammar
		if match.Rule.Category.ID == "TYPOS" {
			category = problem.CategorySpelling
		}

		suggestions := make([]string, 0, len(match.Replacements))
		for _, r := range match.Replacements {
			suggestions = append(suggestions, r.Value)
		}

		opts := []problem.Option{
			problem.WithType(match.Rule.ID),
			problem.WithSeverity(problem.SeverityError),
			problem.WithCategory(category),
			problem.WithDescription(match.Rule.Description),
			problem.WithContext(ctxText[:ctxStart], ctxText[ctxEnd:]),
			problem.WithLanguage(lang),
			problem.WithKey(l.Name() + "_" + match.Rule.ID),
		}
		if len(suggestions) > 0 {
			opts = append(opts, problem.WithSuggestions(suggestions...))
		}
		if line, col, ok := doc.PlainToMarkup(match.Offset); ok {
			opts = append(opts, problem.WithPosition(line, col))
		}

		p, err := problem.New(l.Name(), text, opts...)
		if err != nil {
			return nil, fmt.Errorf("languagetool: %w", err)
		}
		problems = append(problems, p)
	}
	return problems, nil
}
