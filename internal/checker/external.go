package checker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/texbuddy/texbuddy/internal/config"
	"github.com/texbuddy/texbuddy/internal/problem"
	"github.com/texbuddy/texbuddy/internal/texdoc"
)

// External wraps an executable checker plugin.
//
// The protocol is line-JSON: the plugin receives the plain-text
// projection of the document on stdin and writes one JSON object per
// found problem to stdout. Recognized fields:
//
//	{
//	  "line": 2, "col": 5,          // 0-based markup position, optional
//	  "text": "teh",                // required
//	  "type": "typo",
//	  "severity": "warning",        // none|info|warning|error
//	  "category": "spelling",
//	  "description": "…",
//	  "suggestions": ["the"],
//	  "key": "…"                    // optional explicit whitelist key
//	}
//
// A plugin exiting non-zero or emitting a malformed line fails the
// whole checker; the engine isolates the failure from sibling checkers.
type External struct {
	name   string
	path   string
	logger *slog.Logger
}

func externalFactory(name, path string, logger *slog.Logger) Factory {
	return func() Checker {
		return &External{name: name, path: path, logger: logger}
	}
}

// NewExternal creates a checker that runs the executable at path.
func NewExternal(name, path string) *External {
	return &External{name: name, path: path, logger: slog.Default()}
}

// Name returns the plugin's registered name.
func (e *External) Name() string {
	return e.name
}

// externalProblem is one stdout line of the plugin protocol.
type externalProblem struct {
	Line        *int     `json:"line"`
	Col         int      `json:"col"`
	Text        string   `json:"text"`
	Type        string   `json:"type"`
	Severity    string   `json:"severity"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Suggestions []string `json:"suggestions"`
	Key         string   `json:"key"`
}

// Check runs the plugin executable and parses its output.
func (e *External) Check(ctx context.Context, cfg *config.Resolver, doc *texdoc.Document) ([]problem.Problem, error) {
	cmd := exec.CommandContext(ctx, e.path)
	cmd.Stdin = strings.NewReader(doc.Plain)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("external checker %q failed: %w (stderr: %s)",
			e.name, err, strings.TrimSpace(stderr.String()))
	}

	lang := cfg.Language()

	var problems []problem.Problem
	scanner := bufio.NewScanner(&stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var ext externalProblem
		if err := json.Unmarshal([]byte(line), &ext); err != nil {
			return nil, fmt.Errorf("external checker %q: malformed output line %d: %w", e.name, lineNo, err)
		}

		p, err := e.toProblem(ext, lang)
		if err != nil {
			return nil, fmt.Errorf("external checker %q: invalid problem on line %d: %w", e.name, lineNo, err)
		}
		problems = append(problems, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("external checker %q: reading output: %w", e.name, err)
	}

	return problems, nil
}

func (e *External) toProblem(ext externalProblem, lang string) (problem.Problem, error) {
	opts := []problem.Option{
		problem.WithLanguage(lang),
	}
	if ext.Line != nil {
		opts = append(opts, problem.WithPosition(*ext.Line, ext.Col))
	}
	if ext.Type != "" {
		opts = append(opts, problem.WithType(ext.Type))
	}
	if ext.Severity != "" {
		sev, err := problem.ParseSeverity(ext.Severity)
		if err != nil {
			return problem.Problem{}, err
		}
		opts = append(opts, problem.WithSeverity(sev))
	}
	if ext.Category != "" {
		opts = append(opts, problem.WithCategory(ext.Category))
	}
	if ext.Description != "" {
		opts = append(opts, problem.WithDescription(ext.Description))
	}
	if len(ext.Suggestions) > 0 {
		opts = append(opts, problem.WithSuggestions(ext.Suggestions...))
	}
	if ext.Key != "" {
		opts = append(opts, problem.WithKey(ext.Key))
	}
	return problem.New(e.name, ext.Text, opts...)
}
