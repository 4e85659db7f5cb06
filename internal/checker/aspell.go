package checker

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/texbuddy/texbuddy/internal/config"
	"github.com/texbuddy/texbuddy/internal/problem"
	"github.com/texbuddy/texbuddy/internal/texdoc"
)

// Aspell wraps GNU Aspell in pipe mode to spell-check the plain-text
// projection of a document.
type Aspell struct {
	logger *slog.Logger
}

// NewAspell creates the aspell checker.
func NewAspell() *Aspell {
	return &Aspell{logger: slog.Default()}
}

// Name returns "aspell".
func (a *Aspell) Name() string {
	return "aspell"
}

// Check feeds the plain text through `aspell -a` line by line and maps
// reported misspellings back to markup positions.
func (a *Aspell) Check(ctx context.Context, cfg *config.Resolver, doc *texdoc.Document) ([]problem.Problem, error) {
	path, err := exec.LookPath("aspell")
	if err != nil {
		return nil, &ExecutableNotFoundError{
			Name:     "aspell",
			Guidance: "install GNU Aspell via your package manager",
		}
	}

	lang := cfg.String(a.Name(), "lang", cfg.Language())
	if err := a.checkDictionary(ctx, path, lang); err != nil {
		return nil, err
	}

	// Each input line is prefixed with "^" so aspell treats the whole
	// line as data, never as a pipe-mode command.
	var input strings.Builder
	for _, line := range strings.Split(doc.Plain, "\n") {
		input.WriteByte('^')
		input.WriteString(line)
		input.WriteByte('\n')
	}

	cmd := exec.CommandContext(ctx, path, "-a", "--encoding=utf-8", "--lang="+lang)
	cmd.Stdin = strings.NewReader(input.String())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("aspell failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	return a.parseOutput(stdout.String(), doc, lang)
}

// checkDictionary verifies that a dictionary for lang is installed.
func (a *Aspell) checkDictionary(ctx context.Context, path, lang string) error {
	out, err := exec.CommandContext(ctx, path, "dump", "dicts").Output()
	if err != nil {
		return fmt.Errorf("aspell dump dicts: %w", err)
	}
	for _, dict := range strings.Fields(string(out)) {
		if dict == lang {
			return nil
		}
	}
	a.logger.Warn("aspell dictionary not installed",
		slog.String("lang", lang),
		slog.String("hint", "install it via your package manager; see https://ftp.gnu.org/gnu/aspell/dict/0index.html"))
	return fmt.Errorf("aspell: no dictionary for language %q", lang)
}

// parseOutput converts aspell pipe-mode output to problems.
//
// The first output line is the version banner. After that, each input
// line produces zero or more result lines followed by one empty line:
//
//	& <original> <count> <offset>: <sugg>, <sugg>, …
//	# <original> <offset>
//
// The offset is 1-based within the input line because of the "^"
// prefix we add on input.
func (a *Aspell) parseOutput(out string, doc *texdoc.Document, lang string) ([]problem.Problem, error) {
	lines := strings.Split(out, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	plainOffsets := doc.PlainLineOffsets()
	plainLine := 0

	var problems []problem.Problem
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			plainLine++
			continue
		}
		if line[0] != '&' && line[0] != '#' {
			continue
		}

		word, col, suggestions, err := parseAspellResult(line)
		if err != nil {
			return nil, err
		}

		opts := []problem.Option{
			problem.WithSeverity(problem.SeverityError),
			problem.WithCategory(problem.CategorySpelling),
			problem.WithLanguage(lang),
		}
		if len(suggestions) > 0 {
			opts = append(opts, problem.WithSuggestions(suggestions...))
		}
		if plainLine < len(plainOffsets) {
			// col counts the "^" prefix, so the word starts one byte
			// earlier in the plain line.
			plainOffset := plainOffsets[plainLine] + col - 1
			if mLine, mCol, ok := doc.PlainToMarkup(plainOffset); ok {
				opts = append(opts, problem.WithPosition(mLine, mCol))
			}
		}

		p, err := problem.New(a.Name(), word, opts...)
		if err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}
	return problems, nil
}

// parseAspellResult parses one `&` or `#` result line.
func parseAspellResult(line string) (word string, col int, suggestions []string, err error) {
	body := strings.TrimSpace(line[1:])

	var meta, suggs string
	if line[0] == '&' {
		meta, suggs, _ = strings.Cut(body, ": ")
	} else {
		meta = body
	}

	fields := strings.Fields(meta)
	if len(fields) < 2 {
		return "", 0, nil, fmt.Errorf("aspell: malformed result line %q", line)
	}
	word = fields[0]

	// `&` lines carry word, suggestion count, offset; `#` lines carry
	// word, offset.
	col, err = strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return "", 0, nil, fmt.Errorf("aspell: malformed offset in %q: %w", line, err)
	}

	if suggs != "" {
		suggestions = strings.Split(suggs, ", ")
	}
	return word, col, suggestions, nil
}
