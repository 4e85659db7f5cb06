package preprocessor

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/texbuddy/texbuddy/internal/problem"
)

var (
	commandRe = regexp.MustCompile(`^%\s?buddy (ignore-next|begin-ignore|end-ignore)( \S+)*$`)

	ignoreNextOneRe = regexp.MustCompile(`^%\s?buddy ignore-next(?: (?:1 )?line)?$`)
	ignoreNextNRe   = regexp.MustCompile(`^%\s?buddy ignore-next (\d+) lines$`)

	beginAnythingRe   = regexp.MustCompile(`^%\s?buddy begin-ignore$`)
	beginModulesRe    = regexp.MustCompile(`^%\s?buddy begin-ignore modules?((?: \S+)+)$`)
	beginSeveritiesRe = regexp.MustCompile(`^%\s?buddy begin-ignore (?:severity|severities)((?: \S+)+)$`)
	beginKeysRe       = regexp.MustCompile(`^%\s?buddy begin-ignore whitelist-keys?((?: \S+)+)$`)

	endAnythingRe   = regexp.MustCompile(`^%\s?buddy end-ignore$`)
	endModulesRe    = regexp.MustCompile(`^%\s?buddy end-ignore modules?((?: \S+)+)$`)
	endSeveritiesRe = regexp.MustCompile(`^%\s?buddy end-ignore (?:severity|severities)((?: \S+)+)$`)
	endKeysRe       = regexp.MustCompile(`^%\s?buddy end-ignore whitelist-keys?((?: \S+)+)$`)
)

// filterKind distinguishes what a filter matches beyond its line range.
type filterKind int

const (
	kindAny filterKind = iota
	kindModule
	kindSeverity
	kindKey
)

// openEnd marks a filter that has not seen its end-ignore yet.
const openEnd = -1

// filter suppresses problems inside a line range.
//
// A problem without a position matches every line range; a suppression
// spanning the document is expected to silence document-level findings
// too.
type filter struct {
	kind     filterKind
	start    int
	end      int
	module   string
	severity problem.Severity
	key      string
}

func (f *filter) matchLine(p problem.Problem) bool {
	if p.Position == nil {
		return true
	}
	if f.end == openEnd {
		return f.start <= p.Position.Line
	}
	return f.start <= p.Position.Line && p.Position.Line <= f.end
}

func (f *filter) match(p problem.Problem) bool {
	if !f.matchLine(p) {
		return false
	}
	switch f.kind {
	case kindModule:
		return p.Checker == f.module
	case kindSeverity:
		return p.Severity == f.severity
	case kindKey:
		return p.Key == f.key
	default:
		return true
	}
}

// sameTarget reports whether two filters match the same thing,
// ignoring their line ranges.
func (f *filter) sameTarget(other *filter) bool {
	return f.kind == other.kind &&
		f.module == other.module &&
		f.severity == other.severity &&
		f.key == other.key
}

// Preprocessor holds the filters parsed from one document.
type Preprocessor struct {
	filters []*filter
	logger  *slog.Logger
}

// Option configures a Preprocessor.
type Option func(*Preprocessor)

// WithLogger sets the logger for parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Preprocessor) {
		p.logger = logger
	}
}

// New creates a Preprocessor with no filters.
func New(opts ...Option) *Preprocessor {
	p := &Preprocessor{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Parse scans the markup for magic comments and accumulates the
// resulting filters. Lines are 0-based; a command on line n starts
// suppressing at line n+1.
func (p *Preprocessor) Parse(markup string) {
	for n, line := range strings.Split(markup, "\n") {
		if !commandRe.MatchString(line) {
			continue
		}
		if !p.parseCommand(line, n) {
			p.logger.Warn("could not parse preprocessing command",
				slog.Int("line", n),
				slog.String("command", line))
		}
	}
}

// Suppress reports whether any filter matches the problem. It has the
// signature the engine expects for its Filter hook.
func (p *Preprocessor) Suppress(prob problem.Problem) bool {
	for _, f := range p.filters {
		if f.match(prob) {
			return true
		}
	}
	return false
}

// parseCommand dispatches one magic-comment line. It reports whether
// the command was recognized.
func (p *Preprocessor) parseCommand(line string, n int) bool {
	switch {
	case ignoreNextOneRe.MatchString(line):
		p.filters = append(p.filters, &filter{start: n + 1, end: n + 1})

	case ignoreNextNRe.MatchString(line):
		count, err := strconv.Atoi(ignoreNextNRe.FindStringSubmatch(line)[1])
		if err != nil {
			return false
		}
		p.filters = append(p.filters, &filter{start: n + 1, end: n + count})

	case beginAnythingRe.MatchString(line):
		p.open(&filter{start: n + 1, end: openEnd}, n)

	case beginModulesRe.MatchString(line):
		for _, module := range fields(beginModulesRe, line) {
			p.open(&filter{kind: kindModule, module: module, start: n + 1, end: openEnd}, n)
		}

	case beginSeveritiesRe.MatchString(line):
		for _, sev := range p.severities(beginSeveritiesRe, line, n) {
			p.open(&filter{kind: kindSeverity, severity: sev, start: n + 1, end: openEnd}, n)
		}

	case beginKeysRe.MatchString(line):
		for _, key := range fields(beginKeysRe, line) {
			p.open(&filter{kind: kindKey, key: key, start: n + 1, end: openEnd}, n)
		}

	case endAnythingRe.MatchString(line):
		p.close(&filter{}, n)

	case endModulesRe.MatchString(line):
		for _, module := range fields(endModulesRe, line) {
			p.close(&filter{kind: kindModule, module: module}, n)
		}

	case endSeveritiesRe.MatchString(line):
		for _, sev := range p.severities(endSeveritiesRe, line, n) {
			p.close(&filter{kind: kindSeverity, severity: sev}, n)
		}

	case endKeysRe.MatchString(line):
		for _, key := range fields(endKeysRe, line) {
			p.close(&filter{kind: kindKey, key: key}, n)
		}

	default:
		return false
	}
	return true
}

// open adds an open-ended filter unless an equal one is already open.
func (p *Preprocessor) open(f *filter, n int) {
	if p.openFilter(f) != nil {
		p.logger.Info("ignored duplicate begin-ignore", slog.Int("line", n))
		return
	}
	p.filters = append(p.filters, f)
}

// close ends the matching open filter at line n.
func (p *Preprocessor) close(target *filter, n int) {
	f := p.openFilter(target)
	if f == nil {
		p.logger.Info("ignored end-ignore without matching begin-ignore", slog.Int("line", n))
		return
	}
	f.end = n
}

// openFilter finds an open-ended filter with the same target.
func (p *Preprocessor) openFilter(target *filter) *filter {
	for _, f := range p.filters {
		if f.end == openEnd && f.sameTarget(target) {
			return f
		}
	}
	return nil
}

func fields(re *regexp.Regexp, line string) []string {
	return strings.Fields(re.FindStringSubmatch(line)[1])
}

func (p *Preprocessor) severities(re *regexp.Regexp, line string, n int) []problem.Severity {
	var severities []problem.Severity
	for _, name := range fields(re, line) {
		sev, err := problem.ParseSeverity(name)
		if err != nil {
			p.logger.Warn("unknown severity in preprocessing command",
				slog.Int("line", n),
				slog.String("severity", name))
			continue
		}
		severities = append(severities, sev)
	}
	return severities
}
