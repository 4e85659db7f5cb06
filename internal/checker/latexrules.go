package checker

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/texbuddy/texbuddy/internal/config"
	"github.com/texbuddy/texbuddy/internal/problem"
	"github.com/texbuddy/texbuddy/internal/texdoc"
)

// In-house rules that inspect the raw markup directly. They need no
// external tools and report with category latex or style.

var (
	figureEnvRe = regexp.MustCompile(`\\begin\{figure\}[\s\S]*?\\end\{figure\}`)
	labelRe     = regexp.MustCompile(`\\label\{([^}]*)\}`)

	longNumberRe = regexp.MustCompile(`[0-9]+`)

	emptySectionRe = regexp.MustCompile(`\\section\{(.*)\}\s+\\subsection`)

	// https://stackoverflow.com/q/6038061
	urlRe = regexp.MustCompile(`(?:https?|ftp)://[\w_-]+(?:\.[\w_-]+)+[\w.,@?^=%&:/~+#-]*[\w@?^=%&/~+#-]`)
)

// siUnitRe matches a number followed by an SI unit symbol, optionally
// prefixed (km, ms, GHz, …). Built once from the unit and prefix
// tables below.
var siUnitRe = buildSIUnitRegexp()

var siUnits = []string{
	"A", "cd", "K", "kg", "m", "mol", "s", "C", "F", "Gy", "Hz", "H",
	"J", "lm", "kat", "lx", "N", "Pa", "rad", "S", "Sv", "sr", "T",
	"V", "W", "Wb", "au", "B", "Da", "d", "dB", "eV", "ha", "h", "L",
	"min", "Np", "t",
}

var siPrefixes = []string{
	"y", "z", "a", "f", "p", "n", "m", "c", "d", "da", "h", "k", "M",
	"G", "T", "P", "E", "Z", "Y",
}

func buildSIUnitRegexp() *regexp.Regexp {
	seen := make(map[string]bool)
	var alts []string
	add := func(u string) {
		if !seen[u] {
			seen[u] = true
			alts = append(alts, regexp.QuoteMeta(u))
		}
	}
	for _, unit := range siUnits {
		add(unit)
		for _, prefix := range siPrefixes {
			add(prefix + unit)
		}
	}
	// Longest alternative first so "kg" wins over "k" + trailing "g".
	sort.Slice(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
	return regexp.MustCompile(`[0-9]+\s*(?:` + strings.Join(alts, "|") + `)\s`)
}

// UnreferencedFigures flags figure environments whose label is never
// referenced with \ref or \cref.
type UnreferencedFigures struct{}

// NewUnreferencedFigures creates the unreferenced-figures checker.
func NewUnreferencedFigures() *UnreferencedFigures {
	return &UnreferencedFigures{}
}

// Name returns "unreferenced-figures".
func (u *UnreferencedFigures) Name() string {
	return "unreferenced-figures"
}

// Check scans figure environments for labels without references.
func (u *UnreferencedFigures) Check(ctx context.Context, cfg *config.Resolver, doc *texdoc.Document) ([]problem.Problem, error) {
	tex := doc.Markup

	var problems []problem.Problem
	for _, figure := range figureEnvRe.FindAllStringIndex(tex, -1) {
		env := tex[figure[0]:figure[1]]
		labelMatch := labelRe.FindStringSubmatch(env)
		if labelMatch == nil {
			continue
		}
		label := labelMatch[1]

		refRe, err := regexp.Compile(`\\c?ref\{` + regexp.QuoteMeta(label) + `\}`)
		if err != nil {
			return nil, fmt.Errorf("unreferenced-figures: %w", err)
		}
		if refRe.MatchString(tex) {
			continue
		}

		line, col := doc.MarkupToLineCol(figure[0])
		p, err := problem.New(u.Name(), label,
			problem.WithPosition(line, col),
			problem.WithSeverity(problem.SeverityInfo),
			problem.WithCategory(problem.CategoryLatex),
			problem.WithDescription(fmt.Sprintf("Figure %s is never referenced.", label)),
			problem.WithContext(`\label{`, "}"),
			problem.WithKey(u.Name()+"_"+label),
		)
		if err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}
	return problems, nil
}

// SiUnitx flags long numbers and unit usages that would benefit from
// the siunitx package.
type SiUnitx struct{}

// NewSiUnitx creates the siunitx checker.
func NewSiUnitx() *SiUnitx {
	return &SiUnitx{}
}

// Name returns "siunitx".
func (s *SiUnitx) Name() string {
	return "siunitx"
}

// Check reports long numbers and unit-suffixed numbers in the markup.
func (s *SiUnitx) Check(ctx context.Context, cfg *config.Resolver, doc *texdoc.Document) ([]problem.Problem, error) {
	threshold := cfg.Int(s.Name(), "number-threshold", 3)

	var problems []problem.Problem
	for _, loc := range longNumberRe.FindAllStringIndex(doc.Markup, -1) {
		number := doc.Markup[loc[0]:loc[1]]
		if len(number) <= threshold {
			continue
		}
		p, err := s.newProblem(doc, loc[0], number, "num",
			fmt.Sprintf(`For the number %s, \num from siunitx may be used.`, number))
		if err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}

	for _, loc := range siUnitRe.FindAllStringIndex(doc.Markup, -1) {
		unit := doc.Markup[loc[0]:loc[1]]
		p, err := s.newProblem(doc, loc[0], unit, "unit",
			fmt.Sprintf("For the unit %s, siunitx may be used.", strings.TrimSpace(unit)))
		if err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}
	return problems, nil
}

func (s *SiUnitx) newProblem(doc *texdoc.Document, offset int, text, ptype, description string) (problem.Problem, error) {
	line, col := doc.MarkupToLineCol(offset)
	return problem.New(s.Name(), text,
		problem.WithPosition(line, col),
		problem.WithType(ptype),
		problem.WithSeverity(problem.SeverityInfo),
		problem.WithCategory(problem.CategoryLatex),
		problem.WithDescription(description),
		problem.WithKey(s.Name()+"_"+strings.TrimSpace(text)),
	)
}

// EmptySections flags sections that contain no text before their first
// subsection.
type EmptySections struct{}

// NewEmptySections creates the empty-sections checker.
func NewEmptySections() *EmptySections {
	return &EmptySections{}
}

// Name returns "empty-sections".
func (e *EmptySections) Name() string {
	return "empty-sections"
}

// Check reports sections immediately followed by a subsection.
func (e *EmptySections) Check(ctx context.Context, cfg *config.Resolver, doc *texdoc.Document) ([]problem.Problem, error) {
	var problems []problem.Problem
	for _, match := range emptySectionRe.FindAllStringSubmatchIndex(doc.Markup, -1) {
		title := doc.Markup[match[2]:match[3]]
		if title == "" {
			continue
		}
		line, col := doc.MarkupToLineCol(match[0])
		p, err := problem.New(e.Name(), title,
			problem.WithPosition(line, col),
			problem.WithSeverity(problem.SeverityInfo),
			problem.WithCategory(problem.CategoryLatex),
			problem.WithDescription("Sections should not be empty."),
			problem.WithContext(`\section{`, "}"),
			problem.WithKey(e.Name()+"_"+title),
		)
		if err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}
	return problems, nil
}

// URLFormat flags raw URLs that are not wrapped in \url.
type URLFormat struct{}

// NewURLFormat creates the url-format checker.
func NewURLFormat() *URLFormat {
	return &URLFormat{}
}

// Name returns "url-format".
func (u *URLFormat) Name() string {
	return "url-format"
}

// Check reports URLs appearing outside a \url command.
func (u *URLFormat) Check(ctx context.Context, cfg *config.Resolver, doc *texdoc.Document) ([]problem.Problem, error) {
	tex := doc.Markup
	const urlCommand = `\url{`

	var problems []problem.Problem
	for _, loc := range urlRe.FindAllStringIndex(tex, -1) {
		if loc[0] >= len(urlCommand) && tex[loc[0]-len(urlCommand):loc[0]] == urlCommand {
			continue
		}
		url := tex[loc[0]:loc[1]]
		line, col := doc.MarkupToLineCol(loc[0])
		p, err := problem.New(u.Name(), url,
			problem.WithPosition(line, col),
			problem.WithSeverity(problem.SeverityInfo),
			problem.WithCategory(problem.CategoryStyle),
			problem.WithDescription(`For URLs, use \url.`),
			problem.WithKey(u.Name()+"_"+url),
		)
		if err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}
	return problems, nil
}

// NativeRef flags uses of plain \ref where a more precise command such
// as \cref carries more context.
type NativeRef struct{}

// NewNativeRef creates the native-ref checker.
func NewNativeRef() *NativeRef {
	return &NativeRef{}
}

// Name returns "native-ref".
func (n *NativeRef) Name() string {
	return "native-ref"
}

// Check reports every occurrence of the \ref command.
func (n *NativeRef) Check(ctx context.Context, cfg *config.Resolver, doc *texdoc.Document) ([]problem.Problem, error) {
	tex := doc.Markup
	const refCommand = `\ref{`

	var problems []problem.Problem
	for start := strings.Index(tex, refCommand); start != -1; start = indexFrom(tex, refCommand, start+1) {
		end := strings.Index(tex[start:], "}")
		if end == -1 {
			break
		}
		label := tex[start+len(refCommand) : start+end]

		line, col := doc.MarkupToLineCol(start)
		p, err := problem.New(n.Name(), refCommand,
			problem.WithPosition(line, col),
			problem.WithSeverity(problem.SeverityInfo),
			problem.WithCategory(problem.CategoryStyle),
			problem.WithDescription(`Instead of \ref{} use a more precise command, for example \cref{}.`),
			problem.WithContext("", label+"}"),
			problem.WithKey(n.Name()+"_"+label),
		)
		if err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}
	return problems, nil
}

func indexFrom(s, substr string, from int) int {
	if from >= len(s) {
		return -1
	}
	i := strings.Index(s[from:], substr)
	if i == -1 {
		return -1
	}
	return from + i
}
