package problem

import (
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// MaxSuggestions is the maximum number of suggested replacements kept
// per problem. Excess suggestions are truncated at construction, never
// rejected, so the cap holds for a problem's whole lifetime.
const MaxSuggestions = 10

// Well-known problem categories. Checkers are free to use their own
// category strings; these are the ones the built-in checkers emit and
// the ones the fingerprint scheme treats as language-dependent.
const (
	CategorySpelling = "spelling"
	CategoryGrammar  = "grammar"
	CategoryLatex    = "latex"
	CategoryStyle    = "style"
)

// Construction errors.
var (
	// ErrNoChecker is returned when a problem is constructed without a
	// checker identity. Every problem must be attributable.
	ErrNoChecker = errors.New("problem has no checker identity")

	// ErrNoText is returned when a problem is constructed without the
	// flagged text.
	ErrNoText = errors.New("problem has no text")
)

// Position is a (line, column) location in original-markup coordinates.
// Both values are 0-based throughout the core; report writers add 1 for
// human-facing output.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Context is the text immediately before and after the flagged text.
type Context struct {
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

// Problem is one finding about the checked document.
//
// Problems without a Position are "general": they concern the document
// as a whole rather than a specific span. Problems without a Key can
// never be whitelisted and always resurface; this is deliberate, as
// silently dropping un-keyed findings would be worse than repeating
// them.
type Problem struct {
	// UID uniquely identifies this problem instance. It is assigned at
	// construction and used for stable referencing in generated output.
	UID string `json:"uid"`

	// Position is the location in the original markup, or nil for a
	// general problem.
	Position *Position `json:"position,omitempty"`

	// Text is the flagged substring. Mandatory.
	Text string `json:"text"`

	// Checker is the identity of the checker that found the problem.
	// Mandatory.
	Checker string `json:"checker"`

	// Type is the checker-internal fine-grained category ID.
	Type string `json:"type,omitempty"`

	// Severity grades the problem. Defaults to SeverityWarning.
	Severity Severity `json:"severity"`

	// Category is the coarse grouping, e.g. "spelling" or "latex".
	Category string `json:"category,omitempty"`

	// Description is an optional human-readable explanation.
	Description string `json:"description,omitempty"`

	// Context is the optional text surrounding the flagged span.
	Context Context `json:"context,omitzero"`

	// Suggestions holds up to MaxSuggestions replacement candidates in
	// the order the checker proposed them.
	Suggestions []string `json:"suggestions,omitempty"`

	// Key is the whitelist matching key. Empty means the problem cannot
	// be whitelisted.
	Key string `json:"key,omitempty"`

	// Length is the byte length of the flagged text.
	Length int `json:"length"`
}

// Option configures problem construction.
type Option func(*Problem, *keyParams)

type keyParams struct {
	language    string
	explicitKey string
	noKey       bool
}

// WithPosition places the problem at a 0-based (line, column) position
// in the original markup.
func WithPosition(line, col int) Option {
	return func(p *Problem, _ *keyParams) {
		p.Position = &Position{Line: line, Col: col}
	}
}

// WithType sets the checker-internal problem type ID.
func WithType(t string) Option {
	return func(p *Problem, _ *keyParams) {
		p.Type = t
	}
}

// WithSeverity overrides the default warning severity.
func WithSeverity(s Severity) Option {
	return func(p *Problem, _ *keyParams) {
		p.Severity = s
	}
}

// WithCategory sets the coarse category.
func WithCategory(c string) Option {
	return func(p *Problem, _ *keyParams) {
		p.Category = c
	}
}

// WithDescription sets the human-readable description.
func WithDescription(d string) Option {
	return func(p *Problem, _ *keyParams) {
		p.Description = d
	}
}

// WithContext sets the text before and after the flagged span.
func WithContext(before, after string) Option {
	return func(p *Problem, _ *keyParams) {
		p.Context = Context{Before: before, After: after}
	}
}

// WithSuggestions sets the suggested replacements. Only the first
// MaxSuggestions entries are kept.
func WithSuggestions(suggestions ...string) Option {
	return func(p *Problem, _ *keyParams) {
		p.Suggestions = suggestions
	}
}

// WithKey supplies an explicit whitelist matching key. The language
// qualifier is still applied for spelling and grammar problems.
func WithKey(key string) Option {
	return func(_ *Problem, kp *keyParams) {
		kp.explicitKey = key
	}
}

// WithoutKey marks the problem as not whitelistable: no key is
// generated and the problem will always resurface.
func WithoutKey() Option {
	return func(_ *Problem, kp *keyParams) {
		kp.noKey = true
	}
}

// WithLanguage sets the document language used to qualify the matching
// key of spelling and grammar problems.
func WithLanguage(lang string) Option {
	return func(_ *Problem, kp *keyParams) {
		kp.language = lang
	}
}

// uidCounter disambiguates problems constructed in the same nanosecond.
var uidCounter atomic.Uint64

// New constructs a Problem found by the named checker about the given
// text. The checker identity and text are mandatory; severity defaults
// to warning, the suggestion list is capped to MaxSuggestions, and a
// matching key is derived from the fingerprint scheme unless one was
// supplied via WithKey or suppressed via WithoutKey.
func New(checker, text string, opts ...Option) (Problem, error) {
	if checker == "" {
		return Problem{}, ErrNoChecker
	}
	if text == "" {
		return Problem{}, ErrNoText
	}

	p := Problem{
		Text:     text,
		Checker:  checker,
		Severity: SeverityWarning,
		Length:   len(text),
	}
	var kp keyParams
	for _, opt := range opts {
		opt(&p, &kp)
	}

	if len(p.Suggestions) > MaxSuggestions {
		p.Suggestions = p.Suggestions[:MaxSuggestions]
	}

	if !kp.noKey {
		p.Key = Fingerprint(p.Checker, p.Type, p.Category, p.Text, kp.language, kp.explicitKey)
	}

	p.UID = strconv.FormatInt(time.Now().UnixNano(), 10) +
		"-" + strconv.FormatUint(uidCounter.Add(1), 10)

	return p, nil
}

// Fingerprint derives the whitelist matching key for a problem.
//
// The scheme is explicit per category rather than per checker:
//
//   - spelling: "<lang>_spelling_<lowercased text>"
//   - grammar:  "<lang>_grammar_<normalized text>"
//   - others:   "<checker>_<type>_<normalized text>"
//
// Normalization replaces spaces with "-" and strips newlines so a key
// always fits on one whitelist line. When the checker supplied its own
// key it replaces the unqualified part but the language qualifier for
// spelling and grammar is still applied, keeping cross-language
// collisions impossible for language-dependent entries.
func Fingerprint(checker, ptype, category, text, language, explicit string) string {
	key := explicit
	if key == "" {
		switch category {
		case CategorySpelling:
			key = CategorySpelling + "_" + normalizeKeyText(strings.ToLower(text))
		case CategoryGrammar:
			key = CategoryGrammar + "_" + normalizeKeyText(text)
		default:
			key = checker + "_" + ptype + "_" + normalizeKeyText(text)
		}
	}

	if language != "" && (category == CategorySpelling || category == CategoryGrammar) {
		key = language + "_" + key
	}
	return strings.ReplaceAll(key, "\n", "")
}

// WordlistFingerprint derives the whitelist key for one word of a
// plain wordlist import. It matches the fingerprint the aspell checker
// generates for that word so imported words suppress future findings.
func WordlistFingerprint(language, word string) string {
	return Fingerprint("", "", CategorySpelling, word, language, "")
}

func normalizeKeyText(text string) string {
	return strings.ReplaceAll(text, " ", "-")
}
