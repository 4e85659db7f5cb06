package texdoc

import (
	"errors"
)

// ErrUnbalancedMarkup is returned by SimpleDetexer when the markup
// contains unbalanced group braces. Document construction treats this as
// a faulty document and falls back to the raw markup as plain text.
var ErrUnbalancedMarkup = errors.New("unbalanced braces in markup")

// Detexer derives a plain-text projection from LaTeX markup.
// Implementations return the plain text together with a character map:
// charmap[i] is the byte offset in the markup that produced plain-text
// byte i, or -1 when the byte was synthesized and has no origin.
//
// Design decision: The LaTeX-to-text conversion itself is a pluggable
// collaborator behind this interface. The built-in SimpleDetexer covers
// common documents; callers with a full converter (or precomputed
// projections) can supply their own via WithDetexer.
type Detexer interface {
	Detex(markup string) (plain string, charmap []int, err error)
}

// SimpleDetexer is a lightweight LaTeX stripper. It removes comments,
// command sequences, math and group braces while keeping running text,
// and records the byte-level character map back into the markup.
//
// It is intentionally conservative: anything it cannot interpret is
// dropped rather than guessed, so the charmap never points at the wrong
// origin. Positions for dropped text simply have no mapping.
type SimpleDetexer struct{}

// commands whose braced argument carries no prose and is discarded
// together with the command itself.
var dropsArgument = map[string]bool{
	"begin":             true,
	"end":               true,
	"label":             true,
	"ref":               true,
	"cref":              true,
	"eqref":             true,
	"pageref":           true,
	"cite":              true,
	"usepackage":        true,
	"documentclass":     true,
	"includegraphics":   true,
	"input":             true,
	"include":           true,
	"bibliography":      true,
	"bibliographystyle": true,
	"newcommand":        true,
	"renewcommand":      true,
	"vspace":            true,
	"hspace":            true,
}

// Detex implements Detexer.
func (SimpleDetexer) Detex(markup string) (string, []int, error) {
	var plain []byte
	charmap := make([]int, 0, len(markup))
	depth := 0

	emit := func(b byte, origin int) {
		plain = append(plain, b)
		charmap = append(charmap, origin)
	}

	i := 0
	for i < len(markup) {
		c := markup[i]
		switch {
		case c == '%':
			// Comment runs to end of line; the newline itself is kept so
			// the plain text does not merge surrounding lines.
			for i < len(markup) && markup[i] != '\n' {
				i++
			}

		case c == '\\':
			if i+1 < len(markup) && !isCommandLetter(markup[i+1]) {
				// Escaped literal such as \% or \$.
				emit(markup[i+1], i+1)
				i += 2
				continue
			}
			start := i
			i++
			for i < len(markup) && isCommandLetter(markup[i]) {
				i++
			}
			name := markup[start+1 : i]

			// Optional [...] argument is never prose.
			if i < len(markup) && markup[i] == '[' {
				for i < len(markup) && markup[i] != ']' {
					i++
				}
				if i < len(markup) {
					i++
				}
			}

			if dropsArgument[name] {
				i = skipGroup(markup, i)
			}
			// For all other commands the group braces (if any) are left
			// to the main loop, which keeps their textual content.

		case c == '$':
			// Inline or display math; formulas are not prose.
			i++
			if i < len(markup) && markup[i] == '$' {
				i++
			}
			for i < len(markup) && markup[i] != '$' {
				i++
			}
			for i < len(markup) && markup[i] == '$' {
				i++
			}

		case c == '{':
			depth++
			i++

		case c == '}':
			depth--
			if depth < 0 {
				return "", nil, ErrUnbalancedMarkup
			}
			i++

		case c == '~':
			emit(' ', i)
			i++

		default:
			emit(c, i)
			i++
		}
	}

	if depth != 0 {
		return "", nil, ErrUnbalancedMarkup
	}
	return string(plain), charmap, nil
}

// skipGroup advances past a balanced {...} group starting at i.
// If markup[i] is not '{', i is returned unchanged.
func skipGroup(markup string, i int) int {
	if i >= len(markup) || markup[i] != '{' {
		return i
	}
	depth := 0
	for i < len(markup) {
		switch markup[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
		i++
	}
	return i
}

func isCommandLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
