// Package preprocessor parses in-file magic comments that suppress
// findings for parts of a document.
//
// The commands are LaTeX comments, each alone on its line:
//
//	% buddy ignore-next [line | N lines]
//	% buddy begin-ignore [modules m… | severities s… | whitelist-keys k…]
//	% buddy end-ignore   [modules m… | severities s… | whitelist-keys k…]
//
// begin-ignore opens a filter that runs to the matching end-ignore, or
// to the end of the document when never closed. Filters see 0-based
// line numbers, the same convention the rest of the core uses.
package preprocessor
