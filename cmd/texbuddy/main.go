// Package main provides the entry point for the texbuddy CLI.
//
// texbuddy checks LaTeX documents for spelling, grammar, and LaTeX
// usage problems by running a set of checker modules and aggregating
// their findings into one report.
//
// Usage:
//
//	texbuddy check document.tex
//	texbuddy whitelist add en_spelling_latexmk
//
// See --help for all available options.
package main

// main is the entry point for texbuddy.
func main() {
	Execute()
}
