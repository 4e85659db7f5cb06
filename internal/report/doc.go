// Package report renders the outcome of a check run for humans and
// tools.
//
// A Report is a plain data snapshot assembled after the engine
// finishes; writers render it as text, JSON, or Markdown. The Writer
// interface and MultiWriter allow one run to feed several destinations
// at once.
package report
