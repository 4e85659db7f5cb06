// Package engine runs the selected checkers against one document and
// aggregates their findings into a deterministic result.
//
// Design decision: The engine owns nothing global. Everything a run
// needs is carried in an explicit Run value, so tests and the CLI
// construct runs the same way and two runs never share state.
package engine
