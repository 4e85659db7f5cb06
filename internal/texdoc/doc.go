// Package texdoc provides the document projection used by all checkers.
//
// A projection pairs the original LaTeX markup with a derived plain-text
// form and the position mapping between the two coordinate spaces. The
// plain text is what language-oriented checkers (spelling, grammar) run
// against, while reported positions always refer to the original markup.
//
// Design decision: The projection is constructed once per check run and
// is immutable afterward. This lets the execution engine share a single
// Document across concurrently running checkers without synchronization;
// the only lazily built state (line offset tables) is guarded by
// sync.Once so first access from concurrent checkers is race-safe.
package texdoc
