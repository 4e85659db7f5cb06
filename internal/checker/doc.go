// Package checker defines the checker contract and the registry that
// loads, discovers, and selects checkers for a run.
//
// A checker inspects one document projection and reports problems. The
// built-in checkers wrap external tools (aspell, chktex, languagetool)
// or run pure-Go rules over the markup; additional checkers can be
// dropped into a plugin directory as executables speaking a line-JSON
// protocol on stdin/stdout.
//
// Design decision: Checkers are registered as factories in an explicit
// Registry rather than loaded via a plugin framework. Built-ins are
// compiled in, external executables are discovered at startup, and both
// kinds are selected through the same blacklist/whitelist policy.
package checker
