// Package config provides configuration for texbuddy.
//
// Configuration comes from three layers with strict precedence:
// command-line flag overrides, then the YAML configuration file, then
// defaults supplied at the lookup site. The Resolver exposes per-module
// option lookup with optional type, pattern and choices verification;
// checkers query it through the same API the orchestrator uses for its
// own global options.
//
// Design decision: Defaults live at the lookup site (GetOrDefault)
// rather than in a merged defaults layer because each checker owns its
// own option vocabulary; a central defaults table would have to know
// every module's keys.
package config
