package config

import (
	"errors"
	"fmt"
)

// Validation errors returned by Config.Validate.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances at each call site. This allows callers
// to use errors.Is for programmatic handling while still providing
// human-readable messages.
var (
	// ErrNoTarget is returned when no file to check was specified.
	ErrNoTarget = errors.New("no target specified: provide one or more LaTeX files")

	// ErrConflictingSelection is returned when both --enable-modules and
	// --disable-modules are given. The two selection modes are mutually
	// exclusive.
	ErrConflictingSelection = errors.New("conflicting module selection: --enable-modules and --disable-modules cannot be used together")

	// ErrUnknownFormat is returned for a report format outside
	// text, json and markdown.
	ErrUnknownFormat = errors.New("unknown report format: must be text, json or markdown")

	// ErrConfigNotFound is returned when an explicitly specified
	// configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)

// OptionNotFoundError is returned by Resolver.Get when the requested
// option exists in no configuration layer and no default was supplied.
type OptionNotFoundError struct {
	// Module is the option owner the lookup was scoped to.
	Module string

	// Key is the requested option key.
	Key string
}

// Error implements the error interface.
func (e *OptionNotFoundError) Error() string {
	return fmt.Sprintf("config option not found: module %q, key %q", e.Module, e.Key)
}

// VerificationError is returned when a configured value fails one of
// the verification constraints supplied at the lookup site.
type VerificationError struct {
	// Module is the option owner.
	Module string

	// Key is the option key.
	Key string

	// Reason describes the failed constraint.
	Reason string
}

// Error implements the error interface.
func (e *VerificationError) Error() string {
	return fmt.Sprintf("config option %q for module %q is invalid: %s", e.Key, e.Module, e.Reason)
}
